package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// cells возвращает текст ячеек th/td по строкам таблицы.
func cells(t *testing.T, doc []byte) [][]string {
	t.Helper()
	root, err := html.Parse(bytes.NewReader(doc))
	require.NoError(t, err)

	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					var sb strings.Builder
					for tx := c.FirstChild; tx != nil; tx = tx.NextSibling {
						if tx.Type == html.TextNode {
							sb.WriteString(tx.Data)
						}
					}
					row = append(row, sb.String())
				}
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return rows
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("DOC")
	require.NoError(t, err)
	assert.Equal(t, FormatDoc, f)
	assert.Equal(t, "application/msword", f.ContentType())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXls, f)
	assert.Equal(t, "application/vnd.ms-excel", f.ContentType())

	_, err = ParseFormat("pdf")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "locomotives_2024-03-09.xls", Filename("locomotives", FormatXls, now))
}

func TestRender_Rows(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, FormatXls, Document{
		Title:   "Lokomotivlar",
		Headers: []string{"Raqami", "Modeli"},
		Rows:    [][]string{{"001", "2TE10M"}, {"002", "<b>VL80</b>"}},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "urn:schemas-microsoft-com:office:excel")
	assert.NotContains(t, buf.String(), "<b>VL80</b>", "values are escaped")
	assert.Equal(t, [][]string{{"Raqami", "Modeli"}, {"001", "2TE10M"}, {"002", "<b>VL80</b>"}}, cells(t, buf.Bytes()))
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatDoc, Document{Title: "Kechikishlar", Headers: []string{"A", "B", "C"}}))

	assert.Contains(t, buf.String(), "urn:schemas-microsoft-com:office:word")
	assert.Contains(t, buf.String(), `colspan="3"`)
	assert.Equal(t, [][]string{{"A", "B", "C"}, {NoData}}, cells(t, buf.Bytes()))
}

func TestRender_Truncates(t *testing.T) {
	rows := make([][]string, MaxRows+5)
	for i := range rows {
		rows[i] = []string{"x"}
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatXls, Document{Headers: []string{"H"}, Rows: rows}))
	assert.Len(t, cells(t, buf.Bytes()), MaxRows+1)
}
