// Пакет export выгружает листинги в HTML-документы, которые Word и Excel
// открывают как .doc и .xls.
package export

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxRows - предел строк в одной выгрузке.
const MaxRows = 10000

// NoData - текст единственной строки пустой выгрузки.
const NoData = "Ma'lumot topilmadi"

type Format string

const (
	FormatDoc Format = "doc"
	FormatXls Format = "xls"
)

// ErrUnknownFormat возвращается для формата, отличного от doc/xls.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat разбирает параметр format; пустое значение - xls.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatDoc:
		return FormatDoc, nil
	case FormatXls, "":
		return FormatXls, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatDoc {
		return "application/msword"
	}
	return "application/vnd.ms-excel"
}

// Filename - имя файла вложения: <base>_<YYYY-MM-DD>.<ext>.
func Filename(base string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), f)
}

// Document - содержимое выгрузки.
type Document struct {
	Title       string
	Headers     []string
	Rows        [][]string
	GeneratedAt time.Time
}

type view struct {
	ID          string
	Title       string
	Headers     []string
	Rows        [][]string
	GeneratedAt string
	Word        bool
	NoData      string
}

var tmpl = template.Must(template.New("export").Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" {{if .Word}}xmlns:w="urn:schemas-microsoft-com:office:word"{{else}}xmlns:x="urn:schemas-microsoft-com:office:excel"{{end}} xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta charset="utf-8">
<meta name="document-id" content="{{.ID}}">
<title>{{.Title}}</title>
<style>table{border-collapse:collapse}th,td{border:1px solid #000;padding:4px}th{background:#eee}</style>
</head>
<body>
<h3>{{.Title}}</h3>
<p>{{.GeneratedAt}}</p>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- else}}
<tr><td colspan="{{len .Headers}}">{{.NoData}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// Render пишет документ в w. Строки сверх MaxRows отбрасываются.
func Render(w io.Writer, f Format, doc Document) error {
	rows := doc.Rows
	if len(rows) > MaxRows {
		rows = rows[:MaxRows]
	}
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	v := view{
		ID:          uuid.NewString(),
		Title:       doc.Title,
		Headers:     doc.Headers,
		Rows:        rows,
		GeneratedAt: generated.Format("2006-01-02 15:04"),
		Word:        f == FormatDoc,
		NoData:      NoData,
	}
	if err := tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("Render: %w", err)
	}
	return nil
}
