package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDescs = []Descriptor{
	{Name: KeyOrganization, Label: "Tashkilot", IsSelect: true},
	{Name: KeyStatus, Label: "Holati", IsSelect: true, Options: []Option{{Value: "active"}, {Value: "repair"}}},
	{Name: KeyFrom, Label: "Dan", IsDate: true},
	{Name: KeyTo, Label: "Gacha", IsDate: true},
}

func TestParse_Defaults(t *testing.T) {
	p, err := Parse(url.Values{}, testDescs)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Empty(t, p.Values)
	assert.Equal(t, 0, p.Offset())
}

func TestParse_ValuesAndPaging(t *testing.T) {
	q, _ := url.ParseQuery("q=+2TE10+&page=3&pageSize=25&organization=4&status=repair&from=2024-01-01&unknown=x")
	p, err := Parse(q, testDescs)
	require.NoError(t, err)

	assert.Equal(t, "2TE10", p.Search)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.PageSize)
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, map[string]string{"organization": "4", "status": "repair", "from": "2024-01-01"}, p.Values)

	org, ok := p.Int(KeyOrganization)
	assert.True(t, ok)
	assert.Equal(t, int64(4), org)
	_, ok = p.Int(KeyLocomotive)
	assert.False(t, ok)
}

func TestParse_InvalidInput(t *testing.T) {
	q, _ := url.ParseQuery("page=-1&pageSize=1000&status=broken")
	p, err := Parse(q, testDescs)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Empty(t, p.Get(KeyStatus), "values outside the option list are ignored")

	_, err = Parse(url.Values{KeyFrom: {"01.02.2024"}}, testDescs)
	assert.Error(t, err)
}

func TestParams_WithResetsPage(t *testing.T) {
	p := Params{Page: 4, PageSize: 20, Values: map[string]string{KeyStatus: "active"}}

	next := p.With(KeyOrganization, "2")
	assert.Equal(t, 1, next.Page)
	assert.Equal(t, "2", next.Get(KeyOrganization))
	assert.Empty(t, p.Get(KeyOrganization), "original is not mutated")

	cleared := next.With(KeyStatus, "")
	assert.Empty(t, cleared.Get(KeyStatus))

	paged := cleared.WithPage(3)
	assert.Equal(t, 3, paged.Page)
	assert.Equal(t, "2", paged.Get(KeyOrganization))
}

func TestParams_EncodeRoundTrip(t *testing.T) {
	p := Params{Search: "abc", Page: 2, PageSize: 50, Values: map[string]string{KeyTo: "2024-05-01", KeyOrganization: "1"}}
	assert.Equal(t, "organization=1&page=2&pageSize=50&q=abc&to=2024-05-01", p.Encode())

	back, err := Parse(p.Query(), testDescs)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	defaults := Params{Page: 1, PageSize: DefaultPageSize, Values: map[string]string{}}
	assert.Equal(t, "", defaults.Encode())
}

func TestParams_All(t *testing.T) {
	p := Params{Page: 5, PageSize: 10, Values: map[string]string{KeyStatus: "active"}}
	all := p.All(10000)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 10000, all.PageSize)
	assert.Equal(t, "active", all.Get(KeyStatus))
}
