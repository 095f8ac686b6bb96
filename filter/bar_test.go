package filter

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	queries []string
	ch      chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 16)}
}

func (r *recorder) onChange(q string) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
	r.ch <- q
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func TestBar_SetPublishesImmediately(t *testing.T) {
	rec := newRecorder()
	initial, _ := url.ParseQuery("page=3&q=abc")
	bar := NewBar(testDescs, initial, rec.onChange)

	bar.Set(KeyStatus, "repair")

	require.Equal(t, []string{"q=abc&status=repair"}, rec.all(), "page is reset on filter change")
	assert.Equal(t, "repair", bar.Value(KeyStatus))

	bar.Set(KeyStatus, "unknown")
	assert.Equal(t, "repair", bar.Value(KeyStatus), "values outside options are ignored")

	bar.Set(KeyStatus, "")
	assert.Equal(t, "q=abc", bar.Query())
}

func TestBar_SearchIsDebounced(t *testing.T) {
	rec := newRecorder()
	bar := NewBar(testDescs, nil, rec.onChange)
	bar.SetDelay(30 * time.Millisecond)

	bar.Search("2")
	bar.Search("2T")
	bar.Search("2TE")

	select {
	case q := <-rec.ch:
		assert.Equal(t, "q=2TE", q)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search was not published")
	}

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"q=2TE"}, rec.all(), "only the last value is published")
}

func TestBar_FlushAndStop(t *testing.T) {
	rec := newRecorder()
	bar := NewBar(testDescs, nil, rec.onChange)
	bar.SetDelay(time.Hour)

	bar.Search("abc")
	bar.Flush()
	assert.Equal(t, []string{"q=abc"}, rec.all())

	bar.Search("zzz")
	bar.Stop()
	bar.Flush()
	assert.Equal(t, []string{"q=abc"}, rec.all(), "stopped search is dropped")
	assert.Equal(t, "abc", bar.Value(KeySearch))
}

func TestBar_SetPageKeepsFilters(t *testing.T) {
	rec := newRecorder()
	bar := NewBar(testDescs, url.Values{KeyOrganization: {"1"}}, rec.onChange)

	bar.SetPage("2")
	bar.SetPage("1")

	assert.Equal(t, []string{"organization=1&page=2", "organization=1"}, rec.all())
}
