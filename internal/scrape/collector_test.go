package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rowsHTML = `<html><body>
  <table>
    <tr class="row"><td>first</td></tr>
    <tr class="row"><td>second</td></tr>
    <tr class="row"><td>third</td></tr>
  </table>
</body></html>`

func TestRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list", r.URL.Path)
		w.Write([]byte(rowsHTML))
	}))
	t.Cleanup(srv.Close)

	var (
		mu    sync.Mutex
		texts []string
	)
	err := New().Rows(context.Background(), srv.URL+"/list", "tr.row", func(e *colly.HTMLElement) {
		mu.Lock()
		texts = append(texts, e.ChildText("td"))
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, texts)
}

func TestRows_FetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	err := New().Rows(context.Background(), srv.URL, "tr", func(e *colly.HTMLElement) {})
	assert.Error(t, err)
}

func TestRows_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := New().Rows(ctx, srv.URL, "tr", func(e *colly.HTMLElement) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 body"))
	}))
	t.Cleanup(srv.Close)

	body, err := New().Fetch(context.Background(), srv.URL+"/file.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 body"), body)
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := New().Fetch(context.Background(), srv.URL+"/missing.pdf")
	assert.Error(t, err)
}

func TestAbsolute(t *testing.T) {
	cases := []struct {
		base string
		href string
		want string
	}{
		{"https://example.org/bills", "/files/a.pdf", "https://example.org/files/a.pdf"},
		{"https://example.org/bills/", "a.pdf", "https://example.org/bills/a.pdf"},
		{"https://example.org/bills", "https://cdn.example.org/a.pdf", "https://cdn.example.org/a.pdf"},
		{"https://example.org/bills", "  /files/a.pdf  ", "https://example.org/files/a.pdf"},
		{"https://example.org/bills", "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Absolute(tc.base, tc.href), "base %q href %q", tc.base, tc.href)
	}
}
