package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerd/gleaner/internal/config"
	"github.com/gleanerd/gleaner/internal/models"
)

// fakeS3 is a path-style object store: PUT writes, GET reads, DELETE
// removes. Signatures are accepted without verification.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3(t *testing.T) (*fakeS3, config.S3Config) {
	t.Helper()

	store := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		store.mu.Lock()
		defer store.mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			store.objects[key] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			data, ok := store.objects[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code></Error>`))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write(data)
		case http.MethodDelete:
			delete(store.objects, key)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)

	return store, config.S3Config{
		Endpoint:  srv.URL,
		Bucket:    "archive",
		AccessKey: "test",
		SecretKey: "test",
		Region:    "us-east-1",
	}
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

func TestStoreFetch_RoundTrip(t *testing.T) {
	store, cfg := newFakeS3(t)

	c, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, c.Configured())

	body := []byte("%PDF-1.4 invoice body")
	require.NoError(t, c.Store(context.Background(), "mybills", "doc1", "Invoice March", "pdf", body))

	// One compressed file plus its manifest.
	keys := store.keys()
	require.Len(t, keys, 2)
	assert.Contains(t, keys, "archive/documents/mybills/doc1/file.gz")
	assert.Contains(t, keys, "archive/documents/mybills/doc1/manifest.json")

	got, manifest, err := c.Fetch(context.Background(), "mybills", "doc1")
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, "mybills", manifest.Backend)
	assert.Equal(t, "doc1", manifest.DocumentID)
	assert.Equal(t, "Invoice March", manifest.Label)
	assert.Equal(t, "pdf", manifest.Format)
	assert.Equal(t, models.HashContent(body), manifest.SHA256)
	assert.Equal(t, len(body), manifest.Size)
	assert.False(t, manifest.ArchivedAt.IsZero())
}

func TestDelete(t *testing.T) {
	store, cfg := newFakeS3(t)

	c, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, c.Store(context.Background(), "mybills", "doc1", "", "", []byte("data")))
	require.NoError(t, c.Delete(context.Background(), "mybills", "doc1"))
	assert.Empty(t, store.keys())

	_, _, err = c.Fetch(context.Background(), "mybills", "doc1")
	assert.Error(t, err)
}

func TestFetch_Missing(t *testing.T) {
	_, cfg := newFakeS3(t)

	c, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)

	_, _, err = c.Fetch(context.Background(), "mybills", "never-stored")
	assert.Error(t, err)
}

func TestDisabledClient(t *testing.T) {
	c, err := NewClient(context.Background(), config.S3Config{Bucket: "archive"})
	require.NoError(t, err)
	assert.False(t, c.Configured())

	// Store and Delete are no-ops, Fetch fails.
	assert.NoError(t, c.Store(context.Background(), "b", "d", "", "", []byte("x")))
	assert.NoError(t, c.Delete(context.Background(), "b", "d"))
	_, _, err = c.Fetch(context.Background(), "b", "d")
	assert.Error(t, err)
}

func TestGzipRoundTrip(t *testing.T) {
	original := []byte(strings.Repeat("compressible content ", 100))

	compressed, err := gzipCompress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original))

	restored, err := gzipDecompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}
