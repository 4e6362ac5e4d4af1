package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-applyform/pkg/schema"
)

const sampleSchema = `{"type": "object", "properties": {"a": {"type": "string"}}}`

func TestLoad_FileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sf424.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSchema), 0o600))

	doc, err := New(Options{}).Load(context.Background(), schema.SourceFromFile(path))
	require.NoError(t, err)
	assert.Equal(t, sampleSchema, string(doc.Raw()))
	assert.Equal(t, path, doc.Location())
}

func TestLoad_FSSource(t *testing.T) {
	fsys := fstest.MapFS{"forms/sf424.schema.json": {Data: []byte(sampleSchema)}}
	doc, err := New(Options{FileSystem: fsys}).Load(context.Background(), schema.SourceFromFS("forms/sf424.schema.json"))
	require.NoError(t, err)

	obj, err := doc.Object()
	require.NoError(t, err)
	assert.Equal(t, []string{"type", "properties"}, obj.Keys())

	_, err = New(Options{}).Load(context.Background(), schema.SourceFromFS("forms/sf424.schema.json"))
	assert.ErrorContains(t, err, "fs is nil")
}

func TestLoad_HTTPDisabled(t *testing.T) {
	_, err := New(Options{}).Load(context.Background(), schema.SourceFromURL("https://example.gov/form.json"))
	assert.ErrorContains(t, err, "http support disabled")
}

func TestLoad_HTTPRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleSchema))
	}))
	defer srv.Close()

	l := New(Options{AllowHTTP: true, Retries: 3})
	doc, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/form.json"))
	require.NoError(t, err)
	assert.Equal(t, sampleSchema, string(doc.Raw()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoad_HTTPClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	l := New(Options{AllowHTTP: true, Retries: 3})
	_, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoad_InlineSourceUnsupported(t *testing.T) {
	_, err := New(Options{}).Load(context.Background(), schema.SourceInline("body"))
	assert.ErrorContains(t, err, "unsupported source kind")
}
