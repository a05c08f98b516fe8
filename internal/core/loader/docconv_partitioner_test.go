package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported("/data/report.pdf"))
	assert.True(t, Supported("NOTES.TXT"))
	assert.True(t, Supported("slides.pptx"))
	assert.False(t, Supported("archive.tar.gz"))
	assert.False(t, Supported("binary.bin"))
	assert.False(t, Supported("no_extension"))
}

func TestBareMime(t *testing.T) {
	assert.Equal(t, "text/plain", bareMime("text/plain; charset=utf-8"))
	assert.Equal(t, "text/html", bareMime("text/html"))
	assert.Equal(t, "", bareMime(""))
}

func TestPartitionFilePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	content := "Section One\n\nFirst paragraph of narrative text."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := NewDocconvPartitioner(false)
	elems, err := p.PartitionFile(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, elems)

	var all string
	for _, el := range elems {
		all += el.Text + "\n"
	}
	assert.Contains(t, all, "First paragraph of narrative text.")
}

func TestPartitionFileMissing(t *testing.T) {
	p := NewDocconvPartitioner(false)
	_, err := p.PartitionFile(context.Background(), "/no/such/file.txt")
	assert.Error(t, err)
}

func TestPartitionURLPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Remote document body with plain text content."))
	}))
	defer srv.Close()

	p := NewDocconvPartitioner(false)
	elems, err := p.PartitionURL(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NotEmpty(t, elems)
	assert.Contains(t, elems[0].Text, "Remote document body")
}

func TestPartitionURLNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewDocconvPartitioner(false)
	_, err := p.PartitionURL(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
