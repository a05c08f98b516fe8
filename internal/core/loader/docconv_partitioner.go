package loader

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.sajari.com/docconv"
	"github.com/gabriel-vasile/mimetype"

	"context"

	"github.com/markdave123-py/uloader/internal/core"
)

var _ core.Partitioner = (*DocconvPartitioner)(nil)

// SupportedExtensions lists the file types docconv can partition for us.
var SupportedExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".html": true, ".htm": true,
	".txt": true, ".md": true, ".csv": true, ".xlsx": true, ".xls": true,
	".pptx": true, ".ppt": true, ".rtf": true, ".odt": true, ".pages": true,
	".xml": true, ".json": true,
}

// Supported reports whether the file extension is recognized by the
// partitioning collaborator.
func Supported(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// bareMime drops media type parameters ("text/plain; charset=utf-8") since
// the converter dispatches on the bare type.
func bareMime(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}

// DocconvPartitioner implements core.Partitioner using sajari/docconv.
type DocconvPartitioner struct {
	useReadability bool
	httpClient     *http.Client
}

func NewDocconvPartitioner(useReadability bool) *DocconvPartitioner {
	return &DocconvPartitioner{
		useReadability: useReadability,
		httpClient:     &http.Client{Timeout: 2 * time.Minute},
	}
}

// PartitionFile extracts typed elements from a local file.
func (p *DocconvPartitioner) PartitionFile(ctx context.Context, path string) ([]core.RawElement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	mime := docconv.MimeTypeByExtension(path)
	if mime == "application/octet-stream" {
		if detected, derr := mimetype.DetectFile(path); derr == nil {
			mime = bareMime(detected.String())
		}
	}

	res, err := docconv.Convert(f, mime, p.useReadability)
	if err != nil {
		return nil, fmt.Errorf("docconv: convert %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return elementize(res.Body), nil
}

// PartitionURL fetches a URL and extracts typed elements from the response body.
func (p *DocconvPartitioner) PartitionURL(ctx context.Context, url string) ([]core.RawElement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}

	mime := bareMime(resp.Header.Get("Content-Type"))
	if mime == "" || mime == "application/octet-stream" {
		mime = bareMime(mimetype.Detect(body).String())
	}

	res, err := docconv.Convert(bytes.NewReader(body), mime, p.useReadability)
	if err != nil {
		return nil, fmt.Errorf("docconv: convert %s: %w", url, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return elementize(res.Body), nil
}
