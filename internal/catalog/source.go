package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// maxDocumentBytes caps the size of a fetched collection document.
const maxDocumentBytes = 32 << 20

// Source fetches the raw farm collection document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Name labels the source in logs and on the loaded collection.
	Name() string
}

// HTTPSource fetches the collection from a static URL.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates a source for url with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string { return s.url }

// Fetch downloads the document. Non-200 responses are errors.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch farm collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch farm collection: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read farm collection: %w", err)
	}
	return data, nil
}

// FileSource reads the collection from a local file.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return s.path }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read farm collection: %w", err)
	}
	return data, nil
}
