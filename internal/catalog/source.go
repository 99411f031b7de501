package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Source opens named documents: the catalog and the i18n tables.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FileSource reads documents from a filesystem.
type FileSource struct {
	FS fs.FS
}

// DirSource returns a FileSource rooted at dir.
func DirSource(dir string) FileSource {
	return FileSource{FS: os.DirFS(dir)}
}

// Open implements Source. Missing files wrap ErrNotFound.
func (s FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.FS.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// HTTPSource fetches documents relative to BaseURL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// Open implements Source. A 404 wraps ErrNotFound, transport failures and
// other non-2xx statuses wrap ErrNetwork.
func (s HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	target, err := url.JoinPath(strings.TrimRight(s.BaseURL, "/"), name)
	if err != nil {
		return nil, fmt.Errorf("build url for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %v", target, ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %w", target, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d: %w", target, resp.StatusCode, ErrNetwork)
	}

	return networkBody{ReadCloser: resp.Body, target: target}, nil
}

// networkBody marks failures while streaming a response body as ErrNetwork.
type networkBody struct {
	io.ReadCloser
	target string
}

func (b networkBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("read %s: %w: %w", b.target, ErrNetwork, err)
	}
	return n, err
}

// ReadAll reads at most limit bytes of a document opened from a Source.
// Failures the source already classified keep their kind; anything else
// wraps ErrRead.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil && !errors.Is(err, ErrNetwork) {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return data, err
}
