package csvsync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"portfolio/internal/catalog"
)

// Taxonomy is the editorial part of a catalog document. Each block is kept as
// raw JSON so a regeneration never drops keys this package does not model.
type Taxonomy struct {
	Categories    json.RawMessage `json:"categories"`
	CategoryOrder json.RawMessage `json:"categoryOrder"`
	Sections      json.RawMessage `json:"sections"`
}

// Document is the catalog document as the sync tool writes it.
type Document struct {
	Categories    json.RawMessage   `json:"categories"`
	CategoryOrder json.RawMessage   `json:"categoryOrder"`
	Sections      json.RawMessage   `json:"sections"`
	Projects      []catalog.Project `json:"projects"`
}

var (
	emptyObject = json.RawMessage(`{}`)
	emptyArray  = json.RawMessage(`[]`)
)

// ParseTaxonomy extracts the taxonomy from a previous catalog document.
func ParseTaxonomy(data []byte) (Taxonomy, error) {
	var t Taxonomy
	if err := json.Unmarshal(data, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("decode previous catalog: %w: %v", catalog.ErrParse, err)
	}
	return t, nil
}

// ReadTaxonomy reads the taxonomy of the catalog document at path.
func ReadTaxonomy(path string) (Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Taxonomy{}, fmt.Errorf("read previous catalog %s: %w", path, catalog.ErrNotFound)
		}
		return Taxonomy{}, fmt.Errorf("read previous catalog %s: %w", path, err)
	}
	return ParseTaxonomy(data)
}

// Merge combines the preserved taxonomy with freshly mapped projects. Missing
// or null taxonomy blocks become {} or [].
func Merge(t Taxonomy, projects []catalog.Project) Document {
	if projects == nil {
		projects = []catalog.Project{}
	}
	return Document{
		Categories:    orRaw(t.Categories, emptyObject),
		CategoryOrder: orRaw(t.CategoryOrder, emptyArray),
		Sections:      orRaw(t.Sections, emptyObject),
		Projects:      projects,
	}
}

// Encode formats doc with two-space indentation and a trailing newline.
// HTML characters are not escaped so URLs stay readable in diffs.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic replaces path with data. The data is written to a temporary
// file in the same directory and renamed over path, so readers see either the
// old or the new document.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func orRaw(v, def json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def
	}
	return v
}
