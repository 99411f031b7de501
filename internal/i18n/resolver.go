// Package i18n resolves UI strings from per-language JSON tables.
//
// A table is an arbitrarily nested JSON object; keys are addressed with dotted
// paths such as "nav.portfolio". Resolution never fails: a missing table, a
// missing segment or a non-string leaf all resolve to the key itself, so an
// untranslated page still renders something readable.
package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"portfolio/internal/catalog"
)

// MaxTableSize bounds how much of a translation file is read.
const MaxTableSize = 4 << 20

// Resolver holds the loaded translation tables. It is safe for concurrent use.
type Resolver struct {
	mu     sync.RWMutex
	tables map[string]map[string]any
	raw    map[string][]byte
}

// New returns a resolver with no tables loaded.
func New() *Resolver {
	return &Resolver{
		tables: make(map[string]map[string]any),
		raw:    make(map[string][]byte),
	}
}

// LoadTable installs the table for lang, replacing any previous one.
func (r *Resolver) LoadTable(lang string, data []byte) error {
	var table map[string]any
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("decode %s translations: %w: %v", lang, catalog.ErrParse, err)
	}
	if table == nil {
		return fmt.Errorf("decode %s translations: %w: not an object", lang, catalog.ErrParse)
	}

	raw := make([]byte, len(data))
	copy(raw, data)

	r.mu.Lock()
	r.tables[lang] = table
	r.raw[lang] = raw
	r.mu.Unlock()
	return nil
}

// Load reads <lang>.json from src for each language. A language that fails
// is logged and left unloaded; the other languages still load. The returned
// error joins every failure.
func (r *Resolver) Load(ctx context.Context, src catalog.Source, langs ...string) error {
	var errs []error
	for _, lang := range langs {
		if err := r.loadOne(ctx, src, lang); err != nil {
			slog.Warn("translations not loaded", "lang", lang, "error", err)
			errs = append(errs, err)
			continue
		}
		slog.Debug("translations loaded", "lang", lang)
	}
	return errors.Join(errs...)
}

func (r *Resolver) loadOne(ctx context.Context, src catalog.Source, lang string) error {
	rc, err := src.Open(ctx, lang+".json")
	if err != nil {
		return fmt.Errorf("load %s translations: %w", lang, err)
	}
	defer rc.Close()

	data, err := catalog.ReadAll(rc, MaxTableSize)
	if err != nil {
		return fmt.Errorf("read %s translations: %w", lang, err)
	}
	return r.LoadTable(lang, data)
}

// Resolve returns the string at the dotted key in lang's table, or key
// itself when it cannot be resolved.
func (r *Resolver) Resolve(key, lang string) string {
	r.mu.RLock()
	table := r.tables[lang]
	r.mu.RUnlock()
	if table == nil || key == "" {
		return key
	}

	var node any = table
	for _, part := range strings.Split(key, ".") {
		obj, ok := node.(map[string]any)
		if !ok {
			return key
		}
		if node, ok = obj[part]; !ok {
			return key
		}
	}

	if s, ok := node.(string); ok {
		return s
	}
	return key
}

// Translator returns Resolve bound to lang.
func (r *Resolver) Translator(lang string) func(string) string {
	return func(key string) string { return r.Resolve(key, lang) }
}

// Loaded reports whether a table is installed for lang.
func (r *Resolver) Loaded(lang string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[lang]
	return ok
}

// Raw returns the table for lang as it was loaded.
func (r *Resolver) Raw(lang string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	raw, ok := r.raw[lang]
	return raw, ok
}
