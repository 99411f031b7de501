package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MaxDocumentSize bounds how much of a catalog document is read.
const MaxDocumentSize = 32 << 20

// Store is the read-only, indexed view of one catalog document. It is never
// mutated after construction and is safe to share between sessions.
type Store struct {
	doc        Catalog
	visible    []Project
	byID       map[string]int // index into visible
	byCategory map[string][]Project
	counts     map[string]int
	mainpage   []Project
}

// Empty returns a store with no projects and no taxonomy. It is what a page
// renders when the catalog failed to load.
func Empty() *Store {
	s, _ := New(Catalog{})
	return s
}

// Load reads and indexes the catalog document name from src.
func Load(ctx context.Context, src Source, name string) (*Store, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rc.Close()

	data, err := ReadAll(rc, MaxDocumentSize)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", name, err)
	}
	return Parse(data)
}

// Parse decodes and indexes a catalog document.
func Parse(data []byte) (*Store, error) {
	var doc Catalog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w: %v", ErrParse, err)
	}
	return New(doc)
}

// New indexes doc. Duplicate project ids are a parse error.
func New(doc Catalog) (*Store, error) {
	seen := make(map[string]bool, len(doc.Projects))
	for i, p := range doc.Projects {
		if seen[p.ID] {
			return nil, fmt.Errorf("project %d: duplicate id %q: %w", i, p.ID, ErrParse)
		}
		seen[p.ID] = true
	}

	s := &Store{
		doc:        doc,
		byID:       make(map[string]int),
		byCategory: make(map[string][]Project),
		counts:     make(map[string]int),
	}

	for _, p := range doc.Projects {
		if p.IsVisible() {
			s.visible = append(s.visible, p)
		}
	}
	// Stable: ties keep document order.
	sort.SliceStable(s.visible, func(i, j int) bool {
		return s.visible[i].SortKey() < s.visible[j].SortKey()
	})

	for i, p := range s.visible {
		s.byID[p.ID] = i
		tagged := make(map[string]bool, len(p.Categories))
		for _, c := range p.Categories {
			if tagged[c] {
				continue
			}
			tagged[c] = true
			s.byCategory[c] = append(s.byCategory[c], p)
			s.counts[c]++
		}
		if p.Mainpage {
			s.mainpage = append(s.mainpage, p)
		}
	}

	return s, nil
}

// Document returns the catalog as loaded.
func (s *Store) Document() Catalog {
	return s.doc
}

// Visible returns visible projects sorted by order.
func (s *Store) Visible() []Project {
	return clone(s.visible)
}

// Mainpage returns the visible projects flagged for the default carousel.
func (s *Store) Mainpage() []Project {
	return clone(s.mainpage)
}

// ByCategory returns the visible projects tagged with id, in order.
func (s *Store) ByCategory(id string) []Project {
	return clone(s.byCategory[id])
}

// CountByCategory returns how many visible projects carry id, including the
// Uncategorized sentinel.
func (s *Store) CountByCategory(id string) int {
	return s.counts[id]
}

// FindByID returns the visible project with id.
func (s *Store) FindByID(id string) (Project, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Project{}, false
	}
	return s.visible[i], true
}

// CategoryLabel returns the label of category id in lang. Unknown ids render
// as the raw id.
func (s *Store) CategoryLabel(id, lang string) string {
	if label := s.doc.Categories[id].Get(lang); label != "" {
		return label
	}
	return id
}

// Categories returns category ids in editorial order: categoryOrder first,
// then any remaining taxonomy ids alphabetically. The Uncategorized sentinel
// is never listed.
func (s *Store) Categories() []string {
	out := make([]string, 0, len(s.doc.Categories))
	listed := make(map[string]bool)
	for _, id := range s.doc.CategoryOrder {
		if id == Uncategorized || listed[id] {
			continue
		}
		listed[id] = true
		out = append(out, id)
	}
	var rest []string
	for id := range s.doc.Categories {
		if id != Uncategorized && !listed[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// SectionEntry is a menu section with its categories.
type SectionEntry struct {
	ID         string
	Categories []string
}

// Sections returns the menu sections sorted by id.
func (s *Store) Sections() []SectionEntry {
	ids := make([]string, 0, len(s.doc.Sections))
	for id := range s.doc.Sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]SectionEntry, 0, len(ids))
	for _, id := range ids {
		var cats []string
		for _, c := range s.doc.Sections[id].Order {
			if c != Uncategorized {
				cats = append(cats, c)
			}
		}
		out = append(out, SectionEntry{ID: id, Categories: cats})
	}
	return out
}

// Labels returns the display labels of p's categories in lang, skipping the
// Uncategorized sentinel.
func (s *Store) Labels(p Project, lang string) []string {
	out := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		if strings.TrimSpace(c) == "" || c == Uncategorized {
			continue
		}
		out = append(out, s.CategoryLabel(c, lang))
	}
	return out
}

// Len returns the number of visible projects.
func (s *Store) Len() int {
	return len(s.visible)
}

func clone(in []Project) []Project {
	if len(in) == 0 {
		return nil
	}
	out := make([]Project, len(in))
	copy(out, in)
	return out
}
