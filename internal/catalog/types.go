package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Language codes carried by the dataset.
const (
	LangIT = "it"
	LangEN = "en"
	LangFR = "fr"
)

// FallbackLanguage is used when a localized value is missing for the requested language.
const FallbackLanguage = LangIT

// Languages lists the dataset languages in their canonical order.
var Languages = []string{LangIT, LangEN, LangFR}

// DefaultOrder is the sort key for projects without an explicit order.
const DefaultOrder = 999

// Uncategorized marks a project that has not been filed yet. It is counted
// but never shown as a label.
const Uncategorized = "TODO"

// Localized maps a language code to text.
type Localized map[string]string

// Get returns the text for lang, falling back to Italian and then to any
// non-empty value in canonical language order.
func (l Localized) Get(lang string) string {
	if v := l[lang]; v != "" {
		return v
	}
	if v := l[FallbackLanguage]; v != "" {
		return v
	}
	for _, code := range Languages {
		if v := l[code]; v != "" {
			return v
		}
	}
	return ""
}

// MarshalJSON writes it, en, fr first and any other languages after them in
// key order, so the persisted document reads the way editors expect.
func (l Localized) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}

	keys := make([]string, 0, len(l))
	seen := make(map[string]bool, len(Languages))
	for _, code := range Languages {
		if _, ok := l[code]; ok {
			keys = append(keys, code)
			seen[code] = true
		}
	}
	var extra []string
	for k := range l {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		vb, err := marshalNoEscape(l[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DefaultGradient is the card background for projects without an image.
const DefaultGradient = "linear-gradient(135deg, #E5DDD4 0%, #FAF8F5 100%)"

// Thumbnail is the card image of a project. FallbackGradient is a CSS
// background used when URL is empty.
type Thumbnail struct {
	URL              string `json:"url"`
	FallbackGradient string `json:"fallbackGradient,omitempty"`
}

// Project is one portfolio entry.
type Project struct {
	ID          string     `json:"id"`
	Visible     *bool      `json:"visible,omitempty"`
	Order       *int       `json:"order,omitempty"`
	Date        string     `json:"date"`
	Video       *Video     `json:"video,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	Title       Localized  `json:"title"`
	Description Localized  `json:"description,omitempty"`
	ArticleURL  string     `json:"articleUrl"`
	Categories  []string   `json:"categories"`
	Mainpage    bool       `json:"mainpage,omitempty"`
	Allegati    []string   `json:"allegati"`
	Testo       Localized  `json:"testo,omitempty"`
}

// IsVisible reports whether the project may appear in any view.
// A missing flag means visible.
func (p Project) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// SortKey returns the explicit order or DefaultOrder.
func (p Project) SortKey() int {
	if p.Order == nil {
		return DefaultOrder
	}
	return *p.Order
}

// HasCategory reports whether id is one of the project's categories.
func (p Project) HasCategory(id string) bool {
	for _, c := range p.Categories {
		if c == id {
			return true
		}
	}
	return false
}

// Section groups categories for menu presentation.
type Section struct {
	Order []string `json:"order"`
}

// Catalog is the persisted document.
type Catalog struct {
	Categories    map[string]Localized `json:"categories"`
	CategoryOrder []string             `json:"categoryOrder"`
	Sections      map[string]Section   `json:"sections"`
	Projects      []Project            `json:"projects"`
}

// Bool returns a pointer to b. Used to build projects with an explicit visibility.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i.
func Int(i int) *int { return &i }
