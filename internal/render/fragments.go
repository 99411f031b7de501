// Package render turns catalog projects into display values and HTML.
//
// The functions in this file are pure: they take a project and a language
// and return strings. components.go assembles them into templ components.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"portfolio/internal/catalog"
)

// Title returns the project title in lang, with the usual language fallback.
func Title(p catalog.Project, lang string) string {
	return p.Title.Get(lang)
}

// Description returns the short description in lang.
func Description(p catalog.Project, lang string) string {
	return p.Description.Get(lang)
}

// Year returns the first run of exactly four digits in date, or "".
// "2021-03-04" and "March 2021" both give "2021".
func Year(date string) string {
	run := 0
	for i := 0; i <= len(date); i++ {
		if i < len(date) && date[i] >= '0' && date[i] <= '9' {
			run++
			continue
		}
		if run == 4 {
			return date[i-4 : i]
		}
		run = 0
	}
	return ""
}

// Thumb is the resolved card image: an image URL, or a CSS gradient when
// there is none.
type Thumb struct {
	ImageURL string
	Gradient string
}

// Thumbnail resolves the card image of p: the explicit URL, then a poster
// derived from the video, then the fallback gradient.
func Thumbnail(p catalog.Project) Thumb {
	t := Thumb{Gradient: catalog.DefaultGradient}
	if p.Thumbnail != nil {
		if g := strings.TrimSpace(p.Thumbnail.FallbackGradient); g != "" {
			t.Gradient = g
		}
		if u := strings.TrimSpace(p.Thumbnail.URL); u != "" {
			t.ImageURL = u
			return t
		}
	}
	if p.Video != nil {
		t.ImageURL = p.Video.PosterURL()
	}
	return t
}

// ActionKind is the primary call to action of a card.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionVideo
	ActionArticle
)

// Action is the primary call to action of a project.
type Action struct {
	Kind  ActionKind
	URL   string        // article link
	Embed catalog.Embed // video player
}

// PrimaryAction picks how a card opens: a playable video first, then the
// article link. A video that cannot be embedded falls through to the article.
func PrimaryAction(p catalog.Project) Action {
	if p.Video != nil {
		if e, err := p.Video.Embed(); err == nil {
			return Action{Kind: ActionVideo, Embed: e}
		}
	}
	if u := strings.TrimSpace(p.ArticleURL); u != "" {
		return Action{Kind: ActionArticle, URL: u}
	}
	return Action{Kind: ActionNone}
}

// EmbedHTML returns the player markup for v. Unknown or incomplete videos
// are an error and produce no markup.
func EmbedHTML(v catalog.Video) (string, error) {
	e, err := v.Embed()
	if err != nil {
		return "", err
	}
	return embedMarkup(e)
}

func embedMarkup(e catalog.Embed) (string, error) {
	switch e.Kind {
	case catalog.EmbedIframe:
		return fmt.Sprintf(`<iframe src="%s" allow="%s" allowfullscreen></iframe>`,
			html.EscapeString(e.URL), html.EscapeString(e.Allow)), nil
	case catalog.EmbedNative:
		return fmt.Sprintf(`<video controls autoplay><source src="%s" type="%s">Your browser does not support the video tag.</video>`,
			html.EscapeString(e.URL), html.EscapeString(e.MIME)), nil
	default:
		return "", fmt.Errorf("%w: embed kind %q", catalog.ErrUnknownVideoType, e.Kind)
	}
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
	),
)

// Body renders the long-form text of p in lang from Markdown to HTML. Raw
// HTML in the source is not passed through.
func Body(p catalog.Project, lang string) (string, error) {
	src := strings.TrimSpace(p.Testo.Get(lang))
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render text of %s: %w", p.ID, err)
	}
	return buf.String(), nil
}
