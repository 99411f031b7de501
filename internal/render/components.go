package render

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"portfolio/internal/catalog"
	"portfolio/internal/i18n"
	"portfolio/internal/view"
)

// Page is what every component needs to know about the request.
type Page struct {
	Lang      string
	T         func(key string) string
	Store     *catalog.Store
	Nav       view.Section
	Filter    string
	Static    []string // static section names, in menu order
	Languages []i18n.LanguageOption
}

// Href builds a site path under the page language.
func (p Page) Href(parts ...string) string {
	path := "/" + p.Lang + "/"
	if len(parts) > 0 {
		path += strings.Join(parts, "/")
	}
	return path
}

// documentTitle is "title | site", or the site title alone when title is
// empty or already the site title.
func documentTitle(site, title string) string {
	if title != "" && title != site {
		return title + " | " + site
	}
	return site
}

// countLabel is the filter entry of category id: its label and visible count.
func countLabel(p Page, id string) string {
	return p.Store.CategoryLabel(id, p.Lang) + " (" + strconv.Itoa(p.Store.CountByCategory(id)) + ")"
}

func categoryLine(p Page, proj catalog.Project) string {
	return strings.Join(p.Store.Labels(proj, p.Lang), " · ")
}

// thumbStyle paints a card without an image.
func thumbStyle(th Thumb) templ.Attributes {
	return templ.Attributes{"style": "background: " + th.Gradient}
}

// playerMarkup is the embed markup of the project video, or "" when there is
// nothing playable.
func playerMarkup(proj catalog.Project) string {
	if proj.Video == nil {
		return ""
	}
	markup, err := EmbedHTML(*proj.Video)
	if err != nil {
		slog.Warn("video not embedded", "project", proj.ID, "error", err)
		return ""
	}
	return markup
}

// detailText returns the rendered long text of proj, or failing that its
// plain description. A text that fails to render yields neither.
func detailText(proj catalog.Project, lang string) (html, plain string) {
	body, err := Body(proj, lang)
	if err != nil {
		slog.Warn("project text not rendered", "project", proj.ID, "error", err)
		return "", ""
	}
	if body != "" {
		return body, ""
	}
	return "", Description(proj, lang)
}

func attachmentName(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndexByte(u, '/'); i >= 0 && i < len(u)-1 {
		return u[i+1:]
	}
	return u
}

// Embed renders the player for v alone. It is served fresh for every open
// of the video modal.
func Embed(v catalog.Video) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		markup, err := EmbedHTML(v)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, markup)
		return err
	})
}
