package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/catalog"
	"portfolio/internal/i18n"
	"portfolio/internal/view"
)

func TestYear(t *testing.T) {
	tests := map[string]string{
		"2021-03-04":  "2021",
		"March 2019":  "2019",
		"03/2020":     "2020",
		"12345-2022":  "2022",
		"21/03/04":    "",
		"":            "",
		"circa 1998s": "1998",
	}
	for in, want := range tests {
		assert.Equal(t, want, Year(in), in)
	}
}

func TestThumbnail(t *testing.T) {
	explicit := catalog.Project{
		Thumbnail: &catalog.Thumbnail{URL: "/img/a.jpg", FallbackGradient: "red"},
		Video:     &catalog.Video{Type: catalog.VideoYouTube, ID: "abc"},
	}
	assert.Equal(t, Thumb{ImageURL: "/img/a.jpg", Gradient: "red"}, Thumbnail(explicit))

	poster := catalog.Project{
		Thumbnail: &catalog.Thumbnail{FallbackGradient: "blue"},
		Video:     &catalog.Video{Type: catalog.VideoYouTube, ID: "abc"},
	}
	assert.Equal(t, Thumb{ImageURL: "https://img.youtube.com/vi/abc/hqdefault.jpg", Gradient: "blue"}, Thumbnail(poster))

	vimeo := catalog.Project{Video: &catalog.Video{Type: catalog.VideoVimeo, ID: "1"}}
	assert.Equal(t, Thumb{Gradient: catalog.DefaultGradient}, Thumbnail(vimeo))

	assert.Equal(t, Thumb{Gradient: catalog.DefaultGradient}, Thumbnail(catalog.Project{}))
}

func TestPrimaryAction(t *testing.T) {
	video := catalog.Project{Video: &catalog.Video{Type: catalog.VideoVimeo, ID: "42"}, ArticleURL: "https://a.org"}
	a := PrimaryAction(video)
	assert.Equal(t, ActionVideo, a.Kind)
	assert.Equal(t, "https://player.vimeo.com/video/42?autoplay=1", a.Embed.URL)

	broken := catalog.Project{Video: &catalog.Video{Type: "dailymotion", ID: "x"}, ArticleURL: "https://a.org"}
	a = PrimaryAction(broken)
	assert.Equal(t, ActionArticle, a.Kind)
	assert.Equal(t, "https://a.org", a.URL)

	assert.Equal(t, ActionNone, PrimaryAction(catalog.Project{}).Kind)
}

func TestEmbedHTML(t *testing.T) {
	out, err := EmbedHTML(catalog.Video{Type: catalog.VideoYouTube, ID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, `<iframe src="https://www.youtube.com/embed/abc?autoplay=1&amp;rel=0" allow="autoplay; encrypted-media" allowfullscreen></iframe>`, out)

	out, err = EmbedHTML(catalog.Video{Type: catalog.VideoLocal, Src: "/media/a.mp4"})
	require.NoError(t, err)
	assert.Contains(t, out, `<source src="/media/a.mp4" type="video/mp4">`)
	assert.Contains(t, out, `<video controls autoplay>`)

	_, err = EmbedHTML(catalog.Video{Type: "flash", ID: "x"})
	assert.ErrorIs(t, err, catalog.ErrUnknownVideoType)

	_, err = EmbedHTML(catalog.Video{Type: catalog.VideoYouTube})
	assert.ErrorIs(t, err, catalog.ErrInvalidVideo)
}

func TestBody(t *testing.T) {
	p := catalog.Project{ID: "p", Testo: catalog.Localized{"it": "**ciao**\nmondo", "en": ""}}
	out, err := Body(p, "en")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>ciao</strong>")
	assert.Contains(t, out, "<br")

	raw := catalog.Project{Testo: catalog.Localized{"it": "<script>alert(1)</script>"}}
	out, err = Body(raw, "it")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")

	out, err = Body(catalog.Project{}, "it")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func testPage(t *testing.T) (Page, *catalog.Store) {
	t.Helper()
	store, err := catalog.New(catalog.Catalog{
		Categories: map[string]catalog.Localized{
			"doc": {"it": "Documentari", "en": "Documentaries"},
		},
		CategoryOrder: []string{"doc"},
		Sections:      map[string]catalog.Section{"video": {Order: []string{"doc"}}},
		Projects: []catalog.Project{
			{
				ID:         "a",
				Date:       "2020-01-01",
				Mainpage:   true,
				Title:      catalog.Localized{"it": "Uno <b>", "en": "One <b>"},
				Categories: []string{"doc", catalog.Uncategorized},
				Video:      &catalog.Video{Type: catalog.VideoYouTube, ID: "abc"},
				Allegati:   []string{"https://x.org/files/cv.pdf"},
			},
			{ID: "b", Title: catalog.Localized{"it": "Due"}, ArticleURL: "https://a.org/story"},
		},
	})
	require.NoError(t, err)
	tr := i18n.New()
	require.NoError(t, tr.LoadTable("en", []byte(`{"site": {"title": "Portfolio"}, "nav": {"portfolio": "Work"}, "carousel": {"viewAll": "See all"}}`)))
	return Page{
		Lang:      "en",
		T:         tr.Translator("en"),
		Store:     store,
		Nav:       view.Portfolio,
		Static:    []string{"about"},
		Languages: i18n.Options("en"),
	}, store
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestDocumentAndNav(t *testing.T) {
	p, _ := testPage(t)
	out := renderString(t, Document(p, "", StaticSection(p, "about")))

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, `<title>Portfolio</title>`)
	assert.Contains(t, out, `<a href="/en/" class="is-active" aria-current="page">Work</a>`)
	assert.Contains(t, out, `href="/en/section/about"`)
	assert.Contains(t, out, `Documentaries (1)`)
	assert.Contains(t, out, `href="/en/category/all" class="is-active"`)
	assert.Contains(t, out, `hreflang="fr"`)
	assert.Contains(t, out, `français`)
	assert.Contains(t, out, `sections.about.title`, "untranslated keys render as the key")
}

func TestDocument_Title(t *testing.T) {
	p, _ := testPage(t)

	out := renderString(t, Document(p, "One <b>", ErrorAlert(catalog.UserMessage{Message: "m"})))
	assert.True(t, strings.HasPrefix(out, `<!doctype html><html lang="en"><head>`), out)
	assert.Contains(t, out, `<title>One &lt;b&gt; | Portfolio</title>`)
	assert.Contains(t, out, `<main id="content"><div class="alert alert-error" role="alert"><p>m</p></div></main>`)

	out = renderString(t, Document(p, "Portfolio", StaticSection(p, "about")))
	assert.Contains(t, out, `<title>Portfolio</title>`)
}

func TestCard_Thumb(t *testing.T) {
	p, store := testPage(t)

	withPoster, ok := store.FindByID("a")
	require.True(t, ok)
	out := renderString(t, Card(p, withPoster))
	assert.Contains(t, out, `<a class="project-thumb" href="/en/projects/a"><img src="https://img.youtube.com/vi/abc/hqdefault.jpg" alt="One &lt;b&gt;" loading="lazy"></a>`)
	assert.Contains(t, out, `<p class="project-categories">Documentaries</p>`)

	plain, ok := store.FindByID("b")
	require.True(t, ok)
	out = renderString(t, Card(p, plain))
	assert.Contains(t, out, `<a class="project-thumb" href="/en/projects/b" style="background: `+catalog.DefaultGradient+`"></a>`)
	assert.Contains(t, out, `<a class="article-link" target="_blank" rel="noopener" href="https://a.org/story">`)
	assert.NotContains(t, out, "project-categories")
}

func TestPortfolio(t *testing.T) {
	p, store := testPage(t)
	m := view.NewMachine(store, "en", view.NewCarousel(nil, 0), nil)
	defer m.Close()

	out := renderString(t, Portfolio(p, m.Snapshot()))
	assert.Contains(t, out, `data-total="2"`)
	assert.Contains(t, out, `One &lt;b&gt;`)
	assert.NotContains(t, out, "One <b>")
	assert.Contains(t, out, `Documentaries`)
	assert.NotContains(t, out, catalog.Uncategorized)
	assert.Contains(t, out, `See all`)
	assert.Contains(t, out, `href="/en/carousel/1"`)
	assert.Contains(t, out, `https://img.youtube.com/vi/abc/hqdefault.jpg`)
	assert.Contains(t, out, `class="play-btn"`)
	assert.Contains(t, out, `<div class="carousel-slide is-active"><article class="project-card" data-id="a">`)
	assert.Contains(t, out, `<div class="carousel-slide"><a class="view-all" href="/en/projects">See all</a></div>`)
	assert.Contains(t, out, `<a href="/en/carousel/0" class="is-active" aria-current="true">1</a>`)
}

func TestGridAndDetail(t *testing.T) {
	p, store := testPage(t)

	grid := renderString(t, Grid(p, store.Visible()))
	assert.Contains(t, grid, `data-id="a"`)
	assert.Contains(t, grid, `data-id="b"`)
	assert.Contains(t, grid, `class="article-link"`)

	proj, ok := store.FindByID("a")
	require.True(t, ok)
	detail := renderString(t, Detail(p, proj))
	assert.Contains(t, detail, `href="/en/back"`)
	assert.Contains(t, detail, `<p class="project-year">2020</p>`)
	assert.Contains(t, detail, `https://www.youtube.com/embed/abc?autoplay=1&amp;rel=0`)
	assert.Contains(t, detail, `>cv.pdf</a>`)
}

func TestDetail_UnknownVideoRendersNoPlayer(t *testing.T) {
	p, _ := testPage(t)
	out := renderString(t, Detail(p, catalog.Project{ID: "x", Video: &catalog.Video{Type: "flash", ID: "1"}}))
	assert.NotContains(t, out, "<iframe")
	assert.NotContains(t, out, "<video")
}

func TestErrorAlert(t *testing.T) {
	out := renderString(t, ErrorAlert(catalog.MapError(catalog.ErrProjectNotFound)))
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "Code: PRJ001")
}
