package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/catalog"
	"portfolio/internal/config"
	"portfolio/internal/i18n"
	"portfolio/internal/view"
)

const testCatalog = `{
  "categories": {"doc": {"it": "Documentari", "en": "Documentaries"}},
  "categoryOrder": ["doc"],
  "sections": {"journalism": {"order": ["doc"]}},
  "projects": [
    {"id": "a", "order": 1, "mainpage": true, "date": "March 2021", "categories": ["doc"],
     "title": {"it": "Alfa", "en": "Alpha"}, "video": {"type": "youtube", "id": "abc123"}},
    {"id": "b", "order": 2, "mainpage": true, "categories": ["doc"],
     "title": {"it": "Beta", "en": "Beta EN"}, "articleUrl": "https://example.org/b"},
    {"id": "c", "order": 3, "categories": ["doc"],
     "title": {"en": "Gamma"}, "video": {"type": "dvd", "id": "x"}},
    {"id": "hidden", "visible": false, "categories": ["doc"], "title": {"en": "Hidden"}}
  ]
}`

const testTable = `{
  "site": {"title": "Test Portfolio"},
  "nav": {"portfolio": "Portfolio", "allProjects": "All projects", "about": "About"},
  "sections": {"about": {"title": "About me", "body": "Hello."}}
}`

// stillClock never ticks, so autoplay never advances on its own.
type stillClock struct{}

func (stillClock) NewTicker(time.Duration) view.Ticker { return stillTicker{} }

type stillTicker struct{}

func (stillTicker) C() <-chan time.Time { return nil }
func (stillTicker) Stop()               {}

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	vars := map[string]string{"RATE_LIMIT_ENABLED": "false"}
	for k, v := range env {
		vars[k] = v
	}
	cfg, err := config.LoadFrom(config.MapLookup(vars))
	require.NoError(t, err)
	return cfg
}

func testServer(t *testing.T, env map[string]string) *Server {
	t.Helper()
	store, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	tr := i18n.New()
	require.NoError(t, tr.LoadTable("en", []byte(testTable)))
	require.NoError(t, tr.LoadTable("it", []byte(`{"site": {"title": "Portfolio di prova"}}`)))

	srv := NewServer(testConfig(t, env), catalog.NewHolder(store), tr, WithClock(stillClock{}))
	t.Cleanup(srv.Close)
	return srv
}

type reqOpt func(*http.Request)

func withCookie(c *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(c) }
}

func htmx(r *http.Request) { r.Header.Set("HX-Request", "true") }

func get(srv *Server, path string, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "pf_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRoot_RedirectsToPreferredLanguage(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/", func(r *http.Request) { r.Header.Set("Accept-Language", "fr-CH, fr;q=0.9, en;q=0.5") })
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/fr/", rec.Header().Get("Location"))

	rec = get(srv, "/")
	assert.Equal(t, "/it/", rec.Header().Get("Location"))
}

func TestUnknownLanguage(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/de/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NAV001")
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
}

func TestPortfolio(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/en/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Test Portfolio</title>")
	assert.Contains(t, body, `data-total="3"`)
	assert.Contains(t, body, "Alpha")
	assert.Contains(t, body, "Documentaries (3)")
	assert.NotContains(t, body, "Hidden")

	c := sessionCookie(t, rec)
	assert.Equal(t, "/en/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestSecurityHeaders(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/en/")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://www.youtube.com")

	srv = testServer(t, map[string]string{"SECURITY_ENABLE_CSP": "false"})
	rec = get(srv, "/en/")
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestSession_PerLanguage(t *testing.T) {
	srv := testServer(t, nil)

	en := sessionCookie(t, get(srv, "/en/"))
	rec := get(srv, "/en/projects", withCookie(en))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "known session must not be replaced")
	assert.Equal(t, 1, srv.sessions.len())

	// A cookie from another language starts a separate session.
	rec = get(srv, "/it/", withCookie(en))
	it := sessionCookie(t, rec)
	assert.NotEqual(t, en.Value, it.Value)
	assert.Equal(t, "/it/", it.Path)
	assert.Equal(t, 2, srv.sessions.len())
}

func TestDetailAndBack(t *testing.T) {
	srv := testServer(t, nil)
	c := sessionCookie(t, get(srv, "/en/projects"))

	rec := get(srv, "/en/projects/a", withCookie(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="player"`)
	assert.Contains(t, body, "https://www.youtube.com/embed/abc123")
	assert.Contains(t, body, "<title>Alpha | Test Portfolio</title>")

	// Opening a second project keeps the original return point.
	get(srv, "/en/projects/b", withCookie(c))

	rec = get(srv, "/en/back", withCookie(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/en/projects", rec.Header().Get("Location"))

	// Nothing recorded any more: back goes to the portfolio.
	rec = get(srv, "/en/back", withCookie(c))
	assert.Equal(t, "/en/", rec.Header().Get("Location"))
}

func TestDetail_UnknownProject(t *testing.T) {
	srv := testServer(t, nil)

	for _, id := range []string{"missing", "hidden"} {
		rec := get(srv, "/en/projects/"+id)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Contains(t, rec.Body.String(), "PRJ001", id)
	}
}

func TestHTMX_Fragments(t *testing.T) {
	srv := testServer(t, nil)
	c := sessionCookie(t, get(srv, "/en/"))

	rec := get(srv, "/en/projects", withCookie(c), htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!doctype html>")
	assert.Contains(t, rec.Body.String(), `class="all-projects"`)

	rec = get(srv, "/en/category/doc", withCookie(c), htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/en/", rec.Header().Get("HX-Push-Url"))
	assert.Contains(t, rec.Body.String(), `data-total="4"`)

	rec = get(srv, "/en/projects/missing", withCookie(c), htmx)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<div class="alert alert-error"`), rec.Body.String())
}

func TestCategory(t *testing.T) {
	srv := testServer(t, nil)
	c := sessionCookie(t, get(srv, "/en/"))

	rec := get(srv, "/en/category/doc", withCookie(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/en/", rec.Header().Get("Location"))

	rec = get(srv, "/en/", withCookie(c))
	assert.Contains(t, rec.Body.String(), `data-total="4"`)

	rec = get(srv, "/en/category/all", withCookie(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = get(srv, "/en/", withCookie(c))
	assert.Contains(t, rec.Body.String(), `data-total="3"`)

	rec = get(srv, "/en/category/nope", withCookie(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCarousel(t *testing.T) {
	srv := testServer(t, nil)
	c := sessionCookie(t, get(srv, "/en/"))

	tests := []struct {
		to   string
		want string
	}{
		{"next", `data-current="1"`},
		{"next", `data-current="2"`},
		{"next", `data-current="0"`},
		{"prev", `data-current="2"`},
		{"1", `data-current="1"`},
		{"4", `data-current="0"`},
		{"-3", `data-current="2"`},
	}
	for _, tt := range tests {
		rec := get(srv, "/en/carousel/"+tt.to, withCookie(c), htmx)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), tt.want, tt.to)
	}

	rec := get(srv, "/en/carousel/sideways", withCookie(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticSection(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/en/section/about")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About me")
	assert.Contains(t, rec.Body.String(), `aria-current="page">About`)

	rec = get(srv, "/en/section/press")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Catalog(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/api/catalog")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	doc := decode(t, rec)
	assert.Len(t, doc["projects"], 4)
	assert.Equal(t, []any{"doc"}, doc["categoryOrder"])
}

func TestAPI_Project(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/api/projects/a?lang=en")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode(t, rec)
	assert.Equal(t, "a", p["id"])
	assert.Equal(t, "2021", p["year"])
	assert.Equal(t, "https://img.youtube.com/vi/abc123/hqdefault.jpg", p["poster"])
	assert.Equal(t, []any{"Documentaries"}, p["labels"])
	embed, ok := p["embed"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "iframe", embed["kind"])

	rec = get(srv, "/api/projects/hidden")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRJ001", decode(t, rec)["code"])
}

func TestAPI_Translations(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/api/i18n/en")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, testTable, rec.Body.String())

	for _, lang := range []string{"fr", "de"} {
		rec = get(srv, "/api/i18n/"+lang)
		assert.Equal(t, http.StatusNotFound, rec.Code, lang)
		assert.Equal(t, "NAV001", decode(t, rec)["code"], lang)
	}
}

func TestAPI_Embed(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/api/embed/a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<iframe src="https://www.youtube.com/embed/abc123`), rec.Body.String())

	tests := []struct {
		id     string
		status int
		code   string
	}{
		{"b", http.StatusUnprocessableEntity, "VID002"},
		{"c", http.StatusUnprocessableEntity, "VID001"},
		{"missing", http.StatusNotFound, "PRJ001"},
	}
	for _, tt := range tests {
		rec := get(srv, "/api/embed/"+tt.id)
		assert.Equal(t, tt.status, rec.Code, tt.id)
		assert.Equal(t, tt.code, decode(t, rec)["code"], tt.id)
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t, nil)
	get(srv, "/en/")

	rec := get(srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode(t, rec)
	assert.Equal(t, "ok", h["status"])
	assert.Equal(t, float64(3), h["projects"])
	assert.Equal(t, float64(1), h["sessions"])
	assert.Equal(t, []any{"it", "en"}, h["languages"])
}

func TestStatic(t *testing.T) {
	srv := testServer(t, nil)

	rec := get(srv, "/static/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestRateLimit(t *testing.T) {
	srv := testServer(t, map[string]string{"RATE_LIMIT_ENABLED": "true", "RATE_LIMIT_API": "1"})

	assert.Equal(t, http.StatusOK, get(srv, "/api/catalog").Code)

	rec := get(srv, "/api/catalog")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode(t, rec)["code"])

	// Pages have their own, larger budget.
	assert.Equal(t, http.StatusOK, get(srv, "/en/").Code)
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.close()

	assert.True(t, rl.allow("192.0.2.1"))
	assert.True(t, rl.allow("192.0.2.1"))
	assert.False(t, rl.allow("192.0.2.1"))
	assert.True(t, rl.allow("192.0.2.2"))
}
