package i18n

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/catalog"
)

const itTable = `{
  "nav": {"portfolio": "Portfolio", "about": "Chi sono"},
  "carousel": {"viewAll": "Vedi tutti"},
  "count": 3,
  "list": ["a"]
}`

func TestResolve(t *testing.T) {
	r := New()
	require.NoError(t, r.LoadTable("it", []byte(itTable)))

	tests := []struct {
		key  string
		lang string
		want string
	}{
		{"nav.about", "it", "Chi sono"},
		{"carousel.viewAll", "it", "Vedi tutti"},
		{"nav.missing", "it", "nav.missing"},
		{"nav", "it", "nav"},
		{"nav.about.deeper", "it", "nav.about.deeper"},
		{"count", "it", "count"},
		{"list.0", "it", "list.0"},
		{"", "it", ""},
		{"nav.about", "en", "nav.about"},
		{"nav.about", "", "nav.about"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.key, tt.lang))
		})
	}
}

func TestTranslator(t *testing.T) {
	r := New()
	require.NoError(t, r.LoadTable("it", []byte(itTable)))
	tr := r.Translator("it")
	assert.Equal(t, "Portfolio", tr("nav.portfolio"))
	assert.Equal(t, "x.y", tr("x.y"))
}

func TestLoadTable_Invalid(t *testing.T) {
	r := New()
	err := r.LoadTable("it", []byte("{broken"))
	assert.ErrorIs(t, err, catalog.ErrParse)
	assert.ErrorIs(t, r.LoadTable("it", []byte("null")), catalog.ErrParse)
	assert.False(t, r.Loaded("it"))
}

func TestLoad_PartialFailure(t *testing.T) {
	src := catalog.FileSource{FS: fstest.MapFS{
		"it.json": {Data: []byte(itTable)},
		"en.json": {Data: []byte(`{"nav": {"about": "About"}}`)},
		"fr.json": {Data: []byte(`not json`)},
	}}

	r := New()
	err := r.Load(context.Background(), src, "it", "en", "fr", "de")
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrParse))
	assert.True(t, errors.Is(err, catalog.ErrNotFound))

	assert.True(t, r.Loaded("it"))
	assert.True(t, r.Loaded("en"))
	assert.False(t, r.Loaded("fr"))
	assert.Equal(t, "About", r.Resolve("nav.about", "en"))
	assert.Equal(t, "nav.about", r.Resolve("nav.about", "fr"))

	raw, ok := r.Raw("en")
	require.True(t, ok)
	assert.JSONEq(t, `{"nav": {"about": "About"}}`, string(raw))
}

func TestLanguageFromPath(t *testing.T) {
	tests := map[string]string{
		"/en/projects": "en",
		"/fr":          "fr",
		"/it/":         "it",
		"/EN-gb/x":     "en",
		"/de/x":        Default,
		"/":            Default,
		"":             Default,
		"/projects":    Default,
	}
	for path, want := range tests {
		assert.Equal(t, want, LanguageFromPath(path), path)
	}
}

func TestFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, "fr", FromAcceptLanguage("fr-CH, fr;q=0.9, en;q=0.8"))
	assert.Equal(t, "en", FromAcceptLanguage("en-US"))
	assert.Equal(t, Default, FromAcceptLanguage("ja"))
	assert.Equal(t, Default, FromAcceptLanguage(""))
}

func TestOptions(t *testing.T) {
	opts := Options("fr")
	require.Len(t, opts, 3)
	assert.Equal(t, []string{"it", "en", "fr"}, []string{opts[0].Code, opts[1].Code, opts[2].Code})
	assert.True(t, opts[2].Active)
	assert.False(t, opts[0].Active)
	assert.Equal(t, "italiano", opts[0].Label)
	assert.Equal(t, "English", opts[1].Label)
	assert.Equal(t, "français", opts[2].Label)
}
