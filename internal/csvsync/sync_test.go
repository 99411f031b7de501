package csvsync

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/catalog"
)

const previousDoc = `{
  "categories": {"doc": {"it": "Documentari", "en": "Documentaries", "fr": "Documentaires"}},
  "categoryOrder": ["doc", "tv"],
  "sections": {"reportage": {"order": ["doc"]}},
  "projects": [{"id": "old"}]
}`

const sheet = "\xEF\xBB\xBFid;visible;order;date;mainpage;title_it;title_en;categories;video_type;video_id;articleUrl\n" +
	"proj1;true;2;2021-03-04;true;Uno;One;doc,tv;youtube;abc;https://example.org/?a=1&b=2\n" +
	"proj2;false;0;;;Due;;TODO;;;\n" +
	"proj1;true;;;;Dup;;;vimeo;;\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func decode(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRun_PreservesTaxonomy(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "projects.csv", sheet)
	jsonPath := writeFile(t, dir, "projects.json", previousDoc)

	res, err := Run(context.Background(), Options{CSVPath: csvPath, JSONPath: jsonPath, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Projects)
	assert.Equal(t, 1, res.Stats.DuplicateIDs)
	assert.Equal(t, 1, res.Stats.InvalidVideos)
	assert.False(t, res.Stats.TaxonomyReset)
	assert.Equal(t, "Updated "+jsonPath+" with 3 projects from CSV.", res.Summary())

	out := decode(t, jsonPath)
	assert.Len(t, out, 4)
	assert.JSONEq(t, `{"doc": {"it": "Documentari", "en": "Documentaries", "fr": "Documentaires"}}`, string(out["categories"]))
	assert.JSONEq(t, `["doc", "tv"]`, string(out["categoryOrder"]))
	assert.JSONEq(t, `{"reportage": {"order": ["doc"]}}`, string(out["sections"]))

	store, err := catalog.Load(context.Background(), catalog.DirSource(dir), "projects.json")
	require.Error(t, err, "duplicate ids are rejected at load")
	assert.ErrorIs(t, err, catalog.ErrParse)
	assert.Nil(t, store)

	var projects []catalog.Project
	require.NoError(t, json.Unmarshal(out["projects"], &projects))
	require.Len(t, projects, 3)
	assert.Equal(t, "proj1", projects[0].ID)
	assert.Equal(t, 0, *projects[1].Order)
	assert.False(t, *projects[1].Visible)
	assert.False(t, projects[1].Mainpage)
}

func TestRun_OutputFormat(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "projects.csv", "id;visible;mainpage;articleUrl\np1;true;false;https://x.org/?a=1&b=2\n")
	jsonPath := filepath.Join(dir, "projects.json")

	_, err := Run(context.Background(), Options{CSVPath: csvPath, JSONPath: jsonPath, Logger: quietLogger()})
	require.NoError(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	s := string(data)
	assert.True(t, bytes.HasSuffix(data, []byte("}\n")))
	assert.Contains(t, s, "\n  \"categories\": {},\n")
	assert.Contains(t, s, "\"categoryOrder\": [],")
	assert.Contains(t, s, "https://x.org/?a=1&b=2")
	assert.NotContains(t, s, "mainpage")
	assert.Contains(t, s, `"visible": true`)
	assert.Contains(t, s, `"order": 999`)
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "projects.csv", sheet)
	jsonPath := writeFile(t, dir, "projects.json", previousDoc)
	opts := Options{CSVPath: csvPath, JSONPath: jsonPath, Logger: quietLogger()}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRun_HeaderOnlyKeepsTaxonomy(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "projects.csv", "id;visible\n")
	jsonPath := writeFile(t, dir, "projects.json", previousDoc)

	res, err := Run(context.Background(), Options{CSVPath: csvPath, JSONPath: jsonPath, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Zero(t, res.Projects)

	out := decode(t, jsonPath)
	assert.JSONEq(t, `[]`, string(out["projects"]))
	assert.JSONEq(t, `["doc", "tv"]`, string(out["categoryOrder"]))
}

func TestRun_CorruptPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "projects.csv", "id\np1\n")
	jsonPath := writeFile(t, dir, "projects.json", "{not json")

	var logs bytes.Buffer
	res, err := Run(context.Background(), Options{
		CSVPath:  csvPath,
		JSONPath: jsonPath,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	assert.True(t, res.Stats.TaxonomyReset)
	assert.Contains(t, logs.String(), "could not read existing JSON, starting fresh")

	out := decode(t, jsonPath)
	assert.JSONEq(t, `{}`, string(out["categories"]))
	assert.JSONEq(t, `{}`, string(out["sections"]))
}

func TestRun_UnreadableCSVWritesNothing(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "projects.json", previousDoc)

	_, err := Run(context.Background(), Options{
		CSVPath:  filepath.Join(dir, "missing.csv"),
		JSONPath: jsonPath,
		Logger:   quietLogger(),
	})
	require.Error(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, previousDoc, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestMerge_NullBlocksDefault(t *testing.T) {
	tax, err := ParseTaxonomy([]byte(`{"categories": null, "sections": {"a": {"order": []}}}`))
	require.NoError(t, err)

	doc := Merge(tax, nil)
	data, err := Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories": {}, "categoryOrder": [], "sections": {"a": {"order": []}}, "projects": []}`, string(data))
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "out.json", "old")

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
