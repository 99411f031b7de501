package csvsync

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/catalog"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "quoted delimiter",
			in:   "a;\"Rome; Italy\";c\n",
			want: [][]string{{"a", "Rome; Italy", "c"}},
		},
		{
			name: "escaped quote",
			in:   "\"say \"\"hi\"\"\";x",
			want: [][]string{{`say "hi"`, "x"}},
		},
		{
			name: "quoted newline",
			in:   "\"line1\nline2\";b\nc;d",
			want: [][]string{{"line1\nline2", "b"}, {"c", "d"}},
		},
		{
			name: "crlf and bare cr",
			in:   "a;b\r\nc;d\re;f",
			want: [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
		},
		{
			name: "trailing newline dropped",
			in:   "a;b\n",
			want: [][]string{{"a", "b"}},
		},
		{
			name: "blank line in the middle kept",
			in:   "a\n\nb\n",
			want: [][]string{{"a"}, {""}, {"b"}},
		},
		{
			name: "text after closing quote dropped",
			in:   "\"ab\"junk;c",
			want: [][]string{{"ab", "c"}},
		},
		{
			name: "ragged rows",
			in:   "a;b;c\nd\n",
			want: [][]string{{"a", "b", "c"}, {"d"}},
		},
		{
			name: "trailing delimiter yields empty field",
			in:   "a;",
			want: [][]string{{"a", ""}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "unterminated quote runs to end",
			in:   "a;\"open\nstill",
			want: [][]string{{"a", "open\nstill"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in, DefaultDelimiter))
		})
	}
}

func TestParse_CustomDelimiter(t *testing.T) {
	got := Parse("a,\"b,c\"\n", ',')
	assert.Equal(t, [][]string{{"a", "b,c"}}, got)
}

func TestParseStrict(t *testing.T) {
	rows, err := ParseStrict("a;b\nc;d\n", DefaultDelimiter)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = ParseStrict("a;b\nc;\"d", DefaultDelimiter)
	require.Error(t, err)
	assert.True(t, IsUnterminatedQuote(err))
	assert.True(t, errors.Is(err, catalog.ErrParse))

	var issue Issue
	require.True(t, errors.As(err, &issue))
	assert.Equal(t, 2, issue.Row)
	assert.Equal(t, 2, issue.Column)
}

func TestLint(t *testing.T) {
	assert.Empty(t, Lint("a;\"b\"\n", DefaultDelimiter))
	assert.Len(t, Lint("\"a", DefaultDelimiter), 1)
}

func TestWrite_RoundTrip(t *testing.T) {
	rows := [][]string{
		{"id", "title_it", "testo_it"},
		{"p1", "Roma; Italia", "He said \"ciao\""},
		{"p2", "", "first\nsecond"},
		{"p3", "cr\rinside", "\"leading quote"},
		{"lonely"},
	}

	out := Format(rows, DefaultDelimiter)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, rows, Parse(out, DefaultDelimiter))
}

func TestWrite_QuotesOnlyWhenNeeded(t *testing.T) {
	out := Format([][]string{{"plain", "semi;colon", `q"uote`}}, DefaultDelimiter)
	assert.Equal(t, "plain;\"semi;colon\";\"q\"\"uote\"\n", out)
}

func TestReadText_StripsBOM(t *testing.T) {
	text, err := ReadText(strings.NewReader("\xEF\xBB\xBFid;title_it\np1;Ciao\n"))
	require.NoError(t, err)
	assert.Equal(t, "id;title_it\np1;Ciao\n", text)

	rows := ToObjects(Parse(text, DefaultDelimiter))
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0][ColID])
}

func TestReadText_ReplacesInvalidUTF8(t *testing.T) {
	text, err := ReadText(strings.NewReader("a;\xff\n"))
	require.NoError(t, err)
	assert.Equal(t, "a;\uFFFD\n", text)
}
