package csvsync

import (
	"strconv"
	"strings"

	"portfolio/internal/catalog"
)

// Recognized CSV columns.
const (
	ColID                = "id"
	ColVisible           = "visible"
	ColOrder             = "order"
	ColDate              = "date"
	ColMainpage          = "mainpage"
	ColThumbnailURL      = "thumbnail_url"
	ColThumbnailGradient = "thumbnail_fallbackGradient"
	ColArticleURL        = "articleUrl"
	ColCategories        = "categories"
	ColVideoType         = "video_type"
	ColVideoID           = "video_id"
	ColVideoSrc          = "video_src"
	ColAllegati          = "allegati"
	ColTitlePrefix       = "title_"
	ColDescriptionPrefix = "description_"
	ColTestoPrefix       = "testo_"
)

// DefaultGradient is the thumbnail background used when the sheet leaves it blank.
const DefaultGradient = catalog.DefaultGradient

// Row is one data row keyed by header name.
type Row map[string]string

// Columns returns the header of a complete editor spreadsheet, in sheet order.
func Columns() []string {
	return []string{
		ColID, ColVisible, ColOrder, ColDate, ColMainpage,
		ColThumbnailURL, ColThumbnailGradient,
		ColTitlePrefix + catalog.LangIT, ColTitlePrefix + catalog.LangEN, ColTitlePrefix + catalog.LangFR,
		ColArticleURL, ColCategories,
		ColVideoType, ColVideoID, ColVideoSrc,
		ColAllegati,
		ColTestoPrefix + catalog.LangIT, ColTestoPrefix + catalog.LangEN, ColTestoPrefix + catalog.LangFR,
	}
}

// ToObjects pairs the header row with each data row. Missing trailing fields
// become "". Rows consisting of a single empty field are skipped. Fewer than
// two rows yields nil.
func ToObjects(rows [][]string) []Row {
	if len(rows) < 2 {
		return nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	out := make([]Row, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if len(r) == 1 && r[0] == "" {
			continue
		}
		obj := make(Row, len(headers))
		for c, h := range headers {
			if c < len(r) {
				obj[h] = r[c]
			} else {
				obj[h] = ""
			}
		}
		out = append(out, obj)
	}
	return out
}

// MapRow builds a Project from one row.
func MapRow(row Row) catalog.Project {
	p := catalog.Project{
		ID:      strings.TrimSpace(row[ColID]),
		Visible: catalog.Bool(row[ColVisible] == "true"),
		Order:   catalog.Int(OrderOrDefault(row[ColOrder])),
		Date:    row[ColDate],
		Thumbnail: &catalog.Thumbnail{
			URL:              row[ColThumbnailURL],
			FallbackGradient: orDefault(row[ColThumbnailGradient], DefaultGradient),
		},
		Title:      localized(row, ColTitlePrefix),
		ArticleURL: row[ColArticleURL],
		Categories: SplitList(row[ColCategories]),
		Mainpage:   row[ColMainpage] == "true",
		Allegati:   SplitList(row[ColAllegati]),
		Testo:      localized(row, ColTestoPrefix),
	}

	if hasAny(row, ColDescriptionPrefix) {
		p.Description = localized(row, ColDescriptionPrefix)
	}

	if vt := strings.TrimSpace(row[ColVideoType]); vt != "" {
		v := &catalog.Video{Type: catalog.VideoType(vt)}
		if id := strings.TrimSpace(row[ColVideoID]); id != "" {
			v.ID = id
		}
		if src := strings.TrimSpace(row[ColVideoSrc]); src != "" {
			v.Src = src
		}
		p.Video = v
	}

	return p
}

// ParseOrder reads the leading integer of raw, the way a spreadsheet user
// expects "3", " 3" or "3." to mean 3. The bool is false when raw has no
// leading digits.
func ParseOrder(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// OrderOrDefault is ParseOrder with catalog.DefaultOrder for unparseable values.
// A literal 0 stays 0.
func OrderOrDefault(raw string) int {
	if n, ok := ParseOrder(raw); ok {
		return n
	}
	return catalog.DefaultOrder
}

// SplitList splits a comma-separated cell, trimming tokens and dropping
// empty ones. Order is kept and duplicates are not removed. The result is
// never nil so it serializes as [].
func SplitList(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func localized(row Row, prefix string) catalog.Localized {
	l := make(catalog.Localized, len(catalog.Languages))
	for _, lang := range catalog.Languages {
		l[lang] = row[prefix+lang]
	}
	return l
}

func hasAny(row Row, prefix string) bool {
	for _, lang := range catalog.Languages {
		if _, ok := row[prefix+lang]; ok {
			return true
		}
	}
	return false
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
