package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"portfolio/internal/catalog"
)

// Default is the site language when a request names none or an unsupported one.
const Default = catalog.LangIT

var supportedTags = []language.Tag{language.Italian, language.English, language.French}

var matcher = language.NewMatcher(supportedTags)

// Supported returns the site languages in menu order.
func Supported() []string {
	out := make([]string, len(supportedTags))
	for i, tag := range supportedTags {
		out[i] = baseOf(tag)
	}
	return out
}

// IsSupported reports whether lang is one of the site languages.
func IsSupported(lang string) bool {
	for _, s := range Supported() {
		if s == lang {
			return true
		}
	}
	return false
}

// Normalize maps a language tag such as "en-GB" or "FR" to a supported base
// language, or Default.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Default
	}
	tag, err := language.Parse(value)
	if err != nil {
		return Default
	}
	base := baseOf(tag)
	if IsSupported(base) {
		return base
	}
	return Default
}

// LanguageFromPath returns the language named by the first path segment,
// "/en/projects" giving "en". Anything else gives Default.
func LanguageFromPath(path string) string {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	return Normalize(seg)
}

// FromAcceptLanguage picks the best site language for an Accept-Language header.
func FromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return baseOf(supportedTags[idx])
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Code   string
	Label  string // native name, e.g. "français"
	Active bool
}

// Options returns the switcher entries with active marked.
func Options(active string) []LanguageOption {
	out := make([]LanguageOption, 0, len(supportedTags))
	for _, tag := range supportedTags {
		code := baseOf(tag)
		out = append(out, LanguageOption{
			Code:   code,
			Label:  Label(code),
			Active: code == active,
		})
	}
	return out
}

// Label returns the native name of lang, or lang itself if it is unknown.
func Label(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return lang
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
