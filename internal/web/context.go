package web

import (
	"context"
	"net/http"
)

type langKey struct{}

// withLang stores the page language for handlers below requireLanguage.
func withLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// langFrom returns the page language of r. It is empty outside /{lang}.
func langFrom(r *http.Request) string {
	lang, _ := r.Context().Value(langKey{}).(string)
	return lang
}
