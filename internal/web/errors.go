package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request ID, then
// answered with the coded message from catalog.MapError in the format the
// client asked for: an alert fragment for HTMX, JSON for the API, or a full
// page otherwise.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"

	"portfolio/internal/catalog"
	"portfolio/internal/render"
)

// errPageNotFound maps to NAV001.
var errPageNotFound = errors.New("page not found")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped message with statusCode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := catalog.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	switch {
	case isHTMX(r):
		renderComponent(w, r, statusCode, render.ErrorAlert(userMsg))
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		s.respondErrorHTML(w, r, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg catalog.UserMessage, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the alert inside the site chrome. Outside a
// language prefix the default language is used.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msg catalog.UserMessage, statusCode int) {
	p := s.page(r, nil)
	renderComponent(w, r, statusCode, render.Document(p, msg.Message, render.ErrorAlert(msg)))
}

// renderComponent writes c as HTML with statusCode.
func renderComponent(w http.ResponseWriter, r *http.Request, statusCode int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(statusCode)).ServeHTTP(w, r)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
