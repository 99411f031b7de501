package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"portfolio/internal/catalog"
	"portfolio/internal/i18n"
	"portfolio/internal/render"
	"portfolio/internal/view"
)

// handleRoot sends the visitor to their preferred language.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
	http.Redirect(w, r, "/"+lang+"/", http.StatusFound)
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status    string   `json:"status"`
	Projects  int      `json:"projects"`
	Sessions  int      `json:"sessions"`
	Languages []string `json:"languages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Projects:  s.catalog.Current().Len(),
		Sessions:  s.sessions.len(),
		Languages: []string{},
	}
	for _, lang := range i18n.Supported() {
		if s.i18n.Loaded(lang) {
			resp.Languages = append(resp.Languages, lang)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireLanguage rejects paths whose first segment is not a supported language.
func (s *Server) requireLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := chi.URLParam(r, "lang")
		if !i18n.IsSupported(lang) {
			s.respondError(w, r, fmt.Errorf("language %q: %w", lang, errPageNotFound), http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withLang(r.Context(), lang)))
	})
}

// Page views. Each runs one operation on the visitor's state machine and
// renders the resulting view.

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	s.show(w, r, func(m *view.Machine) error {
		m.Navigate(view.Portfolio)
		return nil
	})
}

func (s *Server) handleAllProjects(w http.ResponseWriter, r *http.Request) {
	s.show(w, r, func(m *view.Machine) error {
		m.Navigate(view.AllProjects)
		return nil
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.show(w, r, func(m *view.Machine) error {
		return m.ShowDetail(id)
	})
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !slices.Contains(s.cfg.Catalog.StaticSections, name) {
		s.respondError(w, r, fmt.Errorf("section %q: %w", name, errPageNotFound), http.StatusNotFound)
		return
	}
	s.show(w, r, func(m *view.Machine) error {
		m.Navigate(view.Section(name))
		return nil
	})
}

// Actions. They change state and then redirect to the address of the view
// they land on, so a reload never repeats them. HTMX requests get the
// fragment directly.

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(m *view.Machine) error {
		m.Back()
		return nil
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.act(w, r, func(m *view.Machine) error {
		if id != view.FilterAll && !knownCategory(m.Store(), id) {
			return fmt.Errorf("category %q: %w", id, errPageNotFound)
		}
		m.FilterByCategory(id)
		return nil
	})
}

func (s *Server) handleCarousel(w http.ResponseWriter, r *http.Request) {
	to := chi.URLParam(r, "to")
	var move func(*view.Machine)
	switch to {
	case "next":
		move = func(m *view.Machine) { m.NextSlide() }
	case "prev":
		move = func(m *view.Machine) { m.PrevSlide() }
	default:
		i, err := strconv.Atoi(to)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("carousel target %q: %w", to, errPageNotFound), http.StatusNotFound)
			return
		}
		move = func(m *view.Machine) { m.GoToSlide(i) }
	}
	s.act(w, r, func(m *view.Machine) error {
		m.Navigate(view.Portfolio)
		move(m)
		return nil
	})
}

func knownCategory(store *catalog.Store, id string) bool {
	return store.CountByCategory(id) > 0 || slices.Contains(store.Categories(), id)
}

// show runs op and renders the resulting view.
func (s *Server) show(w http.ResponseWriter, r *http.Request, op func(*view.Machine) error) {
	sess, snap, ok := s.drive(w, r, op)
	if !ok {
		return
	}
	s.renderView(w, r, sess, snap)
}

// act runs op and redirects to the view it lands on.
func (s *Server) act(w http.ResponseWriter, r *http.Request, op func(*view.Machine) error) {
	sess, snap, ok := s.drive(w, r, op)
	if !ok {
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", viewURL(sess.lang, snap))
		s.renderView(w, r, sess, snap)
		return
	}
	http.Redirect(w, r, viewURL(sess.lang, snap), http.StatusSeeOther)
}

// drive runs op on the visitor's loop and takes a snapshot in the same step.
// It writes the error response itself and reports false on failure.
func (s *Server) drive(w http.ResponseWriter, r *http.Request, op func(*view.Machine) error) (*session, view.Snapshot, bool) {
	sess := s.sessions.get(w, r, langFrom(r))

	var snap view.Snapshot
	var opErr error
	err := sess.loop.Do(r.Context(), func(m *view.Machine) {
		opErr = op(m)
		snap = m.Snapshot()
	})

	switch {
	case errors.Is(err, view.ErrClosed):
		s.respondError(w, r, fmt.Errorf("session expired: %w", err), http.StatusGone)
		return nil, snap, false
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, r, err, http.StatusGatewayTimeout)
		return nil, snap, false
	case err != nil:
		// Client went away.
		return nil, snap, false
	case opErr != nil:
		s.respondError(w, r, opErr, http.StatusNotFound)
		return nil, snap, false
	}
	return sess, snap, true
}

// viewURL is the address that shows snap.
func viewURL(lang string, snap view.Snapshot) string {
	base := "/" + lang + "/"
	switch snap.Active {
	case view.Portfolio:
		return base
	case view.AllProjects:
		return base + "projects"
	case view.ProjectDetail:
		if snap.Detail != nil {
			return base + "projects/" + snap.Detail.ID
		}
		return base
	default:
		return base + "section/" + string(snap.Active)
	}
}

// page builds the render context. Without a session the current catalog and
// the default language are used.
func (s *Server) page(r *http.Request, sess *session) render.Page {
	lang := langFrom(r)
	store := s.catalog.Current()
	if sess != nil {
		lang, store = sess.lang, sess.store
	}
	if lang == "" {
		lang = i18n.Default
	}
	return render.Page{
		Lang:      lang,
		T:         s.i18n.Translator(lang),
		Store:     store,
		Nav:       view.Portfolio,
		Static:    s.cfg.Catalog.StaticSections,
		Languages: i18n.Options(lang),
	}
}

// renderView writes the active view of snap, inside the site chrome unless
// the request comes from HTMX.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, sess *session, snap view.Snapshot) {
	p := s.page(r, sess)
	p.Nav = snap.Nav
	p.Filter = snap.Filter

	var title string
	var content templ.Component
	switch snap.Active {
	case view.Portfolio:
		content = render.Portfolio(p, snap)
	case view.AllProjects:
		title = p.T("nav.allProjects")
		if p.Filter != "" {
			title = p.Store.CategoryLabel(p.Filter, p.Lang)
		}
		content = render.Grid(p, snap.Grid)
	case view.ProjectDetail:
		title = render.Title(*snap.Detail, p.Lang)
		content = render.Detail(p, *snap.Detail)
	default:
		name := string(snap.Active)
		title = p.T("sections." + name + ".title")
		content = render.StaticSection(p, name)
	}

	w.Header().Set("Cache-Control", "no-store")
	if isHTMX(r) {
		renderComponent(w, r, http.StatusOK, content)
		return
	}
	renderComponent(w, r, http.StatusOK, render.Document(p, title, content))
}

// API

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Current().Document())
}

// projectResponse is a project with the values the renderer derives from it.
type projectResponse struct {
	catalog.Project
	Year     string         `json:"year,omitempty"`
	Poster   string         `json:"poster,omitempty"`
	Gradient string         `json:"gradient,omitempty"`
	Labels   []string       `json:"labels"`
	Embed    *embedResponse `json:"embed,omitempty"`
}

type embedResponse struct {
	Kind  catalog.EmbedKind `json:"kind"`
	URL   string            `json:"url"`
	Allow string            `json:"allow,omitempty"`
	MIME  string            `json:"mime,omitempty"`
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	store := s.catalog.Current()
	lang := i18n.Normalize(r.URL.Query().Get("lang"))

	id := chi.URLParam(r, "id")
	proj, ok := store.FindByID(id)
	if !ok {
		s.respondError(w, r, fmt.Errorf("project %q: %w", id, catalog.ErrProjectNotFound), http.StatusNotFound)
		return
	}

	th := render.Thumbnail(proj)
	resp := projectResponse{
		Project:  proj,
		Year:     render.Year(proj.Date),
		Poster:   th.ImageURL,
		Gradient: th.Gradient,
		Labels:   store.Labels(proj, lang),
	}
	if a := render.PrimaryAction(proj); a.Kind == render.ActionVideo {
		resp.Embed = &embedResponse{Kind: a.Embed.Kind, URL: a.Embed.URL, Allow: a.Embed.Allow, MIME: a.Embed.MIME}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	data, ok := s.i18n.Raw(lang)
	if !i18n.IsSupported(lang) || !ok {
		s.respondError(w, r, fmt.Errorf("translations %q: %w", lang, errPageNotFound), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleEmbed serves the player markup of a project. The markup is built per
// request so closing the modal and opening it again restarts playback.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	proj, ok := s.catalog.Current().FindByID(id)
	if !ok {
		s.respondError(w, r, fmt.Errorf("embed %q: %w", id, catalog.ErrProjectNotFound), http.StatusNotFound)
		return
	}
	if proj.Video == nil {
		s.respondError(w, r, fmt.Errorf("embed %q: no video: %w", id, catalog.ErrInvalidVideo), http.StatusUnprocessableEntity)
		return
	}
	if _, err := proj.Video.Embed(); err != nil {
		s.respondError(w, r, fmt.Errorf("embed %q: %w", id, err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	renderComponent(w, r, http.StatusOK, render.Embed(*proj.Video))
}
