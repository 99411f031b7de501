package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio/internal/catalog"
	"portfolio/internal/config"
	"portfolio/internal/view"
)

// session is one visitor in one language. It owns a view loop built on the
// catalog that was current when the session started.
type session struct {
	id       string
	lang     string
	loop     *view.Loop
	store    *catalog.Store
	lastSeen time.Time // guarded by sessions.mu
}

// sessions tracks live visitor sessions. The cookie is scoped to /{lang}/,
// so a visitor has an independent session per language.
type sessions struct {
	cfg      config.SessionConfig
	interval time.Duration
	clock    view.Clock
	holder   *catalog.Holder
	now      func() time.Time

	mu   sync.Mutex
	byID map[string]*session
}

func newSessions(cfg config.SessionConfig, interval time.Duration, clock view.Clock, holder *catalog.Holder) *sessions {
	return &sessions{
		cfg:      cfg,
		interval: interval,
		clock:    clock,
		holder:   holder,
		now:      time.Now,
		byID:     make(map[string]*session),
	}
}

// get returns the session named by the request cookie, or starts one and
// sets its cookie.
func (s *sessions) get(w http.ResponseWriter, r *http.Request, lang string) *session {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		s.mu.Lock()
		sess, ok := s.byID[c.Value]
		if ok && sess.lang == lang {
			sess.lastSeen = s.now()
			s.mu.Unlock()
			return sess
		}
		s.mu.Unlock()
		if !ok {
			slog.Debug("unknown session cookie, starting a new session", "lang", lang)
		}
	}

	sess := s.start(lang)
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    sess.id,
		Path:     "/" + lang + "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *sessions) start(lang string) *session {
	store := s.holder.Current()
	m := view.NewMachine(store, lang, view.NewCarousel(s.clock, s.interval), slog.Default().With("lang", lang))
	sess := &session{
		id:       uuid.NewString(),
		lang:     lang,
		loop:     view.NewLoop(m),
		store:    store,
		lastSeen: s.now(),
	}

	var evicted *session
	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.byID) >= s.cfg.MaxSessions {
		evicted = s.oldestLocked()
		if evicted != nil {
			delete(s.byID, evicted.id)
		}
	}
	s.byID[sess.id] = sess
	s.mu.Unlock()

	if evicted != nil {
		slog.Info("session evicted", "session_id", evicted.id, "lang", evicted.lang)
		evicted.loop.Close()
	}
	slog.Debug("session started", "session_id", sess.id, "lang", lang, "projects", store.Len())
	return sess
}

func (s *sessions) oldestLocked() *session {
	var oldest *session
	for _, sess := range s.byID {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldest = sess
		}
	}
	return oldest
}

// expire closes the sessions idle for longer than the timeout and returns
// how many it closed.
func (s *sessions) expire() int {
	cutoff := s.now().Add(-s.cfg.IdleTimeout)

	var stale []*session
	s.mu.Lock()
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess)
			delete(s.byID, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.loop.Close()
		slog.Debug("session expired", "session_id", sess.id, "lang", sess.lang)
	}
	return len(stale)
}

// run expires idle sessions until ctx is cancelled.
func (s *sessions) run(ctx context.Context) {
	every := s.cfg.IdleTimeout / 2
	if every <= 0 || every > time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.expire(); n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// closeAll stops every session loop.
func (s *sessions) closeAll() {
	s.mu.Lock()
	all := make([]*session, 0, len(s.byID))
	for id, sess := range s.byID {
		all = append(all, sess)
		delete(s.byID, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.loop.Close()
	}
}
