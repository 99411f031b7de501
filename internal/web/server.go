// Package web provides the HTTP server and handlers for the portfolio site.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"portfolio/internal/catalog"
	"portfolio/internal/config"
	"portfolio/internal/i18n"
	"portfolio/internal/view"
	weblog "portfolio/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the portfolio site.
type Server struct {
	cfg      *config.Config
	catalog  *catalog.Holder
	i18n     *i18n.Resolver
	sessions *sessions
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces the wall clock that drives carousel autoplay.
func WithClock(c view.Clock) Option {
	return func(s *Server) { s.sessions.clock = c }
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, holder *catalog.Holder, tr *i18n.Resolver, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		catalog:  holder,
		i18n:     tr,
		sessions: newSessions(cfg.Session, cfg.Carousel.Interval, view.RealClock{}, holder),
		router:   chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := s.newLimiter(s.cfg.Rate.RequestsPerMinute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleRoot)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			r.Use(s.newLimiter(s.cfg.Rate.APILimit).middleware)
		}
		r.Get("/catalog", s.handleCatalog)
		r.Get("/projects/{id}", s.handleProject)
		r.Get("/i18n/{lang}", s.handleTranslations)

		// Player markup, built fresh on every modal open
		r.Get("/embed/{id}", s.handleEmbed)
	})

	// Pages
	s.router.Route("/{lang}", func(r chi.Router) {
		r.Use(s.requireLanguage)
		r.Get("/", s.handlePortfolio)
		r.Get("/projects", s.handleAllProjects)
		r.Get("/projects/{id}", s.handleDetail)
		r.Get("/back", s.handleBack)
		r.Get("/category/{id}", s.handleCategory)
		r.Get("/section/{name}", s.handleSection)
		r.Get("/carousel/{to}", s.handleCarousel)
	})
}

// Start begins listening for HTTP requests. The session janitor runs until
// Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.server.RegisterOnShutdown(cancel)
	go s.sessions.run(ctx)

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Close releases sessions and limiters without touching the listener. Tests
// that only use Router call it.
func (s *Server) Close() {
	s.sessions.closeAll()
	for _, l := range s.limiters {
		l.close()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) newLimiter(perMinute int) *rateLimiter {
	l := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, l)
	return l
}

// contentSecurityPolicy allows the video providers the player embeds.
const contentSecurityPolicy = "default-src 'self'; " +
	"img-src 'self' data: https://img.youtube.com; " +
	"frame-src https://www.youtube.com https://player.vimeo.com; " +
	"media-src 'self'; style-src 'self' 'unsafe-inline'; font-src 'self'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until close.
func (rl *rateLimiter) cleanup() {
	t := time.NewTicker(rl.window)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-t.C:
		}
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) close() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// errRateLimited maps to RATE001.
var errRateLimited = errors.New("rate limit exceeded")

// middleware returns an HTTP middleware that rate limits by IP.
// RealIP has already replaced RemoteAddr with the forwarded address.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondErrorJSON(w, catalog.MapError(errRateLimited), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP is the remote host without its port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
