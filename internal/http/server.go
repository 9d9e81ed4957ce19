package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finpal/internal/analytics"
	"finpal/internal/core"
	"finpal/internal/log"
	"finpal/internal/middleware/ratelimit"
	"finpal/internal/middleware/security"
	"finpal/internal/session"
	appweb "finpal/web"
)

// Dashboard is what the handlers need from the service layer.
type Dashboard interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (*session.Session, error)
	Session(id string) (*session.Session, error)
	EndSession(id string)
	AddCategory(ctx context.Context, name string) (bool, error)
	Apply(ctx context.Context, id string, edits map[int]string) (session.ApplyResult, error)
	Summary(id string) (analytics.Summary, error)
	Categories() []string
	Rules() *core.RuleSet
	Ready(ctx context.Context) error
}

// Options configures the server.
type Options struct {
	Addr           string
	Currency       string
	MaxUploadBytes int64
	RateLimitRPM   int
	Logger         *log.Logger
}

type Server struct {
	http.Server
	dash      Dashboard
	templates *template.Template
	currency  string
	maxUpload int64
	limiter   *ratelimit.Limiter
	logger    *log.Logger
}

// NewServer parses the embedded templates and builds the router.
func NewServer(opts Options, dash Dashboard) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	resolver, err := security.NewIPResolver()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		dash:      dash,
		templates: t,
		currency:  opts.Currency,
		maxUpload: opts.MaxUploadBytes,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(log.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware(resolver.ClientIP, false, s.handleRateLimited))

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.With(security.StaticCache(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Post("/categories", s.handleAddCategory)
	r.Post("/apply", s.handleApply)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/rules", s.handleRules)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	s.Handler = r
	return s, nil
}

// Limiter exposes the POST rate limiter so its sweep can run beside the
// server.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// render executes the page into a buffer first so a template failure becomes
// a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender, log.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// page builds the page for the caller's current session, if it has one.
func (s *Server) page(r *http.Request, flash *Flash) pageData {
	data := newPageData(flash, s.dash.Categories())
	if sess, err := s.dash.Session(sessionID(r)); err == nil {
		data = data.withSession(sess, s.currency)
	}
	return data
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.dash.Ready(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("rules backend unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
