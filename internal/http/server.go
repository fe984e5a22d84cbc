package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"gastos/internal/backend"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	appweb "gastos/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Exporter writes the whole ledger to a spreadsheet file and returns its path.
type Exporter interface {
	Export(ctx context.Context, records []core.Record) (string, error)
}

type Server struct {
	http.Server
	templates *template.Template
	store     backend.Backend
	exporter  Exporter
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	now       func() time.Time

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime         time.Time
	recordsCreated int64
	recordsUpdated int64
	recordsDeleted int64
	exports        int64
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit caps mutating requests per client per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute})
	}
}

// WithClock replaces time.Now for date defaults and summary presets.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, store backend.Backend, exporter Exporter, opts ...Option) *Server {
	s := &Server{
		Server:     http.Server{Addr: addr, ReadHeaderTimeout: 10 * time.Second},
		store:      store,
		exporter:   exporter,
		now:        time.Now,
		appMetrics: &appMetrics{uptime: time.Now()},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}
	s.tracer = trace.NewMiddleware(s.logger, security.ClientIP)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate)
	}
	s.templates = t

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(s.tracer.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Get("/", s.handleIndex)
	r.Get("/records", s.handleListRecords)
	r.Get("/records/{index}/edit", s.handleEditForm)
	r.Get("/summary", s.handleSummaryPage)
	r.Get("/ui/summary", s.handleSummaryPartial)
	r.With(log.ComponentMiddleware(log.ComponentExport)).Get("/export", s.handleExport)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(security.ClientIP, s.handleRateLimited))
		r.Post("/records", s.handleCreateRecord)
		r.Post("/records/{index}", s.handleUpdateRecord)
		r.Post("/records/{index}/delete", s.handleDeleteRecord)
		r.Delete("/records/{index}", s.handleDeleteRecord)
	})

	s.Handler = r
	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Demasiadas solicitudes. Inténtalo de nuevo en un minuto.").
		Header("Retry-After", "60").
		Write(w)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (m *appMetrics) snapshot() map[string]any {
	return map[string]any{
		"records_created": atomic.LoadInt64(&m.recordsCreated),
		"records_updated": atomic.LoadInt64(&m.recordsUpdated),
		"records_deleted": atomic.LoadInt64(&m.recordsDeleted),
		"exports":         atomic.LoadInt64(&m.exports),
	}
}
