// Package api exposes the console over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/apollo/internal/console"
	"github.com/TimurManjosov/apollo/internal/logging"
	"github.com/TimurManjosov/apollo/internal/telemetry"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	requestTimeout     = 30 * time.Second
)

// Options configures the HTTP surface.
type Options struct {
	AdminAPIKey    string
	RateLimitPerIP int // requests per minute; <= 0 disables limiting
	Logger         zerolog.Logger
}

type Server struct {
	console     *console.Console
	adminAPIKey string
	rateLimit   int
	log         zerolog.Logger
}

func NewServer(c *console.Console, opts Options) *Server {
	return &Server{
		console:     c,
		adminAPIKey: opts.AdminAPIKey,
		rateLimit:   opts.RateLimitPerIP,
		log:         opts.Logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(logging.RequestLogger(s.log))
	r.Use(telemetry.Middleware)
	if s.rateLimit > 0 {
		r.Use(httprate.Limit(
			s.rateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(RateLimitedError),
		))
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1/toggles", func(r chi.Router) {
		// the stream stays open, so it skips the request timeout
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/snapshot", s.handleSnapshot)
			r.Get("/", s.handleListToggles)
			r.Post("/", s.authAdmin(s.handleCreateToggle))
			r.Post("/import", s.authAdmin(s.handleImportToggle))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetToggle)
				r.Patch("/", s.authAdmin(s.handleUpdateToggle))
				r.Delete("/", s.authAdmin(s.handleDeleteToggle))
				r.Get("/export", s.handleExportToggle)
				r.Post("/describe", s.authAdmin(s.handleDescribeToggle))
				r.Get("/suggestions", s.handleSuggestions)
				r.Get("/snippets", s.handleSnippets)

				r.Post("/audiences", s.authAdmin(s.handleAddAudience))
				r.Route("/audiences/{aid}", func(r chi.Router) {
					r.Patch("/", s.authAdmin(s.handleRenameAudience))
					r.Delete("/", s.authAdmin(s.handleDeleteAudience))
					r.Post("/rules", s.authAdmin(s.handleAddRule))
					r.Patch("/rules/{rid}", s.authAdmin(s.handleUpdateRule))
					r.Delete("/rules/{rid}", s.authAdmin(s.handleDeleteRule))
				})
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/v1/selection", s.handleGetSelection)
		r.Put("/v1/selection", s.authAdmin(s.handleSelect))
		r.Post("/v1/evaluate", s.handleEvaluate)
	})

	return r
}
