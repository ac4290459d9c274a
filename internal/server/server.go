// Package server exposes the tenant, outlet, request and token components as
// a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"filippo.io/csrf"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/auth"
	httpmiddleware "github.com/wolfeidau/gasdesk/internal/http"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/request"
	"github.com/wolfeidau/gasdesk/internal/tenant"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodyBytes bounds request bodies; organization registrations carry a
// base64 image.
const maxBodyBytes = 8 << 20

// TenantService registers, authenticates and looks up tenants.
type TenantService interface {
	Register(ctx context.Context, reg tenant.Registration) (string, error)
	Login(ctx context.Context, kind models.TenantKind, email, secret string) (string, error)
	Lookup(ctx context.Context, kind models.TenantKind, key string) (*models.Tenant, bool, error)
}

// OutletService searches registered outlets.
type OutletService interface {
	SearchByName(ctx context.Context, substring string) iter.Seq2[*models.Outlet, error]
}

// RequestService submits and reads pickup requests.
type RequestService interface {
	Submit(ctx context.Context, session models.Session, form request.Form) (*models.Request, error)
	Current(ctx context.Context, session models.Session) (*models.Request, bool, error)
}

// TokenService builds the token views.
type TokenService interface {
	ActiveToken(ctx context.Context, orgKey string) (*models.Token, bool, error)
	CompletedOrders(ctx context.Context, session models.Session) ([]*models.Token, error)
}

// Config wires the server to its components.
type Config struct {
	Tenants  TenantService
	Outlets  OutletService
	Requests RequestService
	Tokens   TokenService
	Sessions *auth.Signer

	// AllowedOrigins are served CORS headers and trusted by the cross-origin
	// protection.
	AllowedOrigins []string

	// TrustProxy honours X-Forwarded-For when recording the client IP.
	TrustProxy bool

	// Tracing adds OpenTelemetry HTTP instrumentation.
	Tracing bool
}

// Validate checks that every component is present.
func (c *Config) Validate() error {
	if c.Tenants == nil || c.Outlets == nil || c.Requests == nil || c.Tokens == nil {
		return errors.New("tenant, outlet, request and token services are required")
	}
	if c.Sessions == nil {
		return errors.New("session signer is required")
	}
	return nil
}

// Server is the gasdesk HTTP API.
type Server struct {
	cfg        Config
	protection *csrf.Protection
}

// NewServer creates a server from cfg.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	protection := csrf.New()
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid allowed origin %q: %w", origin, err)
		}
	}

	return &Server{cfg: cfg, protection: protection}, nil
}

// Handler returns the API handler with the full middleware chain applied.
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	mws := []httpmiddleware.Middleware{
		httpmiddleware.ClientIPMiddleware(s.cfg.TrustProxy),
		httpmiddleware.RequestLogger(log),
	}
	if s.cfg.Tracing {
		mws = append(mws, otelhttp.NewMiddleware("gasdesk-api"))
	}
	mws = append(mws,
		func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) },
		s.withCORS(),
		s.protection.Handler,
	)

	return httpmiddleware.Chain(s.routes(), mws...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, fmt.Errorf("route %s: %w", r.URL.Path, apperr.ErrNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, ErrorBody{Error: ErrorDetail{
			Code:    "method_not_allowed",
			Message: r.Method + " is not allowed on " + r.URL.Path,
		}})
	})

	// Health check endpoint for load balancer
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/individuals", s.registerIndividual)
		r.Post("/organizations", s.registerOrganization)
		r.Post("/sessions", s.login)
		r.Get("/outlets", s.listOutlets)

		r.Group(func(r chi.Router) {
			r.Use(s.cfg.Sessions.RequireSession(writeError))

			r.Get("/profile", s.profile)
			r.Post("/requests", s.submitRequest)
			r.Get("/requests/current", s.currentRequest)
			r.Get("/tokens/active", s.activeToken)
			r.Get("/tokens/completed", s.completedTokens)
		})
	})

	return r
}

func (s *Server) withCORS() httpmiddleware.Middleware {
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler
}
