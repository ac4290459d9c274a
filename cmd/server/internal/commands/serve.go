package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/gasdesk/internal/auth"
	"github.com/wolfeidau/gasdesk/internal/credential"
	"github.com/wolfeidau/gasdesk/internal/outlet"
	"github.com/wolfeidau/gasdesk/internal/request"
	"github.com/wolfeidau/gasdesk/internal/seed"
	"github.com/wolfeidau/gasdesk/internal/server"
	"github.com/wolfeidau/gasdesk/internal/telemetry"
	"github.com/wolfeidau/gasdesk/internal/tenant"
	"github.com/wolfeidau/gasdesk/internal/token"
	"golang.org/x/sync/errgroup"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"GASDESK_LISTEN"`
	Cert   string `help:"path to TLS cert file, serves plain HTTP when empty" default:"" env:"GASDESK_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"GASDESK_TLS_KEY"`

	ShutdownTimeout time.Duration `help:"time allowed for in-flight requests on shutdown" default:"10s" env:"GASDESK_SHUTDOWN_TIMEOUT"`
	TrustProxy      bool          `help:"trust X-Forwarded-For for client IPs" default:"false" env:"GASDESK_TRUST_PROXY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:8081" env:"GASDESK_CORS_ORIGINS"`

	// Session configuration
	SessionSecret string        `help:"HMAC secret for session tokens, at least 32 bytes" env:"GASDESK_SESSION_SECRET" required:""`
	SessionTTL    time.Duration `help:"session TTL" default:"24h" env:"GASDESK_SESSION_TTL"`

	// Credential scheme for new registrations
	CredentialScheme string `help:"credential scheme for new registrations" default:"legacy" env:"GASDESK_CREDENTIAL_SCHEME" enum:"legacy,bcrypt"`

	Tracing     bool    `help:"enable tracing" default:"false" env:"GASDESK_TRACING"`
	SampleRatio float64 `help:"trace sample ratio" default:"1" env:"GASDESK_TRACE_SAMPLE_RATIO"`

	SeedFixtures bool `help:"load the bundled development fixtures on startup" default:"false" env:"GASDESK_SEED_FIXTURES"`

	Store StoreFlags `embed:"" prefix:"store-"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log, err := globals.Logger()
	if err != nil {
		return err
	}
	ctx = log.WithContext(ctx)

	log.Info().Str("version", globals.Version).Bool("dev", globals.Dev).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "gasdesk-server",
			Version:     globals.Version,
			SampleRatio: c.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	st, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	if c.SeedFixtures {
		fixtures, err := seed.Default()
		if err != nil {
			return err
		}
		res, err := seed.Apply(ctx, st, fixtures)
		if err != nil {
			return fmt.Errorf("failed to seed fixtures: %w", err)
		}
		log.Info().Int("outlets", res.Outlets).Int("tokens", res.Tokens).Msg("Seeded development fixtures")
	}

	scheme, err := credential.ParseScheme(c.CredentialScheme)
	if err != nil {
		return err
	}

	signer, err := auth.NewSigner(auth.SignerConfig{
		Secret: []byte(c.SessionSecret),
		TTL:    c.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create session signer: %w", err)
	}

	tenants := tenant.NewDirectory(st, tenant.WithScheme(scheme))
	outlets := outlet.NewDirectory(st)

	api, err := server.NewServer(server.Config{
		Tenants:        tenants,
		Outlets:        outlets,
		Requests:       request.NewEngine(st, tenants, outlets),
		Tokens:         token.NewResolver(st, tenants),
		Sessions:       signer,
		AllowedOrigins: c.CORSOrigins,
		TrustProxy:     c.TrustProxy,
		Tracing:        c.Tracing,
	})
	if err != nil {
		return err
	}

	srv := configureHTTPServer(c.Listen, api.Handler(log))
	baseCtx := ctx // not cancelled by the shutdown signal
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", c.Listen).
			Bool("tls", c.Cert != "").
			Str("scheme", scheme.Name()).
			Msg("Starting HTTP server")

		var err error
		if c.Cert != "" || c.Key != "" {
			err = srv.ListenAndServeTLS(c.Cert, c.Key)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
