package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/cmd/cli/internal/credentials"
	"github.com/wolfeidau/gasdesk/internal/client"
	"github.com/wolfeidau/gasdesk/internal/logger"
	"github.com/wolfeidau/gasdesk/internal/server"
)

type Globals struct {
	Debug      bool
	Version    string
	Server     string
	Token      string
	Profile    string
	SessionDir string
}

// context returns ctx carrying the CLI logger.
func (g *Globals) context(ctx context.Context) context.Context {
	level := "warn"
	if g.Debug {
		level = "debug"
	}
	log, err := logger.Setup(logger.Config{Dev: true, Level: level})
	if err != nil {
		return ctx
	}
	return log.WithContext(ctx)
}

func (g *Globals) sessions() (*credentials.Store, error) {
	return credentials.NewStore(g.SessionDir)
}

// client returns an API client without a session.
func (g *Globals) client() *client.Client {
	return client.New(client.Config{ServerURL: g.Server})
}

// authedClient returns an API client for the --token session, or the saved
// session of the selected profile.
func (g *Globals) authedClient(ctx context.Context) (*client.Client, error) {
	if g.Token != "" {
		return g.client().WithToken(g.Token), nil
	}

	store, err := g.sessions()
	if err != nil {
		return nil, err
	}

	session, err := store.Get(g.Profile)
	if err != nil {
		return nil, err
	}

	serverURL := g.Server
	if session.Server != "" {
		serverURL = session.Server
	}
	zerolog.Ctx(ctx).Debug().Str("server", serverURL).Str("kind", session.Kind).Msg("Using saved session")

	return client.New(client.Config{ServerURL: serverURL, Token: session.Token}), nil
}

// saveSession stores a freshly issued session and prints the token.
func (g *Globals) saveSession(resp *server.SessionResponse) error {
	fmt.Printf("Logged in as %s %s\n", resp.Kind, resp.Key)
	fmt.Println(resp.Token)

	store, err := g.sessions()
	if err != nil {
		return err
	}

	return store.Save(g.Profile, credentials.Session{
		Server:    g.Server,
		Token:     resp.Token,
		Kind:      resp.Kind,
		Key:       resp.Key,
		ExpiresAt: time.Unix(resp.ExpiresAt, 0).UTC(),
	})
}

// explain turns API errors into a message naming the form field at fault.
func explain(action string, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Field != "" {
		return fmt.Errorf("%s: %s: %s", action, apiErr.Field, apiErr.Message)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// formatMillis renders an epoch milliseconds timestamp.
func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}
