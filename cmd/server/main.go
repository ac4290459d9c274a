package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/gasdesk/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug    bool             `help:"Enable debug mode."`
		Dev      bool             `help:"Enable development mode (console logs)." env:"GASDESK_DEV"`
		LogLevel string           `help:"Log level override." env:"GASDESK_LOG_LEVEL"`
		Version  kong.VersionFlag `help:"Print the version and exit."`

		Serve   commands.ServeCmd   `cmd:"" default:"withargs" help:"Start the API server"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load outlet and token fixtures into the store"`
		Migrate commands.MigrateCmd `cmd:"" help:"Run PostgreSQL migrations"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("gasdesk-server"),
		kong.Description("Gas cylinder request service."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:    cli.Debug,
		Dev:      cli.Dev,
		LogLevel: cli.LogLevel,
		Version:  version,
	})
	cmd.FatalIfErrorf(err)
}
