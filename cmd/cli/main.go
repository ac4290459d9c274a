package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/gasdesk/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Register commands.RegisterCmd `cmd:"" help:"Register an account"`
		Login    commands.LoginCmd    `cmd:"" help:"Log in and save the session"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Forget the saved session"`
		Profile  commands.ProfileCmd  `cmd:"" help:"Show the account profile"`
		Outlets  commands.OutletsCmd  `cmd:"" help:"List or search outlets"`
		Submit   commands.SubmitCmd   `cmd:"" help:"Submit a cylinder request"`
		Request  commands.RequestCmd  `cmd:"" help:"Show the current request"`
		Active   commands.ActiveCmd   `cmd:"" help:"Show the active token (organizations)"`
		History  commands.HistoryCmd  `cmd:"" help:"Show completed orders"`

		Server     string           `help:"Server URL" default:"http://localhost:8080" env:"GASDESK_SERVER"`
		Token      string           `help:"Session token, overrides the saved session" env:"GASDESK_TOKEN"`
		Account    string           `name:"profile" help:"Saved session profile" default:"default" env:"GASDESK_PROFILE"`
		SessionDir string           `help:"Directory for saved sessions (default ~/.gasdesk)" env:"GASDESK_SESSION_DIR"`
		Debug      bool             `help:"Enable debug mode."`
		Version    kong.VersionFlag `help:"Print the version and exit."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("gasdesk"),
		kong.Description("Request gas cylinders and check pickup tokens."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		Version:    version,
		Server:     cli.Server,
		Token:      cli.Token,
		Profile:    cli.Account,
		SessionDir: cli.SessionDir,
	})
	cmd.FatalIfErrorf(err)
}
