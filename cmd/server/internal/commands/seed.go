package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/gasdesk/internal/seed"
)

type SeedCmd struct {
	Fixtures string     `help:"YAML fixture file, the bundled development fixtures when empty" type:"existingfile" env:"GASDESK_FIXTURES"`
	Store    StoreFlags `embed:"" prefix:"store-"`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log, err := globals.Logger()
	if err != nil {
		return err
	}
	ctx = log.WithContext(ctx)

	fixtures, err := c.load()
	if err != nil {
		return err
	}

	st, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := seed.Apply(ctx, st, fixtures)
	if err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	log.Info().
		Int("outlets", res.Outlets).
		Int("skipped_outlets", res.SkippedOutlets).
		Int("tokens", res.Tokens).
		Msg("Seed complete")

	return nil
}

func (c *SeedCmd) load() (*seed.Fixtures, error) {
	if c.Fixtures == "" {
		return seed.Default()
	}
	return seed.Load(c.Fixtures)
}
