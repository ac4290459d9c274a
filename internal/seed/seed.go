// Package seed loads development fixtures (outlets and issued tokens) into a
// document store. In production both collections are written by the outlet
// registration and token approval tooling.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/outlet"
	"github.com/wolfeidau/gasdesk/internal/store"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/dev.yaml
var devFixtures []byte

// Fixtures is the YAML fixture file layout.
type Fixtures struct {
	Outlets []Outlet `yaml:"outlets"`
	Tokens  []Token  `yaml:"tokens"`
}

// Outlet is an outlet fixture.
type Outlet struct {
	Name               string `yaml:"name"`
	ManagerName        string `yaml:"managerName"`
	Phone              string `yaml:"phone"`
	Address            string `yaml:"address"`
	RegistrationNumber string `yaml:"registrationNumber"`
}

// Token is an issued token fixture. A zero CreatedAt is replaced with the
// load time.
type Token struct {
	Token         string    `yaml:"token"`
	CreatedAt     time.Time `yaml:"createdAt"`
	CylinderType  string    `yaml:"cylinderType"`
	CylinderCount int       `yaml:"cylinderCount"`
	Status        string    `yaml:"status"`
	BusiRegNo     string    `yaml:"busiRegNo"`
	Email         string    `yaml:"email"`
	OutletID      string    `yaml:"outletId"`
}

// Result counts what Apply wrote.
type Result struct {
	Outlets        int
	SkippedOutlets int
	Tokens         int
}

// Default returns the fixtures bundled with the binary.
func Default() (*Fixtures, error) {
	return Parse(devFixtures)
}

// Load reads a fixture file.
func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML fixtures.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every fixture can be stored.
func (f *Fixtures) Validate() error {
	var errs []error
	for i, o := range f.Outlets {
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("outlets[%d]: name is required", i))
		}
	}
	for i, t := range f.Tokens {
		if t.CylinderCount < 0 {
			errs = append(errs, fmt.Errorf("tokens[%d]: cylinderCount must not be negative", i))
		}
		if t.BusiRegNo == "" && t.Email == "" {
			errs = append(errs, fmt.Errorf("tokens[%d]: busiRegNo or email is required", i))
		}
	}
	return errors.Join(errs...)
}

// Apply writes the fixtures to st. Outlets whose name is already registered
// are skipped so Apply can be rerun; tokens are always added.
func Apply(ctx context.Context, st store.DocumentStore, f *Fixtures) (Result, error) {
	var res Result
	log := zerolog.Ctx(ctx)
	outlets := outlet.NewDirectory(st)

	for _, o := range f.Outlets {
		exists, err := outlets.Exists(ctx, o.Name)
		if err != nil {
			return res, fmt.Errorf("failed to check outlet %q: %w", o.Name, err)
		}
		if exists {
			res.SkippedOutlets++
			continue
		}

		rec := &models.Outlet{
			Name:               o.Name,
			ManagerName:        o.ManagerName,
			Phone:              o.Phone,
			Address:            o.Address,
			RegistrationNumber: o.RegistrationNumber,
		}
		key, err := st.Add(ctx, models.CollectionOutlets, rec.Document())
		if err != nil {
			return res, fmt.Errorf("failed to add outlet %q: %w", o.Name, err)
		}
		log.Debug().Str("key", key).Str("outlet", o.Name).Msg("Seeded outlet")
		res.Outlets++
	}

	now := time.Now()
	for _, t := range f.Tokens {
		createdAt := t.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		rec := &models.Token{
			Token:         t.Token,
			CreatedAt:     createdAt.UnixMilli(),
			CylinderType:  t.CylinderType,
			CylinderCount: t.CylinderCount,
			Status:        t.Status,
			BusiRegNo:     t.BusiRegNo,
			Email:         t.Email,
			OutletID:      t.OutletID,
		}
		key, err := st.Add(ctx, models.CollectionTokens, rec.Document())
		if err != nil {
			return res, fmt.Errorf("failed to add token: %w", err)
		}
		log.Debug().Str("key", key).Msg("Seeded token")
		res.Tokens++
	}

	return res, nil
}
