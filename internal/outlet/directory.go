// Package outlet reads the outlet directory. Outlets are registered
// elsewhere; this package only lists and searches them.
package outlet

import (
	"context"
	"iter"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/store"
)

// Directory lists outlets straight from the store. Nothing is cached so
// every walk reflects outlets registered since the last one.
type Directory struct {
	store store.DocumentStore
}

// NewDirectory creates a Directory over st.
func NewDirectory(st store.DocumentStore) *Directory {
	return &Directory{store: st}
}

// List walks every outlet in key order. Records without a name are skipped.
// The sequence can be ranged over more than once; each range is a new walk.
func (d *Directory) List(ctx context.Context) iter.Seq2[*models.Outlet, error] {
	return func(yield func(*models.Outlet, error) bool) {
		for entry, err := range d.store.List(ctx, models.CollectionOutlets) {
			if err != nil {
				yield(nil, apperr.Store("list outlets", err))
				return
			}

			o, err := models.DecodeOutlet(entry.Key, entry.Document)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("key", entry.Key).Msg("Skipping outlet record")
				continue
			}

			if !yield(o, nil) {
				return
			}
		}
	}
}

// SearchByName yields outlets whose name contains substring, ignoring case.
// An empty substring matches every outlet.
func (d *Directory) SearchByName(ctx context.Context, substring string) iter.Seq2[*models.Outlet, error] {
	needle := strings.ToLower(strings.TrimSpace(substring))

	return func(yield func(*models.Outlet, error) bool) {
		for o, err := range d.List(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !strings.Contains(strings.ToLower(o.Name), needle) {
				continue
			}
			if !yield(o, nil) {
				return
			}
		}
	}
}

// Exists reports whether an outlet named exactly name is registered.
func (d *Directory) Exists(ctx context.Context, name string) (bool, error) {
	for entry, err := range d.store.Find(ctx, models.CollectionOutlets, "outletName", name) {
		if err != nil {
			return false, apperr.Store("find outlet", err)
		}
		if _, err := models.DecodeOutlet(entry.Key, entry.Document); err != nil {
			continue
		}
		return true, nil
	}
	return false, nil
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[*models.Outlet, error]) ([]*models.Outlet, error) {
	var out []*models.Outlet
	for o, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

