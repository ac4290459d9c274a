package token

import (
	"context"
	"iter"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/store"
)

// Tokens carry no foreign keys. They are joined to tenants by copying a
// business field at issue time; these functions are the only place that
// knows which field links which relationship.

// matchByBusinessRegNo yields tokens issued to an organization, in
// collection order.
func matchByBusinessRegNo(ctx context.Context, st store.DocumentStore, busiRegNo string) iter.Seq2[*models.Token, error] {
	return decodeTokens(ctx, st.Find(ctx, models.CollectionTokens, "busiRegNo", busiRegNo))
}

// matchByEmail yields tokens issued to a tenant's email, in collection order.
func matchByEmail(ctx context.Context, st store.DocumentStore, email string) iter.Seq2[*models.Token, error] {
	return decodeTokens(ctx, st.Find(ctx, models.CollectionTokens, "email", email))
}

// decodeTokens skips records that do not decode. They are produced outside
// this system and one bad record must not hide the rest.
func decodeTokens(ctx context.Context, seq iter.Seq2[store.Entry, error]) iter.Seq2[*models.Token, error] {
	return func(yield func(*models.Token, error) bool) {
		for entry, err := range seq {
			if err != nil {
				yield(nil, apperr.Store("scan tokens", err))
				return
			}

			t, err := models.DecodeToken(entry.Key, entry.Document)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("key", entry.Key).Msg("Skipping token record")
				continue
			}

			if !yield(t, nil) {
				return
			}
		}
	}
}
