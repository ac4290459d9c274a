// Package token derives the pickup token views for a tenant: the active
// token of an organization and the completed order history of any tenant.
package token

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/catalog"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/store"
	"github.com/wolfeidau/gasdesk/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TenantLookup finds the tenant a view is built for.
type TenantLookup interface {
	Lookup(ctx context.Context, kind models.TenantKind, key string) (*models.Tenant, bool, error)
}

// Resolver reads the shared tokens collection. Each view is a tenant read
// followed by a token scan; the two reads are independent.
type Resolver struct {
	store   store.DocumentStore
	tenants TenantLookup
	metrics *telemetry.Metrics
}

// NewResolver creates a Resolver.
func NewResolver(st store.DocumentStore, tenants TenantLookup) *Resolver {
	return &Resolver{
		store:   st,
		tenants: tenants,
		metrics: telemetry.GetMetrics(),
	}
}

// ActiveToken returns the first token issued to the organization stored
// under orgKey. First is collection order; later tokens for the same
// organization are never consulted. ok is false when there is none.
func (r *Resolver) ActiveToken(ctx context.Context, orgKey string) (*models.Token, bool, error) {
	org, err := r.tenant(ctx, models.KindOrganization, orgKey)
	if err != nil {
		return nil, false, err
	}

	started := time.Now()
	scanned := 0
	defer func() { r.recordScan(ctx, "active", scanned, started) }()

	for t, err := range matchByBusinessRegNo(ctx, r.store, org.Key) {
		if err != nil {
			return nil, false, err
		}
		scanned++
		return t, true, nil
	}

	return nil, false, nil
}

// CompletedOrders returns the tokens issued to the session tenant's email
// whose status is exactly "Completed", newest first.
func (r *Resolver) CompletedOrders(ctx context.Context, session models.Session) ([]*models.Token, error) {
	tenant, err := r.tenant(ctx, session.Kind, session.Key)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	scanned := 0
	defer func() { r.recordScan(ctx, "completed", scanned, started) }()

	var completed []*models.Token
	for t, err := range matchByEmail(ctx, r.store, tenant.Email) {
		if err != nil {
			return nil, err
		}
		scanned++
		if t.Status != models.StatusCompleted {
			continue
		}
		completed = append(completed, t)
	}

	slices.SortStableFunc(completed, func(a, b *models.Token) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})

	zerolog.Ctx(ctx).Debug().
		Str("kind", string(session.Kind)).
		Str("key", session.Key).
		Int("scanned", scanned).
		Int("completed", len(completed)).
		Msg("Resolved completed orders")

	return completed, nil
}

func (r *Resolver) tenant(ctx context.Context, kind models.TenantKind, key string) (*models.Tenant, error) {
	t, ok, err := r.tenants.Lookup(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrTenantNotFound
	}
	return t, nil
}

func (r *Resolver) recordScan(ctx context.Context, view string, scanned int, started time.Time) {
	attrs := metric.WithAttributes(attribute.String("view", view))
	r.metrics.TokenScansTotal.Add(ctx, 1, attrs)
	r.metrics.TokensScannedTotal.Add(ctx, int64(scanned), attrs)
	r.metrics.TokenScanDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
}

// Quote estimates the price of a token's order from the catalog unit
// prices. ok is false when the cylinder type has no price.
func Quote(t *models.Token) (float64, bool) {
	if t == nil {
		return 0, false
	}
	return catalog.Quote(t.CylinderType, t.CylinderCount)
}
