// Package request validates and stores cylinder pickup requests. Each
// tenant has at most one live request; submitting again replaces it.
package request

import (
	"context"
	"errors"
	"slices"
	"strings"
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

// DateLayout is the request date format.
const DateLayout = "2006-01-02"

// MinOrganizationCount is the smallest order an organization may place.
const MinOrganizationCount = 5

var individualCounts = []int{1, 2, 3}

// TenantLookup finds the acting tenant.
type TenantLookup interface {
	Lookup(ctx context.Context, kind models.TenantKind, key string) (*models.Tenant, bool, error)
}

// OutletChecker confirms an outlet name is registered.
type OutletChecker interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// Form is what a tenant fills in to ask for a pickup.
type Form struct {
	Outlet        string
	CylinderType  string // "5" or "5 kg"
	CylinderCount int
	RequestDate   string // YYYY-MM-DD
}

// Engine submits requests on behalf of a session.
type Engine struct {
	store   store.DocumentStore
	tenants TenantLookup
	outlets OutletChecker
	metrics *telemetry.Metrics
}

// NewEngine creates an Engine writing to st.
func NewEngine(st store.DocumentStore, tenants TenantLookup, outlets OutletChecker) *Engine {
	return &Engine{
		store:   st,
		tenants: tenants,
		outlets: outlets,
		metrics: telemetry.GetMetrics(),
	}
}

// Submit validates form for the session's tenant and writes it as the
// tenant's pending request. Checks run in a fixed order and the first
// failure is returned: completeness, quantity, cylinder type, tenant,
// then outlet.
func (e *Engine) Submit(ctx context.Context, session models.Session, form Form) (*models.Request, error) {
	req, err := e.submit(ctx, session, form)

	outcome := "ok"
	switch {
	case errors.Is(err, apperr.ErrValidation):
		outcome = "rejected"
	case errors.Is(err, apperr.ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	e.metrics.SubmissionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(session.Kind)),
		attribute.String("outcome", outcome),
	))

	return req, err
}

func (e *Engine) submit(ctx context.Context, session models.Session, form Form) (*models.Request, error) {
	if !session.Kind.Valid() {
		return nil, apperr.Field(apperr.ErrValidation, "kind", "unknown tenant kind")
	}

	date, err := checkComplete(form)
	if err != nil {
		return nil, err
	}

	if err := checkQuantity(session.Kind, form.CylinderCount); err != nil {
		return nil, err
	}

	weight, err := catalog.Normalize(session.Kind, form.CylinderType)
	if err != nil {
		return nil, err
	}

	tenant, ok, err := e.tenants.Lookup(ctx, session.Kind, session.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrTenantNotFound
	}

	outletName := strings.TrimSpace(form.Outlet)
	known, err := e.outlets.Exists(ctx, outletName)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, apperr.Field(apperr.ErrValidation, "outlet", "unknown outlet "+outletName)
	}

	req := &models.Request{
		Kind:          session.Kind,
		Key:           tenant.Key,
		Name:          tenant.Name,
		Phone:         tenant.Phone,
		Email:         tenant.Email,
		Outlet:        outletName,
		CylinderType:  catalog.Label(weight),
		CylinderCount: form.CylinderCount,
		RequestDate:   date.Format(DateLayout),
		Status:        models.StatusPending,
	}

	if err := e.store.Put(ctx, session.Kind.RequestCollection(), tenant.Key, req.Document()); err != nil {
		return nil, apperr.Store("submit request", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("kind", string(session.Kind)).
		Str("key", tenant.Key).
		Str("outlet", outletName).
		Str("cylinder_type", req.CylinderType).
		Int("cylinder_count", req.CylinderCount).
		Msg("Stored pickup request")

	return req, nil
}

func checkComplete(form Form) (time.Time, error) {
	switch {
	case strings.TrimSpace(form.Outlet) == "":
		return time.Time{}, apperr.Field(apperr.ErrIncompleteForm, "outlet", "please select an outlet")
	case strings.TrimSpace(form.CylinderType) == "":
		return time.Time{}, apperr.Field(apperr.ErrIncompleteForm, "cylinderType", "please select a cylinder type")
	case form.CylinderCount == 0:
		return time.Time{}, apperr.Field(apperr.ErrIncompleteForm, "cylinderCount", "please select a cylinder count")
	case strings.TrimSpace(form.RequestDate) == "":
		return time.Time{}, apperr.Field(apperr.ErrIncompleteForm, "requestDate", "please select a date")
	}

	date, err := time.Parse(DateLayout, strings.TrimSpace(form.RequestDate))
	if err != nil {
		return time.Time{}, apperr.Field(apperr.ErrValidation, "requestDate", "request date must be YYYY-MM-DD")
	}
	return date, nil
}

func checkQuantity(kind models.TenantKind, count int) error {
	if kind == models.KindOrganization {
		if count < MinOrganizationCount {
			return apperr.Field(apperr.ErrQuantityPolicy, "cylinderCount", "Cylinder count must be 5 or more.")
		}
		return nil
	}

	if slices.Contains(individualCounts, count) {
		return nil
	}
	return apperr.Field(apperr.ErrQuantityPolicy, "cylinderCount", "Cylinder count must be 1, 2 or 3.")
}

// Current returns the tenant's live request. ok is false when the tenant
// has never submitted one.
func (e *Engine) Current(ctx context.Context, session models.Session) (*models.Request, bool, error) {
	if !session.Kind.Valid() {
		return nil, false, apperr.Field(apperr.ErrValidation, "kind", "unknown tenant kind")
	}

	collection := session.Kind.RequestCollection()
	doc, err := e.store.Get(ctx, collection, session.Key)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidKey) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Store("current request", err)
	}

	req, err := models.DecodeRequest(session.Kind, session.Key, doc)
	if err != nil {
		return nil, false, apperr.Store("current request", err)
	}

	return req, true, nil
}
