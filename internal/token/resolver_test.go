package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/store"
	"github.com/wolfeidau/gasdesk/internal/store/memory"
	"github.com/wolfeidau/gasdesk/internal/store/storetest"
	"github.com/wolfeidau/gasdesk/internal/tenant"
)

var orgSession = models.Session{Kind: models.KindOrganization, Key: "B1"}

func setup(t *testing.T) (store.DocumentStore, *Resolver) {
	t.Helper()
	ctx := context.Background()
	st := memory.NewDocumentStore()

	tenants := tenant.NewDirectory(st)
	_, err := tenants.Register(ctx, tenant.Registration{
		Kind: models.KindOrganization, Key: "B1", Name: "Acme", Phone: "0112345678",
		Email: "a@b.com", Secret: "longenough", Address: "1 Main St", ValidationImage: "AAAA",
	})
	require.NoError(t, err)
	_, err = tenants.Register(ctx, tenant.Registration{
		Kind: models.KindIndividual, Key: "199012345678", Name: "Jane", Phone: "0771234567",
		Email: "jane@example.com", Secret: "longenough",
	})
	require.NoError(t, err)

	return st, NewResolver(st, tenants)
}

func addToken(t *testing.T, st store.DocumentStore, tok *models.Token) string {
	t.Helper()
	key, err := st.Add(context.Background(), models.CollectionTokens, tok.Document())
	require.NoError(t, err)
	return key
}

func TestActiveToken_firstMatchWins(t *testing.T) {
	ctx := context.Background()
	st, r := setup(t)

	addToken(t, st, &models.Token{Token: "OTHER", BusiRegNo: "B2", CreatedAt: 50})
	addToken(t, st, &models.Token{Token: "FIRST", BusiRegNo: "B1", CreatedAt: 100, CylinderType: "5 kg", CylinderCount: 5})
	addToken(t, st, &models.Token{Token: "SECOND", BusiRegNo: "B1", CreatedAt: 900})

	tok, ok, err := r.ActiveToken(ctx, "B1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "FIRST", tok.Token)
	require.Equal(t, 5, tok.CylinderCount)

	// repeated reads are stable
	again, ok, err := r.ActiveToken(ctx, "B1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tok.Key, again.Key)
}

func TestActiveToken_noMatch(t *testing.T) {
	st, r := setup(t)
	addToken(t, st, &models.Token{Token: "OTHER", BusiRegNo: "B2"})

	tok, ok, err := r.ActiveToken(context.Background(), "B1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, tok)
}

func TestActiveToken_missingOrganization(t *testing.T) {
	st, r := setup(t)
	addToken(t, st, &models.Token{Token: "T", BusiRegNo: "B9"})

	_, _, err := r.ActiveToken(context.Background(), "B9")
	require.ErrorIs(t, err, apperr.ErrTenantNotFound)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestActiveToken_skipsMalformed(t *testing.T) {
	ctx := context.Background()
	st, r := setup(t)

	_, err := st.Add(ctx, models.CollectionTokens, store.Document{"busiRegNo": "B1", "createdAt": "not a number"})
	require.NoError(t, err)
	addToken(t, st, &models.Token{Token: "GOOD", BusiRegNo: "B1"})

	tok, ok, err := r.ActiveToken(ctx, "B1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "GOOD", tok.Token)
}

func TestCompletedOrders_sortedNewestFirst(t *testing.T) {
	ctx := context.Background()
	st, r := setup(t)

	for _, createdAt := range []int64{100, 300, 200} {
		addToken(t, st, &models.Token{Email: "a@b.com", Status: "Completed", CreatedAt: createdAt})
	}

	orders, err := r.CompletedOrders(ctx, orgSession)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.EqualValues(t, 300, orders[0].CreatedAt)
	require.EqualValues(t, 200, orders[1].CreatedAt)
	require.EqualValues(t, 100, orders[2].CreatedAt)
}

func TestCompletedOrders_exactStatusOnly(t *testing.T) {
	ctx := context.Background()
	st, r := setup(t)

	for _, status := range []string{"Completed", "completed", "COMPLETED", "Approved", "pending", ""} {
		addToken(t, st, &models.Token{Token: "T-" + status, Email: "a@b.com", Status: status, CreatedAt: 1})
	}
	addToken(t, st, &models.Token{Token: "NOT-MINE", Email: "x@y.com", Status: "Completed", CreatedAt: 2})

	orders, err := r.CompletedOrders(ctx, orgSession)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "T-Completed", orders[0].Token)
	for _, o := range orders {
		require.Equal(t, "Completed", o.Status)
	}
}

func TestCompletedOrders_individual(t *testing.T) {
	ctx := context.Background()
	st, r := setup(t)

	key := addToken(t, st, &models.Token{Email: "jane@example.com", Status: "Completed", CreatedAt: 10})

	orders, err := r.CompletedOrders(ctx, models.Session{Kind: models.KindIndividual, Key: "199012345678"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, key, orders[0].DisplayToken())
}

func TestCompletedOrders_emptyAndMissingTenant(t *testing.T) {
	ctx := context.Background()
	_, r := setup(t)

	orders, err := r.CompletedOrders(ctx, orgSession)
	require.NoError(t, err)
	require.Empty(t, orders)

	_, err = r.CompletedOrders(ctx, models.Session{Kind: models.KindIndividual, Key: "missing"})
	require.ErrorIs(t, err, apperr.ErrTenantNotFound)
}

func TestStoreFailure(t *testing.T) {
	ctx := context.Background()
	base, _ := setup(t)
	st := storetest.Fail(base, models.CollectionTokens)
	r := NewResolver(st, tenant.NewDirectory(st))

	_, _, err := r.ActiveToken(ctx, "B1")
	require.ErrorIs(t, err, apperr.ErrStore)

	_, err = r.CompletedOrders(ctx, orgSession)
	require.ErrorIs(t, err, apperr.ErrStore)
}

func TestQuote(t *testing.T) {
	total, ok := Quote(&models.Token{CylinderType: "12.5 kg", CylinderCount: 2})
	require.True(t, ok)
	require.InDelta(t, 7880.74, total, 0.001)

	_, ok = Quote(&models.Token{CylinderType: "2 kg", CylinderCount: 2})
	require.False(t, ok)

	_, ok = Quote(nil)
	require.False(t, ok)
}
