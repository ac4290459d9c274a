package tenant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/credential"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/store"
	"github.com/wolfeidau/gasdesk/internal/store/memory"
	"github.com/wolfeidau/gasdesk/internal/store/storetest"
	"golang.org/x/crypto/bcrypt"
)

func individual() Registration {
	return Registration{
		Kind:   models.KindIndividual,
		Key:    "199012345678",
		Name:   "Jane Perera",
		Phone:  "0771234567",
		Email:  "jane@example.com",
		Secret: "longenough",
	}
}

func organization() Registration {
	return Registration{
		Kind:            models.KindOrganization,
		Key:             "B1",
		Name:            "Acme Holdings",
		Phone:           "0112345678",
		Email:           "a@b.com",
		Secret:          "longenough",
		Address:         "1 Main St, Colombo",
		ValidationImage: "/9j/4AAQSkZJRg",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()

	for _, reg := range []Registration{individual(), organization()} {
		t.Run(string(reg.Kind), func(t *testing.T) {
			dir := NewDirectory(memory.NewDocumentStore())

			key, err := dir.Register(ctx, reg)
			require.NoError(t, err)
			require.Equal(t, reg.Key, key)

			got, err := dir.Login(ctx, reg.Kind, reg.Email, reg.Secret)
			require.NoError(t, err)
			require.Equal(t, key, got)
		})
	}
}

func TestRegister_storesEncodedRecord(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDocumentStore()
	dir := NewDirectory(st)

	_, err := dir.Register(ctx, organization())
	require.NoError(t, err)

	doc, err := st.Get(ctx, "OrganizationRegistration", "B1")
	require.NoError(t, err)

	password, _ := doc.String("password")
	require.Equal(t, credential.Encode("longenough"), password)

	image, _ := doc.String("validationImage")
	require.Equal(t, "data:image/jpeg;base64,/9j/4AAQSkZJRg", image)

	name, _ := doc.String("orgName")
	require.Equal(t, "Acme Holdings", name)

	// an existing data URI is kept as is
	reg := organization()
	reg.ValidationImage = "data:image/png;base64,iVBOR"
	_, err = dir.Register(ctx, reg)
	require.NoError(t, err)

	doc, err = st.Get(ctx, "OrganizationRegistration", "B1")
	require.NoError(t, err)
	image, _ = doc.String("validationImage")
	require.Equal(t, "data:image/png;base64,iVBOR", image)
}

func TestRegister_validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Registration)
		wantErr error
		field   string
	}{
		{"blank name", func(r *Registration) { r.Name = " " }, apperr.ErrIncompleteForm, "name"},
		{"blank key", func(r *Registration) { r.Key = "" }, apperr.ErrIncompleteForm, "busiRegNo"},
		{"blank address", func(r *Registration) { r.Address = "" }, apperr.ErrIncompleteForm, "address"},
		{"missing image", func(r *Registration) { r.ValidationImage = "" }, apperr.ErrIncompleteForm, "validationImage"},
		{"bad email", func(r *Registration) { r.Email = "a@b" }, apperr.ErrFormat, "email"},
		{"email with space", func(r *Registration) { r.Email = "a b@c.com" }, apperr.ErrFormat, "email"},
		{"short secret", func(r *Registration) { r.Secret = "1234567" }, apperr.ErrWeakSecret, "password"},
		{"blank wins over format", func(r *Registration) { r.Phone = ""; r.Email = "bad" }, apperr.ErrIncompleteForm, "phoneNumber"},
		{"format wins over weak", func(r *Registration) { r.Email = "bad"; r.Secret = "x" }, apperr.ErrFormat, "email"},
		{"slash in key", func(r *Registration) { r.Key = "B/1" }, apperr.ErrFormat, "busiRegNo"},
		{"unknown kind", func(r *Registration) { r.Kind = "admin" }, apperr.ErrValidation, "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// a failing store proves validation happens before any store call
			dir := NewDirectory(&storetest.Failing{})

			reg := organization()
			tt.mutate(&reg)

			_, err := dir.Register(context.Background(), reg)
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, apperr.ErrValidation)
			require.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestRegister_individualDoesNotNeedAddress(t *testing.T) {
	dir := NewDirectory(memory.NewDocumentStore())

	reg := individual()
	reg.Address = ""
	reg.ValidationImage = ""

	_, err := dir.Register(context.Background(), reg)
	require.NoError(t, err)
}

func TestRegister_overwritesSameKey(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(memory.NewDocumentStore())

	_, err := dir.Register(ctx, individual())
	require.NoError(t, err)

	reg := individual()
	reg.Email = "new@example.com"
	_, err = dir.Register(ctx, reg)
	require.NoError(t, err)

	tenant, ok, err := dir.Lookup(ctx, models.KindIndividual, reg.Key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new@example.com", tenant.Email)

	_, err = dir.Login(ctx, models.KindIndividual, "jane@example.com", "longenough")
	require.ErrorIs(t, err, apperr.ErrAuth)
}

func TestLogin_failuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(memory.NewDocumentStore())

	_, err := dir.Register(ctx, individual())
	require.NoError(t, err)

	_, wrongSecret := dir.Login(ctx, models.KindIndividual, "jane@example.com", "wrongsecret")
	_, unknownEmail := dir.Login(ctx, models.KindIndividual, "nobody@example.com", "longenough")

	require.ErrorIs(t, wrongSecret, apperr.ErrAuth)
	require.ErrorIs(t, unknownEmail, apperr.ErrAuth)
	require.Equal(t, wrongSecret.Error(), unknownEmail.Error())

	// kinds are separate directories
	_, err = dir.Login(ctx, models.KindOrganization, "jane@example.com", "longenough")
	require.ErrorIs(t, err, apperr.ErrAuth)
}

func TestLogin_validation(t *testing.T) {
	dir := NewDirectory(&storetest.Failing{})
	ctx := context.Background()

	_, err := dir.Login(ctx, models.KindIndividual, "", "longenough")
	require.ErrorIs(t, err, apperr.ErrIncompleteForm)

	_, err = dir.Login(ctx, models.KindIndividual, "jane@example.com", "")
	require.ErrorIs(t, err, apperr.ErrIncompleteForm)

	_, err = dir.Login(ctx, models.KindIndividual, "not-an-email", "longenough")
	require.ErrorIs(t, err, apperr.ErrFormat)
}

func TestLogin_firstMatchWins(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDocumentStore()
	dir := NewDirectory(st)

	first := individual()
	first.Key = "100000000001"
	_, err := dir.Register(ctx, first)
	require.NoError(t, err)

	second := individual()
	second.Key = "100000000002"
	second.Secret = "anothersecret"
	_, err = dir.Register(ctx, second)
	require.NoError(t, err)

	key, err := dir.Login(ctx, models.KindIndividual, "jane@example.com", "longenough")
	require.NoError(t, err)
	require.Equal(t, "100000000001", key)

	// the second account shares the email but is never consulted
	_, err = dir.Login(ctx, models.KindIndividual, "jane@example.com", "anothersecret")
	require.ErrorIs(t, err, apperr.ErrAuth)
}

func TestLogin_bcryptAndLegacyCoexist(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDocumentStore()

	legacy := NewDirectory(st)
	_, err := legacy.Register(ctx, individual())
	require.NoError(t, err)

	hashed := NewDirectory(st, WithScheme(credential.Bcrypt{Cost: bcrypt.MinCost}))
	_, err = hashed.Register(ctx, organization())
	require.NoError(t, err)

	doc, err := st.Get(ctx, "OrganizationRegistration", "B1")
	require.NoError(t, err)
	password, _ := doc.String("password")
	require.True(t, strings.HasPrefix(password, "$2"))

	// after switching schemes both tenants still log in
	_, err = hashed.Login(ctx, models.KindIndividual, "jane@example.com", "longenough")
	require.NoError(t, err)
	_, err = hashed.Login(ctx, models.KindOrganization, "a@b.com", "longenough")
	require.NoError(t, err)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(memory.NewDocumentStore())

	_, err := dir.Register(ctx, organization())
	require.NoError(t, err)

	tenant, ok, err := dir.Lookup(ctx, models.KindOrganization, "B1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Acme Holdings", tenant.Name)
	require.Equal(t, "1 Main St, Colombo", tenant.Address)

	tenant, ok, err = dir.Lookup(ctx, models.KindOrganization, "B2")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, tenant)

	// kinds do not share keys
	_, ok, err = dir.Lookup(ctx, models.KindIndividual, "B1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(&storetest.Failing{})

	_, err := dir.Register(ctx, individual())
	require.ErrorIs(t, err, apperr.ErrStore)
	require.ErrorIs(t, err, storetest.ErrUnavailable)
	require.True(t, apperr.Retryable(err))

	_, err = dir.Login(ctx, models.KindIndividual, "jane@example.com", "longenough")
	require.ErrorIs(t, err, apperr.ErrStore)
	require.NotErrorIs(t, err, apperr.ErrAuth)

	_, _, err = dir.Lookup(ctx, models.KindIndividual, "199012345678")
	require.ErrorIs(t, err, apperr.ErrStore)
}

func TestLookup_malformedRecordIsStoreError(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDocumentStore()
	require.NoError(t, st.Put(ctx, "CustomerRegistration", "N1", store.Document{"name": "no email"}))

	_, _, err := NewDirectory(st).Lookup(ctx, models.KindIndividual, "N1")
	require.ErrorIs(t, err, apperr.ErrStore)
	require.ErrorIs(t, err, models.ErrMalformedRecord)
}
