// Package tenant registers, authenticates and looks up individual and
// organization accounts. Accounts are stored under their business key (NIC
// or business registration number); login finds them by email.
package tenant

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/credential"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/store"
	"github.com/wolfeidau/gasdesk/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MinSecretLength is the shortest secret accepted at registration.
const MinSecretLength = 8

const imagePrefix = "data:image/jpeg;base64,"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email has the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Registration is the sign up form for either tenant kind.
type Registration struct {
	Kind   models.TenantKind
	Key    string // nic or busiRegNo
	Name   string
	Phone  string
	Email  string
	Secret string

	// Organization only
	Address         string
	ValidationImage string // data URI or bare base64 JPEG
}

// Option configures a Directory.
type Option func(*Directory)

// WithScheme selects the credential scheme used for new registrations.
// Existing credentials of any known scheme still verify.
func WithScheme(scheme credential.Scheme) Option {
	return func(d *Directory) {
		d.scheme = scheme
	}
}

// Directory is the tenant account directory.
type Directory struct {
	store   store.DocumentStore
	scheme  credential.Scheme
	metrics *telemetry.Metrics
}

// NewDirectory creates a Directory over st using the legacy credential
// scheme unless configured otherwise.
func NewDirectory(st store.DocumentStore, opts ...Option) *Directory {
	d := &Directory{
		store:   st,
		scheme:  credential.Legacy{},
		metrics: telemetry.GetMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register validates reg and stores the account under its business key,
// replacing any account already stored there.
func (d *Directory) Register(ctx context.Context, reg Registration) (string, error) {
	if err := validateRegistration(reg); err != nil {
		return "", err
	}

	encoded, err := d.scheme.Hash(reg.Secret)
	if err != nil {
		return "", err
	}

	t := &models.Tenant{
		Kind:       reg.Kind,
		Key:        reg.Key,
		Name:       reg.Name,
		Phone:      reg.Phone,
		Email:      reg.Email,
		Credential: encoded,
	}
	if reg.Kind == models.KindOrganization {
		t.Address = reg.Address
		t.ValidationImage = imageDataURI(reg.ValidationImage)
	}

	if err := d.store.Put(ctx, reg.Kind.RegistrationCollection(), reg.Key, t.Document()); err != nil {
		return "", apperr.Store("register tenant", err)
	}

	d.metrics.RegistrationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(reg.Kind)),
	))

	zerolog.Ctx(ctx).Debug().
		Str("kind", string(reg.Kind)).
		Str("key", reg.Key).
		Str("scheme", d.scheme.Name()).
		Msg("Registered tenant")

	return reg.Key, nil
}

type formField struct {
	name  string
	value string
}

func validateRegistration(reg Registration) error {
	if !reg.Kind.Valid() {
		return apperr.Field(apperr.ErrValidation, "kind", "unknown tenant kind")
	}

	required := []formField{
		{reg.Kind.KeyField(), reg.Key},
		{"name", reg.Name},
		{"phoneNumber", reg.Phone},
		{"email", reg.Email},
		{"password", reg.Secret},
	}
	if reg.Kind == models.KindOrganization {
		required = append(required,
			formField{"address", reg.Address},
			formField{"validationImage", reg.ValidationImage},
		)
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return apperr.Field(apperr.ErrIncompleteForm, f.name, "please fill all the details")
		}
	}

	if !ValidEmail(reg.Email) {
		return apperr.Field(apperr.ErrFormat, "email", "please enter a valid email address")
	}

	if utf8.RuneCountInString(reg.Secret) < MinSecretLength {
		return apperr.Field(apperr.ErrWeakSecret, "password", "password must be at least 8 characters long")
	}

	// the business key becomes a storage path segment
	if strings.Contains(reg.Key, "/") {
		return apperr.Field(apperr.ErrFormat, reg.Kind.KeyField(), "must not contain '/'")
	}

	return nil
}

func imageDataURI(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	return imagePrefix + image
}

// Login finds the first account of kind with email and checks secret
// against it. Unknown email and wrong secret both return apperr.ErrAuth.
func (d *Directory) Login(ctx context.Context, kind models.TenantKind, email, secret string) (string, error) {
	key, err := d.login(ctx, kind, email, secret)

	outcome := "ok"
	switch {
	case errors.Is(err, apperr.ErrAuth):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	d.metrics.LoginsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("outcome", outcome),
	))

	return key, err
}

func (d *Directory) login(ctx context.Context, kind models.TenantKind, email, secret string) (string, error) {
	if !kind.Valid() {
		return "", apperr.Field(apperr.ErrValidation, "kind", "unknown tenant kind")
	}
	if strings.TrimSpace(email) == "" || secret == "" {
		return "", apperr.Field(apperr.ErrIncompleteForm, "credentials", "please fill all the details")
	}
	if !ValidEmail(email) {
		return "", apperr.Field(apperr.ErrFormat, "email", "please enter a valid email address")
	}

	collection := kind.RegistrationCollection()

	var (
		found *models.Tenant
		err   error
	)
	for entry, walkErr := range d.store.Find(ctx, collection, "email", email) {
		if walkErr != nil {
			return "", apperr.Store("login", walkErr)
		}
		found, err = models.DecodeTenant(kind, entry.Key, entry.Document)
		if err != nil {
			return "", apperr.Store("login", err)
		}
		break
	}

	if found == nil || !credential.Verify(found.Credential, secret) {
		zerolog.Ctx(ctx).Warn().
			Str("kind", string(kind)).
			Bool("known_email", found != nil).
			Msg("Rejected login")
		return "", apperr.ErrAuth
	}

	return found.Key, nil
}

// Lookup returns the account stored under key. A missing account is not an
// error: ok is false.
func (d *Directory) Lookup(ctx context.Context, kind models.TenantKind, key string) (*models.Tenant, bool, error) {
	if !kind.Valid() {
		return nil, false, apperr.Field(apperr.ErrValidation, "kind", "unknown tenant kind")
	}

	doc, err := d.store.Get(ctx, kind.RegistrationCollection(), key)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidKey) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Store("lookup tenant", err)
	}

	t, err := models.DecodeTenant(kind, key, doc)
	if err != nil {
		return nil, false, apperr.Store("lookup tenant", err)
	}

	return t, true, nil
}
