// Package auth issues and verifies the signed session tokens that carry a
// tenant's kind and business key between requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/wolfeidau/gasdesk/internal/models"
)

// Issuer is the iss claim of every session token.
const Issuer = "gasdesk"

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// ErrUnauthenticated is returned when a request carries no usable session.
var ErrUnauthenticated = errors.New("unauthenticated")

// SignerConfig configures a Signer.
type SignerConfig struct {
	// Secret is the HMAC key. Must be at least 32 bytes.
	Secret []byte

	// TTL is the session lifetime.
	// Default: 24h
	TTL time.Duration
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *SignerConfig) ApplyDefaults() {
	if c.TTL == 0 {
		c.TTL = DefaultSessionTTL
	}
}

// Validate checks that the configuration is valid.
func (c *SignerConfig) Validate() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("session TTL must be greater than 0")
	}
	return nil
}

// Claims are the session token claims. Subject is the business key.
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer from cfg.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Signer{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for session and returns it with its expiry.
func (s *Signer) Issue(session models.Session) (string, time.Time, error) {
	if !session.Kind.Valid() || session.Key == "" {
		return "", time.Time{}, fmt.Errorf("cannot issue token for incomplete session")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		Kind: string(session.Kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        base58.Encode(id[:]),
			Subject:   session.Key,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, expires, nil
}

// Verify checks the signature, issuer and expiry of token and returns the
// session it carries.
func (s *Signer) Verify(token string) (models.Session, error) {
	keyFunc := func(*jwt.Token) (any, error) {
		return s.secret, nil
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	kind := models.TenantKind(claims.Kind)
	if !kind.Valid() || claims.Subject == "" {
		return models.Session{}, fmt.Errorf("%w: incomplete session claims", ErrUnauthenticated)
	}

	return models.Session{Kind: kind, Key: claims.Subject}, nil
}
