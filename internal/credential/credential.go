// Package credential turns tenant secrets into the form kept in the store
// and checks login attempts against it.
//
// The legacy scheme is an obfuscation, not a hash: the secret is salted
// with a fixed literal and every UTF-16 code unit is written out in hex.
// It is kept so existing records keep working. The bcrypt scheme can be
// selected for new registrations; Verify accepts either shape.
package credential

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// Salt is appended to every secret before legacy encoding.
const Salt = "YourSecretSalt123"

// Scheme names accepted by ParseScheme.
const (
	SchemeLegacy = "legacy"
	SchemeBcrypt = "bcrypt"
)

var ErrUnknownScheme = errors.New("unknown credential scheme")

// Scheme produces the stored form of a secret.
type Scheme interface {
	Name() string
	Hash(secret string) (string, error)
}

// Encode returns the legacy encoding of secret.
func Encode(secret string) string {
	var b strings.Builder
	for _, unit := range utf16.Encode([]rune(secret + Salt)) {
		b.WriteString(strconv.FormatUint(uint64(unit), 16))
	}
	return b.String()
}

// Verify reports whether secret matches the stored credential. Bcrypt
// hashes are recognised by their "$2" prefix; anything else is compared
// against the legacy encoding.
func Verify(stored, secret string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(Encode(secret))) == 1
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// Legacy is the hex character-code scheme.
type Legacy struct{}

func (Legacy) Name() string { return SchemeLegacy }

func (Legacy) Hash(secret string) (string, error) {
	return Encode(secret), nil
}

// Bcrypt hashes secrets with golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	Cost int
}

func (Bcrypt) Name() string { return SchemeBcrypt }

func (b Bcrypt) Hash(secret string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hash), nil
}

// ParseScheme maps a configured scheme name to its implementation.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "", SchemeLegacy:
		return Legacy{}, nil
	case SchemeBcrypt:
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}
