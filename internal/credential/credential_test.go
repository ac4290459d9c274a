package credential

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEncode(t *testing.T) {
	t.Run("known value", func(t *testing.T) {
		// "a" = 0x61 followed by the salt
		expected := "61" + "596f757253656372657453616c74313233"
		require.Equal(t, expected, Encode("a"))
	})

	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, Encode("longenough"), Encode("longenough"))
	})

	t.Run("length is two hex digits per character", func(t *testing.T) {
		for _, secret := range []string{"", "x", "longenough", "Pa55word!~"} {
			require.Len(t, Encode(secret), 2*(len(secret)+len(Salt)), secret)
		}
	})

	t.Run("different secrets differ", func(t *testing.T) {
		require.NotEqual(t, Encode("password1"), Encode("password2"))
	})

	t.Run("code units above 0xff are not padded", func(t *testing.T) {
		// U+20AC EURO SIGN renders as four hex digits
		require.Equal(t, "20ac"+Encode(""), Encode("€"))
	})
}

func TestVerify(t *testing.T) {
	t.Run("legacy", func(t *testing.T) {
		stored := Encode("longenough")
		require.True(t, Verify(stored, "longenough"))
		require.False(t, Verify(stored, "longenougH"))
		require.False(t, Verify(stored, ""))
	})

	t.Run("bcrypt", func(t *testing.T) {
		stored, err := Bcrypt{Cost: bcrypt.MinCost}.Hash("longenough")
		require.NoError(t, err)
		require.True(t, Verify(stored, "longenough"))
		require.False(t, Verify(stored, "wrong-secret"))
	})
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		wantErr  bool
	}{
		{name: "", expected: SchemeLegacy},
		{name: "legacy", expected: SchemeLegacy},
		{name: "bcrypt", expected: SchemeBcrypt},
		{name: "md5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, err := ParseScheme(tt.name)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownScheme)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, scheme.Name())
		})
	}
}

func TestLegacyHash(t *testing.T) {
	hash, err := Legacy{}.Hash("longenough")
	require.NoError(t, err)
	require.Equal(t, Encode("longenough"), hash)
}
