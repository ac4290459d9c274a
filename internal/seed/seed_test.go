package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gasdesk/internal/models"
	"github.com/wolfeidau/gasdesk/internal/store"
	"github.com/wolfeidau/gasdesk/internal/store/memory"
)

func count(t *testing.T, st store.DocumentStore, collection string) int {
	t.Helper()
	n := 0
	for _, err := range st.List(context.Background(), collection) {
		require.NoError(t, err)
		n++
	}
	return n
}

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	require.Len(t, f.Outlets, 3)
	require.Len(t, f.Tokens, 3)
	require.Equal(t, "37.5 kg", f.Tokens[0].CylinderType)
	require.False(t, f.Tokens[0].CreatedAt.IsZero())
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDocumentStore()

	f, err := Default()
	require.NoError(t, err)

	res, err := Apply(ctx, st, f)
	require.NoError(t, err)
	require.Equal(t, Result{Outlets: 3, Tokens: 3}, res)
	require.Equal(t, 3, count(t, st, models.CollectionOutlets))

	var tok *models.Token
	for entry, err := range st.Find(ctx, models.CollectionTokens, "token", "TKN-ORG-0001") {
		require.NoError(t, err)
		tok, err = models.DecodeToken(entry.Key, entry.Document)
		require.NoError(t, err)
	}
	require.NotNil(t, tok)
	require.EqualValues(t, 1788251400000, tok.CreatedAt)
	require.Equal(t, 10, tok.CylinderCount)

	// rerunning skips known outlets
	res, err = Apply(ctx, st, f)
	require.NoError(t, err)
	require.Equal(t, Result{SkippedOutlets: 3, Tokens: 3}, res)
	require.Equal(t, 3, count(t, st, models.CollectionOutlets))
	require.Equal(t, 6, count(t, st, models.CollectionTokens))
}

func TestApplyDefaultsCreatedAt(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDocumentStore()

	_, err := Apply(ctx, st, &Fixtures{Tokens: []Token{{Token: "T", Email: "a@b.com", CylinderCount: 1}}})
	require.NoError(t, err)

	for entry, err := range st.List(ctx, models.CollectionTokens) {
		require.NoError(t, err)
		tok, err := models.DecodeToken(entry.Key, entry.Document)
		require.NoError(t, err)
		require.Positive(t, tok.CreatedAt)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outlets:\n  - name: Jaffna\n"), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	require.Len(t, f.Outlets, 1)
	require.Equal(t, "Jaffna", f.Outlets[0].Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "outlets: [\n"},
		{"outlet without name", "outlets:\n  - managerName: x\n"},
		{"negative count", "tokens:\n  - email: a@b.com\n    cylinderCount: -1\n"},
		{"token without owner", "tokens:\n  - token: T\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}
