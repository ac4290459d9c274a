package store

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentString(t *testing.T) {
	doc := Document{"email": "a@b.com", "count": 5}

	s, ok := doc.String("email")
	require.True(t, ok)
	require.Equal(t, "a@b.com", s)

	_, ok = doc.String("count")
	require.False(t, ok)

	_, ok = doc.String("missing")
	require.False(t, ok)
}

func TestDocumentInt(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int64
		ok       bool
	}{
		{name: "int", value: 5, expected: 5, ok: true},
		{name: "int64", value: int64(1735689600000), expected: 1735689600000, ok: true},
		{name: "integral float", value: float64(300), expected: 300, ok: true},
		{name: "fractional float", value: 2.5, ok: false},
		{name: "json number", value: json.Number("42"), expected: 42, ok: true},
		{name: "json number float form", value: json.Number("42.0"), expected: 42, ok: true},
		{name: "numeric string", value: "7", expected: 7, ok: true},
		{name: "text", value: "seven", ok: false},
		{name: "bool", value: true, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Document{"n": tt.value}.Int("n")
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.expected, n)
			}
		})
	}
}

func TestDocumentJSON(t *testing.T) {
	doc := Document{"cylinderCount": 5, "createdAt": int64(1735689600123), "status": "pending"}

	data, err := doc.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)

	count, ok := decoded.Int("cylinderCount")
	require.True(t, ok)
	require.EqualValues(t, 5, count)

	created, ok := decoded.Int("createdAt")
	require.True(t, ok)
	require.EqualValues(t, 1735689600123, created)
}

func TestDocumentClone(t *testing.T) {
	doc := Document{"a": "1"}
	clone := doc.Clone()
	clone["a"] = "2"
	require.Equal(t, "1", doc["a"])

	require.Nil(t, Document(nil).Clone())
}

func TestValidatePath(t *testing.T) {
	require.NoError(t, ValidatePath("tokens", "abc"))
	require.ErrorIs(t, ValidatePath("", "abc"), ErrInvalidCollection)
	require.ErrorIs(t, ValidatePath("a/b", "abc"), ErrInvalidCollection)
	require.ErrorIs(t, ValidatePath("tokens", ""), ErrInvalidKey)
	require.ErrorIs(t, ValidatePath("tokens", "x/y"), ErrInvalidKey)
}

func TestFilter(t *testing.T) {
	entries := []Entry{
		{Key: "1", Document: Document{"email": "a@b.com"}},
		{Key: "2", Document: Document{"email": "c@d.com"}},
		{Key: "3", Document: Document{"email": "a@b.com"}},
		{Key: "4", Document: Document{"other": "a@b.com"}},
	}
	seq := func(yield func(Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}

	var keys []string
	for entry, err := range Filter(seq, "email", "a@b.com") {
		require.NoError(t, err)
		keys = append(keys, entry.Key)
	}
	require.True(t, slices.Equal([]string{"1", "3"}, keys))
}
