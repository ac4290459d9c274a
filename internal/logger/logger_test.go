package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	var buf bytes.Buffer

	l, err := Setup(Config{Out: &buf})
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())

	l.Debug().Msg("hidden")
	l.Info().Str("kind", "organization").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "visible", entry["message"])
	require.Equal(t, "organization", entry["kind"])
	require.Contains(t, entry, "time")
	require.Contains(t, entry, "caller")
}

func TestSetup_levels(t *testing.T) {
	l, err := Setup(Config{Dev: true, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, l.GetLevel())

	l, err = Setup(Config{Dev: true, Level: "warn", Out: &bytes.Buffer{}})
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, l.GetLevel())

	_, err = Setup(Config{Level: "loud"})
	require.Error(t, err)
}

func TestSetup_devConsole(t *testing.T) {
	var buf bytes.Buffer

	l, err := Setup(Config{Dev: true, Out: &buf})
	require.NoError(t, err)

	l.Debug().Msg("console line")
	require.Contains(t, buf.String(), "console line")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
