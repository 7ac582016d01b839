package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		require.True(t, ok, raw)
		require.Equal(t, want, got, raw)
	}

	_, ok := ParseLevel("")
	require.False(t, ok)
	_, ok = ParseLevel("loud")
	require.False(t, ok)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)

	require.Equal(t, zerolog.ErrorLevel, cfg.Level)
	require.False(t, cfg.Timestamp)
	require.True(t, cfg.NoColor)
}

func TestApplyWritesToConfiguredOutput(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	var buf bytes.Buffer
	logger := Apply(Config{Level: zerolog.InfoLevel, NoColor: true, Out: &buf})
	logger.Info().Str("host", "web1").Msg("connected")
	logger.Debug().Msg("hidden")

	out := buf.String()
	require.Contains(t, out, "connected")
	require.Contains(t, out, "host=web1")
	require.NotContains(t, out, "hidden")
}
