package main

import (
	"testing"

	"gamertimer/internal/core/protocol"
	"gamertimer/internal/ui/preferences"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) cli {
	t.Helper()

	var flags cli
	parser, err := kong.New(&flags, kong.Name("gamertimer"))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return flags
}

func TestApplyOverrides(t *testing.T) {
	flags := parse(t, "--store", "file", "--data-dir", "/tmp/timers", "--log-level", "debug", "--log-format", "JSON")

	settings, err := flags.apply(preferences.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, preferences.StoreFile, settings.StoreBackend)
	assert.Equal(t, "/tmp/timers", settings.DataDir)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "json", settings.LogFormat)
}

func TestApplyKeepsSettingsWithoutFlags(t *testing.T) {
	settings, err := parse(t).apply(preferences.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestApplyRejectsInvalidValues(t *testing.T) {
	_, err := cli{Store: "sqlite"}.apply(preferences.DefaultSettings())
	assert.ErrorContains(t, err, "invalid store backend")

	_, err = cli{LogLevel: "loud"}.apply(preferences.DefaultSettings())
	assert.ErrorContains(t, err, "invalid log level")

	_, err = cli{LogFormat: "xml"}.apply(preferences.DefaultSettings())
	assert.ErrorContains(t, err, "invalid log format")
}

func TestCommands(t *testing.T) {
	assert.Equal(t, []protocol.Command{{Kind: protocol.CommandActivate}}, parse(t).commands())
	assert.Empty(t, parse(t, "--background").commands())

	flags := parse(t, "--toggle", "a", "--toggle", "b", "--reset", "c", "--overlay", "d")
	assert.Equal(t, []protocol.Command{
		{Kind: protocol.CommandToggle, TimerID: "a"},
		{Kind: protocol.CommandToggle, TimerID: "b"},
		{Kind: protocol.CommandReset, TimerID: "c"},
		{Kind: protocol.CommandActivate, TimerID: "d"},
	}, flags.commands())
}
