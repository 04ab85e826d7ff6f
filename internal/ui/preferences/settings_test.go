package preferences

import (
	"testing"
	"time"

	"gamertimer/internal/core/link"
	"gamertimer/internal/core/timekeeper"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, StoreLevelDB, settings.StoreBackend)
	assert.Equal(t, 0.8, settings.OverlayOpacity)
	assert.Equal(t, 3*time.Second, settings.AutoResetDelay)
	assert.Equal(t, settings, settings.Normalize())
}

func TestNormalize(t *testing.T) {
	settings := Settings{
		StoreBackend:   "sqlite",
		TickInterval:   time.Millisecond,
		OverlayOpacity: 0.01,
		Volume:         4,
	}.Normalize()

	assert.Equal(t, StoreLevelDB, settings.StoreBackend)
	assert.Equal(t, time.Second, settings.TickInterval)
	assert.Equal(t, timekeeper.DefaultAutoResetDelay, settings.AutoResetDelay)
	assert.Equal(t, link.MinOpacity, settings.OverlayOpacity)
	assert.Equal(t, 1.0, settings.Volume)
	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, "terminal", settings.LogFormat)
}

func TestConfigs(t *testing.T) {
	settings := DefaultSettings()
	settings.AutoResetDelay = 5 * time.Second

	assert.Equal(t, timekeeper.Config{TickInterval: time.Second, AutoResetDelay: 5 * time.Second}, settings.RegistryConfig())
	assert.Equal(t, link.Config{DefaultOpacity: 0.8}, settings.LinkConfig())
}

func TestParsePositiveInt(t *testing.T) {
	value, ok := parsePositiveInt(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12, value)

	_, ok = parsePositiveInt("0")
	assert.False(t, ok)
	_, ok = parsePositiveInt("abc")
	assert.False(t, ok)
}

func TestWindowSave(t *testing.T) {
	app := test.NewTempApp(t)

	var saved []Settings
	prefs := New(app, DefaultSettings(), func(settings Settings) {
		saved = append(saved, settings)
	})

	prefs.resetDelay.SetText("7")
	prefs.opacity.SetValue(0.5)
	prefs.launch.SetChecked(true)
	prefs.store.SetSelected(StoreFile)
	prefs.handleSave()

	require.Len(t, saved, 1)
	assert.Equal(t, 7*time.Second, saved[0].AutoResetDelay)
	assert.Equal(t, 0.5, saved[0].OverlayOpacity)
	assert.True(t, saved[0].LaunchAtLogin)
	assert.Equal(t, StoreFile, saved[0].StoreBackend)
	assert.Equal(t, "50%", prefs.opacityLabel.Text)

	prefs.resetDelay.SetText("nope")
	prefs.handleSave()
	assert.Equal(t, 7*time.Second, saved[1].AutoResetDelay, "invalid input keeps the previous value")
}
