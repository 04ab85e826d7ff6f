package preferences

import (
	"time"

	"gamertimer/internal/core/link"
	"gamertimer/internal/core/timekeeper"
)

const (
	StoreLevelDB = "leveldb"
	StoreFile    = "file"
)

// Settings defines editable user preferences.
type Settings struct {
	StoreBackend string
	DataDir      string

	TickInterval   time.Duration
	AutoResetDelay time.Duration
	OverlayOpacity float64

	SoundEnabled  bool
	Volume        float64
	SoundFile     string
	Notifications bool

	LaunchAtLogin bool

	LogLevel  string
	LogFormat string
}

// DefaultSettings returns default settings for Gamer Timer.
func DefaultSettings() Settings {
	return Settings{
		StoreBackend:   StoreLevelDB,
		TickInterval:   time.Second,
		AutoResetDelay: timekeeper.DefaultAutoResetDelay,
		OverlayOpacity: link.DefaultOpacity,
		SoundEnabled:   true,
		Volume:         0.7,
		Notifications:  true,
		LogLevel:       "info",
		LogFormat:      "terminal",
	}
}

// RegistryConfig converts settings to the registry configuration.
func (settings Settings) RegistryConfig() timekeeper.Config {
	return timekeeper.Config{
		TickInterval:   settings.TickInterval,
		AutoResetDelay: settings.AutoResetDelay,
	}
}

// LinkConfig converts settings to the overlay link configuration.
func (settings Settings) LinkConfig() link.Config {
	return link.Config{
		DefaultOpacity: settings.OverlayOpacity,
	}
}

// Normalize replaces out-of-range values with their defaults or bounds.
func (settings Settings) Normalize() Settings {
	defaults := DefaultSettings()

	if settings.StoreBackend != StoreLevelDB && settings.StoreBackend != StoreFile {
		settings.StoreBackend = defaults.StoreBackend
	}
	if settings.TickInterval < 100*time.Millisecond {
		settings.TickInterval = defaults.TickInterval
	}
	if settings.AutoResetDelay <= 0 {
		settings.AutoResetDelay = defaults.AutoResetDelay
	}
	settings.OverlayOpacity = link.ClampOpacity(settings.OverlayOpacity)

	switch {
	case settings.Volume < 0:
		settings.Volume = 0
	case settings.Volume > 1:
		settings.Volume = 1
	}
	if settings.LogLevel == "" {
		settings.LogLevel = defaults.LogLevel
	}
	if settings.LogFormat == "" {
		settings.LogFormat = defaults.LogFormat
	}
	return settings
}
