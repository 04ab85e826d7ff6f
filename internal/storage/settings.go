package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamertimer/internal/ui/preferences"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type fileSettings struct {
	StoreBackend     string  `yaml:"store" toml:"store"`
	DataDir          string  `yaml:"data_dir" toml:"data_dir"`
	TickIntervalMS   int     `yaml:"tick_interval_ms" toml:"tick_interval_ms"`
	AutoResetSeconds int     `yaml:"auto_reset_seconds" toml:"auto_reset_seconds"`
	OverlayOpacity   float64 `yaml:"overlay_opacity" toml:"overlay_opacity"`
	Sound            *bool   `yaml:"sound" toml:"sound"`
	Volume           float64 `yaml:"volume" toml:"volume"`
	SoundFile        string  `yaml:"sound_file" toml:"sound_file"`
	Notifications    *bool   `yaml:"notifications" toml:"notifications"`
	LaunchAtLogin    bool    `yaml:"launch_at_login" toml:"launch_at_login"`
	LogLevel         string  `yaml:"log_level" toml:"log_level"`
	LogFormat        string  `yaml:"log_format" toml:"log_format"`
}

// DefaultSettingsPath returns the settings file inside the user config dir.
func DefaultSettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve user config dir")
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// DefaultDataDir returns the directory holding the timer store.
func DefaultDataDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve user config dir")
	}
	return filepath.Join(configDir, appName, "data"), nil
}

// LoadSettings reads user preferences from path. TOML is used for .toml files
// and YAML otherwise. If the file does not exist, default settings are returned.
func LoadSettings(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, errors.Wrap(err, "read settings file")
	}

	var fileData fileSettings
	if isTOML(path) {
		if _, err := toml.Decode(string(rawData), &fileData); err != nil {
			return settings, errors.Wrap(err, "parse settings toml")
		}
	} else if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, errors.Wrap(err, "parse settings yaml")
	}

	applyFileSettings(&settings, fileData)
	return settings.Normalize(), nil
}

// SaveSettings writes user preferences to path.
func SaveSettings(path string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	sound := settings.SoundEnabled
	notifications := settings.Notifications
	fileData := fileSettings{
		StoreBackend:     settings.StoreBackend,
		DataDir:          settings.DataDir,
		TickIntervalMS:   int(settings.TickInterval / time.Millisecond),
		AutoResetSeconds: int(settings.AutoResetDelay / time.Second),
		OverlayOpacity:   settings.OverlayOpacity,
		Sound:            &sound,
		Volume:           settings.Volume,
		SoundFile:        settings.SoundFile,
		Notifications:    &notifications,
		LaunchAtLogin:    settings.LaunchAtLogin,
		LogLevel:         settings.LogLevel,
		LogFormat:        settings.LogFormat,
	}

	var serialized []byte
	if isTOML(path) {
		var buffer bytes.Buffer
		if err := toml.NewEncoder(&buffer).Encode(fileData); err != nil {
			return errors.Wrap(err, "marshal settings toml")
		}
		serialized = buffer.Bytes()
	} else {
		var err error
		if serialized, err = yaml.Marshal(fileData); err != nil {
			return errors.Wrap(err, "marshal settings yaml")
		}
	}

	if err := writeFileAtomic(path, serialized); err != nil {
		return errors.Wrap(err, "write settings file")
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func applyFileSettings(settings *preferences.Settings, fileData fileSettings) {
	if fileData.StoreBackend != "" {
		settings.StoreBackend = fileData.StoreBackend
	}
	if fileData.DataDir != "" {
		settings.DataDir = fileData.DataDir
	}
	if fileData.TickIntervalMS > 0 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMS) * time.Millisecond
	}
	if fileData.AutoResetSeconds > 0 {
		settings.AutoResetDelay = time.Duration(fileData.AutoResetSeconds) * time.Second
	}
	if fileData.OverlayOpacity > 0 {
		settings.OverlayOpacity = fileData.OverlayOpacity
	}
	if fileData.Sound != nil {
		settings.SoundEnabled = *fileData.Sound
	}
	if fileData.Volume > 0 {
		settings.Volume = fileData.Volume
	}
	settings.SoundFile = fileData.SoundFile
	if fileData.Notifications != nil {
		settings.Notifications = *fileData.Notifications
	}
	settings.LaunchAtLogin = fileData.LaunchAtLogin
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	if fileData.LogFormat != "" {
		settings.LogFormat = fileData.LogFormat
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
