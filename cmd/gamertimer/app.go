package main

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"gamertimer/internal/core/link"
	"gamertimer/internal/core/protocol"
	"gamertimer/internal/core/timekeeper"
	"gamertimer/internal/effects"
	"gamertimer/internal/logging"
	"gamertimer/internal/platform"
	"gamertimer/internal/storage"
	"gamertimer/internal/ui/animation"
	"gamertimer/internal/ui/overlay"
	"gamertimer/internal/ui/preferences"
	"gamertimer/internal/ui/timers"
	"gamertimer/internal/ui/tray"
	"gamertimer/resources"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const trayEventBuffer = 64

type application struct {
	mu           sync.Mutex
	settingsPath string
	settings     preferences.Settings
	log          zerolog.Logger

	fyneApp    fyne.App
	store      storage.TimerStore
	scheduler  *timekeeper.TickerScheduler
	registry   *timekeeper.Registry
	links      *link.Manager
	player     *effects.Player
	dispatcher *effects.Dispatcher
	view       *timers.View
	prefs      *preferences.Window
	tray       *tray.Manager
	watcher    *storage.SettingsWatcher
	loginItem  *platform.LoginItem

	stopOnce sync.Once
}

func run(flags cli) error {
	settingsPath := flags.Config
	if settingsPath == "" {
		path, err := storage.DefaultSettingsPath(appName)
		if err != nil {
			return err
		}
		settingsPath = path
	}

	settings, loadErr := storage.LoadSettings(settingsPath)
	settings, err := flags.apply(settings)
	if err != nil {
		return err
	}

	log, err := setupLogging(flags.LogFile, settings)
	if err != nil {
		return err
	}
	if loadErr != nil {
		log.Warn().Err(loadErr).Str("path", settingsPath).Msg("settings unreadable, using defaults")
	}

	guard, err := platform.AcquireSingleInstance(appName, log)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		log.Info().Msg("another instance is running, forwarding commands")
		return platform.SendToInstance(appName, flags.commands()...)
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	a := &application{
		settingsPath: settingsPath,
		settings:     settings,
		log:          log,
	}
	a.build()
	guard.Serve(func(command protocol.Command) {
		a.links.Inbox().Post(command)
	})

	if flags.Background && a.tray != nil {
		log.Info().Msg("started in the system tray")
	} else {
		a.view.Show()
	}

	a.fyneApp.Run()
	a.shutdown()
	return nil
}

func setupLogging(logFile string, settings preferences.Settings) (zerolog.Logger, error) {
	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	format, err := logging.ParseFormat(settings.LogFormat)
	if err != nil {
		format = logging.FormatTerminal
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		if out, err = logging.Output(logFile); err != nil {
			return zerolog.Nop(), err
		}
	}

	log := logging.Setup(out, level, format, false).Level(zerolog.TraceLevel)
	logging.ApplyLevel(level)
	return log, nil
}

func (a *application) build() {
	a.fyneApp = fyneapp.NewWithID(appID)
	a.fyneApp.SetIcon(resources.MustLogo(resources.LogoIdle))

	storeErr := a.openStore()

	a.scheduler = timekeeper.NewTickerScheduler()
	var store timekeeper.Store
	if a.store != nil {
		store = a.store
	}
	a.registry = timekeeper.New(store, a.scheduler, a.settings.RegistryConfig())
	a.registry.SetLogger(a.log)

	a.buildEffects()
	a.registry.SetEffects(a.dispatcher)

	flash := animation.DefaultConfig()
	a.links = link.NewManager(overlay.NewFactory(a.fyneApp, flash, a.log), a.registry, a.settings.LinkConfig())
	a.links.SetLogger(a.log)
	a.registry.SetForwarder(a.links)

	a.view = timers.New(a.fyneApp, a.registry, a.links, flash, a.log)
	a.view.SetOnClose(a.quit)
	a.registry.SetWarningHandler(func(err error) {
		a.view.ShowWarning("Timers are not being saved", err)
	})
	a.links.SetActivateHandler(func() {
		fyne.Do(a.view.Show)
	})
	a.view.Start()

	if storeErr != nil {
		a.log.Error().Err(storeErr).Msg("timer store unavailable; changes are kept in memory only")
		a.view.ShowWarning("Timers are not being saved", storeErr)
	}
	if err := a.registry.Load(); err != nil {
		a.log.Warn().Err(err).Msg("starting without saved timers")
	}

	a.prefs = preferences.New(a.fyneApp, a.settings, a.saveSettings)
	a.buildTray()
	a.syncLoginItem(a.settings.LaunchAtLogin)
	a.watchSettings()
}

func (a *application) openStore() error {
	dataDir := a.settings.DataDir
	if dataDir == "" {
		dir, err := storage.DefaultDataDir(appName)
		if err != nil {
			return err
		}
		dataDir = dir
	}

	store, err := storage.OpenTimerStore(a.settings.StoreBackend, dataDir)
	if err != nil {
		return errors.Wrapf(err, "open %s store in %s", a.settings.StoreBackend, dataDir)
	}
	a.store = store
	a.log.Info().Str("backend", a.settings.StoreBackend).Str("dir", dataDir).Msg("timer store opened")
	return nil
}

func (a *application) buildEffects() {
	player, err := effects.NewPlayer(a.settings.SoundFile, a.settings.Volume)
	if err != nil {
		a.log.Warn().Err(err).Str("file", a.settings.SoundFile).Msg("sound file unusable, using the built-in tone")
		player, err = effects.NewPlayer("", a.settings.Volume)
	}
	var sounder effects.Sounder
	if err == nil {
		a.player = player
		sounder = player
	}

	notifier := platform.NewNotifier(appName, func(title, body string) {
		fyne.Do(func() {
			a.fyneApp.SendNotification(fyne.NewNotification(title, body))
		})
	})
	a.dispatcher = effects.NewDispatcher(sounder, notifier, effectOptions(a.settings), a.log)
}

func effectOptions(settings preferences.Settings) effects.Options {
	return effects.Options{
		Sound:         settings.SoundEnabled,
		Notifications: settings.Notifications,
	}
}

func (a *application) buildTray() {
	desktopApp, ok := a.fyneApp.(desktop.App)
	if !ok {
		a.log.Info().Msg("system tray unsupported on this platform")
		return
	}

	a.tray = tray.New(desktopApp, tray.Icons{
		Idle:    resources.MustLogo(resources.LogoIdle),
		Running: resources.MustLogo(resources.LogoRunning),
	}, tray.Callbacks{
		OnShow:          a.view.Show,
		OnPreferences:   a.prefs.Show,
		OnPauseAll:      a.registry.PauseAll,
		OnCloseOverlays: a.links.CloseAll,
		OnQuit:          a.quit,
	})

	events := a.registry.Subscribe(trayEventBuffer)
	go func() {
		for range events {
			count := a.registry.RunningCount()
			fyne.Do(func() {
				a.tray.SetRunning(count)
			})
		}
	}()
}

func (a *application) watchSettings() {
	if err := os.MkdirAll(filepath.Dir(a.settingsPath), 0o755); err != nil {
		a.log.Warn().Err(err).Msg("settings hot reload disabled")
		return
	}
	watcher, err := storage.WatchSettings(a.settingsPath, a.log)
	if err != nil {
		a.log.Warn().Err(err).Msg("settings hot reload disabled")
		return
	}
	watcher.OnChange(a.applySettings)
	a.watcher = watcher
}

func (a *application) saveSettings(updated preferences.Settings) {
	if err := storage.SaveSettings(a.settingsPath, updated); err != nil {
		a.log.Error().Err(err).Str("path", a.settingsPath).Msg("failed to save settings")
		dialog.ShowError(err, a.view.Window())
	}
	a.applySettings(updated)
}

// applySettings hot-applies everything that does not need a restart. Store
// backend and data directory changes take effect on the next launch.
func (a *application) applySettings(updated preferences.Settings) {
	a.mu.Lock()
	previous := a.settings
	a.settings = updated
	a.mu.Unlock()

	if level, err := logging.ParseLevel(updated.LogLevel); err == nil {
		logging.ApplyLevel(level)
	}

	a.registry.SetConfig(updated.RegistryConfig())
	a.links.SetDefaultOpacity(updated.OverlayOpacity)
	a.dispatcher.SetOptions(effectOptions(updated))

	if updated.SoundFile != previous.SoundFile {
		if player, err := effects.NewPlayer(updated.SoundFile, updated.Volume); err != nil {
			a.log.Warn().Err(err).Str("file", updated.SoundFile).Msg("keeping the previous sound")
		} else {
			a.mu.Lock()
			a.player = player
			a.mu.Unlock()
			a.dispatcher.SetSounder(player)
		}
	}
	a.mu.Lock()
	player := a.player
	a.mu.Unlock()
	if player != nil {
		player.SetVolume(updated.Volume)
	}

	if updated.LaunchAtLogin != previous.LaunchAtLogin {
		a.syncLoginItem(updated.LaunchAtLogin)
	}
	if updated.StoreBackend != previous.StoreBackend || updated.DataDir != previous.DataDir {
		a.log.Info().Msg("timer store changes apply after restart")
	}

	fyne.Do(func() {
		a.prefs.UpdateSettings(updated)
	})
	a.log.Debug().Msg("settings applied")
}

func (a *application) syncLoginItem(enabled bool) {
	if a.loginItem == nil {
		execPath, err := os.Executable()
		if err != nil {
			a.log.Warn().Err(err).Msg("launch at login unavailable")
			return
		}
		a.loginItem = platform.NewLoginItem(appName, execPath)
	}
	if a.loginItem.Enabled() == enabled {
		return
	}
	if err := a.loginItem.Apply(enabled); err != nil {
		a.log.Warn().Err(err).Bool("enabled", enabled).Msg("failed to update launch at login")
	}
}

// quit closes every overlay and stops all tick tasks before the UI loop ends.
func (a *application) quit() {
	a.stopCore()
	a.fyneApp.Quit()
}

func (a *application) stopCore() {
	a.stopOnce.Do(func() {
		if a.watcher != nil {
			_ = a.watcher.Close()
		}
		a.registry.Close()
		a.links.Shutdown()
	})
}

func (a *application) shutdown() {
	a.stopCore()
	a.scheduler.Wait()
	a.dispatcher.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Error().Err(err).Msg("failed to close timer store")
		}
	}
	a.log.Info().Msg("stopped")
}
