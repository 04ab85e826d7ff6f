package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gamertimer/internal/core/link"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings)
	store         *widget.Select
	dataDir       *widget.Entry
	resetDelay    *widget.Entry
	opacity       *widget.Slider
	opacityLabel  *widget.Label
	sound         *widget.Check
	volume        *widget.Slider
	soundFile     *widget.Entry
	notifications *widget.Check
	launch        *widget.Check
	logLevel      *widget.Select
	logFormat     *widget.Select
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Gamer Timer Settings")

	store := widget.NewSelect([]string{StoreLevelDB, StoreFile}, nil)
	dataDir := widget.NewEntry()
	dataDir.SetPlaceHolder("default")
	resetDelay := widget.NewEntry()

	opacityLabel := widget.NewLabel("")
	opacity := widget.NewSlider(link.MinOpacity, link.MaxOpacity)
	opacity.Step = 0.05
	opacity.OnChanged = func(value float64) {
		opacityLabel.SetText(fmt.Sprintf("%d%%", int(value*100+0.5)))
	}

	sound := widget.NewCheck("Play sound on completion", nil)
	volume := widget.NewSlider(0, 1)
	volume.Step = 0.05
	soundFile := widget.NewEntry()
	soundFile.SetPlaceHolder("built-in tone")
	notifications := widget.NewCheck("Desktop notifications", nil)

	launch := widget.NewCheck("Start with the session, minimized to the tray", nil)

	logLevel := widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	logFormat := widget.NewSelect([]string{"terminal", "json"}, nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Timers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Auto-reset delay"), resetDelay, widget.NewLabel("sec")),
		container.NewBorder(nil, nil, widget.NewLabel("Overlay opacity"), opacityLabel, opacity),
		widget.NewLabelWithStyle("Alerts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sound,
		container.NewBorder(nil, nil, widget.NewLabel("Volume"), nil, volume),
		container.NewBorder(nil, nil, widget.NewLabel("Sound file"), nil, soundFile),
		notifications,
		widget.NewLabelWithStyle("System", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		launch,
		widget.NewLabelWithStyle("Storage (restart required)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Backend"), store),
		container.NewBorder(nil, nil, widget.NewLabel("Data directory"), nil, dataDir),
		widget.NewLabelWithStyle("Logging", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Level"), logLevel, widget.NewLabel("Format"), logFormat),
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(460, 580))

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		store:         store,
		dataDir:       dataDir,
		resetDelay:    resetDelay,
		opacity:       opacity,
		opacityLabel:  opacityLabel,
		sound:         sound,
		volume:        volume,
		soundFile:     soundFile,
		notifications: notifications,
		launch:        launch,
		logLevel:      logLevel,
		logFormat:     logFormat,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.store.SetSelected(settings.StoreBackend)
	prefs.dataDir.SetText(settings.DataDir)
	prefs.resetDelay.SetText(strconv.Itoa(int(settings.AutoResetDelay / time.Second)))
	prefs.opacity.SetValue(settings.OverlayOpacity)
	prefs.sound.SetChecked(settings.SoundEnabled)
	prefs.volume.SetValue(settings.Volume)
	prefs.soundFile.SetText(settings.SoundFile)
	prefs.notifications.SetChecked(settings.Notifications)
	prefs.launch.SetChecked(settings.LaunchAtLogin)
	prefs.logLevel.SetSelected(settings.LogLevel)
	prefs.logFormat.SetSelected(settings.LogFormat)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	settings.StoreBackend = prefs.store.Selected
	settings.DataDir = strings.TrimSpace(prefs.dataDir.Text)
	if seconds, ok := parsePositiveInt(prefs.resetDelay.Text); ok {
		settings.AutoResetDelay = time.Duration(seconds) * time.Second
	}
	settings.OverlayOpacity = prefs.opacity.Value
	settings.SoundEnabled = prefs.sound.Checked
	settings.Volume = prefs.volume.Value
	settings.SoundFile = strings.TrimSpace(prefs.soundFile.Text)
	settings.Notifications = prefs.notifications.Checked
	settings.LaunchAtLogin = prefs.launch.Checked
	settings.LogLevel = prefs.logLevel.Selected
	settings.LogFormat = prefs.logFormat.Selected

	settings = settings.Normalize()
	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
