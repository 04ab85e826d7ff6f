package overlay

import (
	"image/color"

	"gamertimer/internal/core/link"
	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"
	"gamertimer/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

var (
	backgroundColor = color.NRGBA{R: 24, G: 24, B: 28}
	flashColor      = color.NRGBA{R: 200, G: 40, B: 40}
	timeColor       = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	nameColor       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Factory creates overlay windows for the link manager.
type Factory struct {
	app   fyne.App
	flash animation.Config
	log   zerolog.Logger
}

// NewFactory returns a factory building windows in app.
func NewFactory(app fyne.App, flash animation.Config, log zerolog.Logger) *Factory {
	return &Factory{
		app:   app,
		flash: flash,
		log:   log.With().Str("module", "overlay").Logger(),
	}
}

// Create returns a surface for the timer. The window itself is built on the
// UI thread, so Create may be called from any goroutine.
func (factory *Factory) Create(timerID string, inbox link.Inbox) (link.Surface, error) {
	overlay := &Window{
		timerID: timerID,
		inbox:   inbox,
		log:     factory.log.With().Str("timer", timerID).Logger(),
	}
	overlay.flash = animation.New(factory.flash, func(on bool) {
		fyne.Do(func() {
			overlay.setHighlightUnsafe(on)
		})
	})

	fyne.Do(func() {
		overlay.buildUnsafe(factory.app)
	})
	return overlay, nil
}

// Window is the detached view of one timer. Every field below inbox is owned
// by the UI thread.
type Window struct {
	timerID string
	inbox   link.Inbox
	log     zerolog.Logger
	flash   *animation.Engine

	window          fyne.Window
	background      *canvas.Rectangle
	nameLabel       *canvas.Text
	timeLabel       *canvas.Text
	toggleButton    *widget.Button
	opacitySlider   *widget.Slider
	alpha           uint8
	flashOnComplete bool
	closed          bool
}

// Deliver applies an update from the owning side.
func (overlay *Window) Deliver(update protocol.Update) {
	fyne.Do(func() {
		if overlay.closed {
			return
		}

		switch value := update.(type) {
		case protocol.Snapshot:
			overlay.applySnapshotUnsafe(value)
		case protocol.Opacity:
			overlay.applyOpacityUnsafe(value.Value)
		}
	})
}

// Focus brings the window to front.
func (overlay *Window) Focus() {
	fyne.Do(func() {
		if overlay.closed {
			return
		}
		overlay.window.Show()
		overlay.window.RequestFocus()
	})
}

// Close destroys the window. Calling it more than once is safe.
func (overlay *Window) Close() {
	fyne.Do(func() {
		if overlay.closed {
			return
		}
		overlay.closed = true
		go overlay.flash.Stop()
		overlay.window.Close()
	})
}

func (overlay *Window) buildUnsafe(app fyne.App) {
	window := app.NewWindow("Timer")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	overlay.alpha = alphaFromOpacity(link.DefaultOpacity)
	overlay.background = canvas.NewRectangle(withAlpha(backgroundColor, overlay.alpha))

	overlay.nameLabel = canvas.NewText("", nameColor)
	overlay.nameLabel.TextStyle = fyne.TextStyle{Bold: true}
	overlay.nameLabel.TextSize = 14
	overlay.nameLabel.Alignment = fyne.TextAlignCenter

	overlay.timeLabel = canvas.NewText("--:--:--", timeColor)
	overlay.timeLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	overlay.timeLabel.TextSize = 26
	overlay.timeLabel.Alignment = fyne.TextAlignCenter

	overlay.toggleButton = widget.NewButton("Start", func() {
		overlay.send(protocol.Command{Kind: protocol.CommandToggle, TimerID: overlay.timerID})
	})
	resetButton := widget.NewButton("Reset", func() {
		overlay.send(protocol.Command{Kind: protocol.CommandReset, TimerID: overlay.timerID})
	})
	closeButton := widget.NewButton("Close", overlay.requestClose)

	overlay.opacitySlider = widget.NewSlider(link.MinOpacity, link.MaxOpacity)
	overlay.opacitySlider.Step = 0.05
	overlay.opacitySlider.Value = link.DefaultOpacity
	overlay.opacitySlider.OnChanged = func(value float64) {
		overlay.send(protocol.Command{Kind: protocol.CommandSetOpacity, TimerID: overlay.timerID, Value: value})
	}

	content := container.NewVBox(
		overlay.nameLabel,
		overlay.timeLabel,
		container.NewHBox(layout.NewSpacer(), overlay.toggleButton, resetButton, closeButton, layout.NewSpacer()),
		overlay.opacitySlider,
	)
	window.SetContent(container.NewStack(overlay.background, container.NewPadded(content)))
	window.SetCloseIntercept(overlay.requestClose)
	window.Resize(fyne.NewSize(240, 150))

	overlay.window = window
	window.Show()
	keepOnTop(window)
}

func (overlay *Window) applySnapshotUnsafe(snapshot protocol.Snapshot) {
	if snapshot.Initial {
		overlay.nameLabel.Text = snapshot.Name
		overlay.nameLabel.Refresh()
		overlay.window.SetTitle(snapshot.Name)
		overlay.flashOnComplete = snapshot.FlashOnComplete
	}

	overlay.timeLabel.Text = model.FormatRemaining(snapshot.Remaining)
	overlay.timeLabel.Refresh()

	if snapshot.Running {
		overlay.toggleButton.SetText("Pause")
	} else {
		overlay.toggleButton.SetText("Start")
	}

	flashing := overlay.flashOnComplete && !snapshot.Running && snapshot.Remaining <= 0
	if flashing != overlay.flash.Running() {
		go overlay.flash.SetRunning(flashing)
	}
}

func (overlay *Window) applyOpacityUnsafe(opacity float64) {
	opacity = link.ClampOpacity(opacity)
	if overlay.opacitySlider.Value != opacity {
		overlay.opacitySlider.Value = opacity
		overlay.opacitySlider.Refresh()
	}

	overlay.alpha = alphaFromOpacity(opacity)
	overlay.background.FillColor = withAlpha(backgroundColor, overlay.alpha)
	overlay.background.Refresh()
	applyNativeOpacity(overlay.window, overlay.alpha)
}

func (overlay *Window) setHighlightUnsafe(on bool) {
	if overlay.closed {
		return
	}
	base := backgroundColor
	if on {
		base = flashColor
	}
	overlay.background.FillColor = withAlpha(base, overlay.alpha)
	overlay.background.Refresh()
}

// requestClose asks the link manager to close the window. The window stays up
// when the request is dropped so it never outlives its link unseen.
func (overlay *Window) requestClose() {
	overlay.send(protocol.Command{Kind: protocol.CommandClose, TimerID: overlay.timerID})
}

func (overlay *Window) send(command protocol.Command) bool {
	if overlay.inbox.Post(command) {
		return true
	}
	overlay.log.Debug().Str("command", string(command.Kind)).Msg("command dropped")
	return false
}

func alphaFromOpacity(opacity float64) uint8 {
	return uint8(link.ClampOpacity(opacity)*255 + 0.5)
}

func withAlpha(value color.NRGBA, alpha uint8) color.NRGBA {
	value.A = alpha
	return value
}
