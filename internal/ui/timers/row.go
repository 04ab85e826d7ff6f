package timers

import (
	"image/color"

	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"
	"gamertimer/internal/core/timekeeper"
	"gamertimer/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var (
	rowColor   = color.NRGBA{A: 0}
	flashColor = color.NRGBA{R: 200, G: 40, B: 40, A: 160}
)

type row struct {
	timer        model.Timer
	container    *fyne.Container
	background   *canvas.Rectangle
	timeLabel    *widget.Label
	stateLabel   *widget.Label
	toggleButton *widget.Button
	flash        *animation.Engine
}

func newRow(view *View, timer model.Timer) *row {
	current := &row{timer: timer}

	current.background = canvas.NewRectangle(rowColor)
	nameLabel := widget.NewLabelWithStyle(timer.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	current.timeLabel = widget.NewLabelWithStyle(model.FormatRemaining(timer.Duration), fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})
	current.stateLabel = widget.NewLabel(string(timekeeper.StateIdle))

	current.toggleButton = widget.NewButton("Start", func() {
		view.registry.ApplyCommand(timer.ID, protocol.CommandToggle)
	})
	resetButton := widget.NewButton("Reset", func() {
		view.registry.ApplyCommand(timer.ID, protocol.CommandReset)
	})
	overlayButton := widget.NewButton("Overlay", func() {
		view.openOverlay(timer.ID)
	})
	deleteButton := widget.NewButton("Delete", func() {
		view.confirmDelete(timer)
	})

	current.container = container.NewStack(
		current.background,
		container.NewBorder(nil, nil,
			container.NewVBox(nameLabel, container.NewHBox(current.timeLabel, current.stateLabel)),
			container.NewHBox(current.toggleButton, resetButton, overlayButton, deleteButton),
		),
	)

	current.flash = animation.New(view.flash, func(on bool) {
		fyne.Do(func() {
			current.setHighlightUnsafe(on)
		})
	})
	return current
}

func (current *row) update(snapshot protocol.Snapshot, state timekeeper.State) {
	current.timeLabel.SetText(model.FormatRemaining(snapshot.Remaining))
	current.stateLabel.SetText(string(state))
	if snapshot.Running {
		current.toggleButton.SetText("Pause")
	} else {
		current.toggleButton.SetText("Start")
	}

	flashing := state == timekeeper.StateCompleted && current.timer.FlashOnComplete
	if flashing != current.flash.Running() {
		go current.flash.SetRunning(flashing)
	}
}

func (current *row) setHighlightUnsafe(on bool) {
	if on {
		current.background.FillColor = flashColor
	} else {
		current.background.FillColor = rowColor
	}
	current.background.Refresh()
}

func (current *row) dispose() {
	go current.flash.Stop()
}
