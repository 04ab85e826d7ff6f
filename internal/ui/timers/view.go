// Package timers renders the owning side: every timer grouped by category,
// with controls that feed the registry.
package timers

import (
	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"
	"gamertimer/internal/core/timekeeper"
	"gamertimer/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const eventBuffer = 256

// Registry is the owning side of the timers.
type Registry interface {
	Create(timer model.Timer) (string, error)
	Delete(timerID string)
	Get(timerID string) (model.Timer, bool)
	All() []model.Timer
	Snapshot(timerID string) (protocol.Snapshot, bool)
	State(timerID string) (timekeeper.State, bool)
	ApplyCommand(timerID string, kind protocol.CommandKind)
	Subscribe(buffer int) <-chan timekeeper.Event
}

// Overlays opens detached views.
type Overlays interface {
	Open(timerID string) error
}

type tab struct {
	category model.Category
	item     *container.TabItem
	list     *fyne.Container
	empty    *widget.Label
}

// View is the main window.
type View struct {
	window   fyne.Window
	registry Registry
	overlays Overlays
	flash    animation.Config
	log      zerolog.Logger

	tabs    *container.AppTabs
	byTab   []*tab
	rows    map[string]*row
	onClose func()
}

// New builds the main window. Start must be called to follow registry events.
func New(app fyne.App, registry Registry, overlays Overlays, flash animation.Config, log zerolog.Logger) *View {
	view := &View{
		window:   app.NewWindow("Gamer Timer"),
		registry: registry,
		overlays: overlays,
		flash:    flash,
		log:      log.With().Str("module", "timers-view").Logger(),
		rows:     map[string]*row{},
	}

	view.tabs = container.NewAppTabs()
	for _, category := range []model.Category{model.CategoryShortTerm, model.CategoryLongTerm, ""} {
		current := &tab{
			category: category,
			list:     container.NewVBox(),
			empty:    widget.NewLabel("No timers yet."),
		}
		current.list.Add(current.empty)
		current.item = container.NewTabItem(category.Label(), container.NewVScroll(current.list))
		view.byTab = append(view.byTab, current)
		view.tabs.Append(current.item)
	}

	addButton := widget.NewButton("Add timer", view.showCreateForm)
	view.window.SetContent(container.NewBorder(container.NewHBox(addButton), nil, nil, nil, view.tabs))
	view.window.Resize(fyne.NewSize(640, 420))
	view.window.SetCloseIntercept(func() {
		if view.onClose != nil {
			view.onClose()
			return
		}
		view.window.Close()
	})

	view.rebuildUnsafe()
	return view
}

// Window returns the main window.
func (view *View) Window() fyne.Window {
	return view.window
}

// SetOnClose replaces the default close behaviour of the window.
func (view *View) SetOnClose(handler func()) {
	view.onClose = handler
}

// Show brings the window to front.
func (view *View) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// Start follows registry events until the registry closes its channel.
func (view *View) Start() {
	events := view.registry.Subscribe(eventBuffer)
	go func() {
		for event := range events {
			event := event
			fyne.Do(func() {
				view.handleEventUnsafe(event)
			})
		}
	}()
}

// ShowWarning displays a non-fatal problem to the user.
func (view *View) ShowWarning(title string, err error) {
	fyne.Do(func() {
		dialog.ShowInformation(title, err.Error(), view.window)
	})
}

func (view *View) handleEventUnsafe(event timekeeper.Event) {
	switch event.Type {
	case timekeeper.EventCreated:
		if _, exists := view.rows[event.TimerID]; exists {
			return
		}
		timer, found := view.registry.Get(event.TimerID)
		if !found {
			return
		}
		view.addRowUnsafe(timer)
		view.rows[event.TimerID].update(event.Snapshot, event.State)
	case timekeeper.EventDeleted:
		view.removeRowUnsafe(event.TimerID)
	default:
		current, exists := view.rows[event.TimerID]
		if !exists {
			view.rebuildUnsafe()
			return
		}
		current.update(event.Snapshot, event.State)
	}
}

// rebuildUnsafe re-creates every row from the registry, used when events were dropped.
func (view *View) rebuildUnsafe() {
	for id := range view.rows {
		view.removeRowUnsafe(id)
	}
	for _, timer := range view.registry.All() {
		view.addRowUnsafe(timer)
		snapshot, _ := view.registry.Snapshot(timer.ID)
		state, _ := view.registry.State(timer.ID)
		view.rows[timer.ID].update(snapshot, state)
	}
}

func (view *View) addRowUnsafe(timer model.Timer) {
	current := newRow(view, timer)
	view.rows[timer.ID] = current

	target := view.tabFor(timer.Category)
	target.list.Remove(target.empty)
	target.list.Add(current.container)
}

func (view *View) removeRowUnsafe(timerID string) {
	current, exists := view.rows[timerID]
	if !exists {
		return
	}
	delete(view.rows, timerID)
	current.dispose()

	target := view.tabFor(current.timer.Category)
	target.list.Remove(current.container)
	if len(target.list.Objects) == 0 {
		target.list.Add(target.empty)
	}
}

func (view *View) tabFor(category model.Category) *tab {
	for _, current := range view.byTab {
		if current.category == category {
			return current
		}
	}
	return view.byTab[len(view.byTab)-1]
}

func (view *View) selectedCategory() model.Category {
	selected := view.tabs.Selected()
	for _, current := range view.byTab {
		if current.item == selected {
			return current.category
		}
	}
	return model.CategoryShortTerm
}

func (view *View) showCreateForm() {
	showCreateForm(view.window, view.selectedCategory(), view.submit)
}

func (view *View) submit(values FormValues) {
	if err := view.create(values); err != nil {
		if errors.Is(err, model.ErrInvalidDuration) {
			dialog.ShowInformation("Invalid duration", "Please enter a valid duration for the timer.", view.window)
			return
		}
		dialog.ShowError(err, view.window)
	}
}

func (view *View) create(values FormValues) error {
	timer, err := values.Timer()
	if err != nil {
		return err
	}
	id, err := view.registry.Create(timer)
	if err != nil {
		return err
	}
	view.log.Debug().Str("timer", id).Str("name", timer.Name).Msg("timer created from form")
	return nil
}

func (view *View) openOverlay(timerID string) {
	if err := view.overlays.Open(timerID); err != nil {
		view.log.Warn().Err(err).Str("timer", timerID).Msg("failed to open overlay")
		dialog.ShowError(err, view.window)
	}
}

func (view *View) confirmDelete(timer model.Timer) {
	dialog.ShowConfirm("Delete timer", "Delete \""+timer.Name+"\"?", func(confirmed bool) {
		if confirmed {
			view.registry.Delete(timer.ID)
		}
	}, view.window)
}
