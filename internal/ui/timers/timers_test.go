package timers

import (
	"testing"
	"time"

	"gamertimer/internal/core/model"
	"gamertimer/internal/core/timekeeper"
	"gamertimer/internal/ui/animation"

	"fyne.io/fyne/v2/test"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormValuesTimer(t *testing.T) {
	timer, err := FormValues{
		Name:      "  Boss  ",
		Category:  model.CategoryLongTerm,
		Duration:  model.DurationFields{Days: "1", Hours: "2", Minutes: "", Seconds: "5"},
		AutoReset: true,
		Flash:     true,
	}.Timer()
	require.NoError(t, err)

	assert.Equal(t, "Boss", timer.Name)
	assert.Equal(t, model.CategoryLongTerm, timer.Category)
	assert.Equal(t, 26*time.Hour+5*time.Second, timer.Duration)
	assert.True(t, timer.AutoReset)
	assert.True(t, timer.FlashOnComplete)
	assert.False(t, timer.SoundOnComplete)
}

func TestFormValuesInvalid(t *testing.T) {
	_, err := FormValues{Name: "x"}.Timer()
	assert.True(t, errors.Is(err, model.ErrInvalidDuration))

	_, err = FormValues{Duration: model.DurationFields{Minutes: "-3"}}.Timer()
	assert.ErrorContains(t, err, "minutes must be a non-negative whole number")

	timer, err := FormValues{Duration: model.DurationFields{Seconds: "30"}}.Timer()
	require.NoError(t, err)
	assert.Equal(t, "Unnamed Timer", timer.Name)
}

type nopOverlays struct {
	opened []string
}

func (overlays *nopOverlays) Open(timerID string) error {
	overlays.opened = append(overlays.opened, timerID)
	return nil
}

func newTestView(t *testing.T) (*View, *timekeeper.Registry, *timekeeper.ManualScheduler) {
	app := test.NewTempApp(t)
	scheduler := timekeeper.NewManualScheduler()
	registry := timekeeper.New(nil, scheduler, timekeeper.Config{})
	t.Cleanup(registry.Close)

	view := New(app, registry, &nopOverlays{}, animation.DefaultConfig(), zerolog.Nop())
	return view, registry, scheduler
}

func drain(view *View, events <-chan timekeeper.Event) {
	for len(events) > 0 {
		view.handleEventUnsafe(<-events)
	}
}

func TestViewFollowsRegistry(t *testing.T) {
	view, registry, scheduler := newTestView(t)
	events := registry.Subscribe(64)

	err := view.create(FormValues{
		Name:     "Respawn",
		Category: model.CategoryShortTerm,
		Duration: model.DurationFields{Minutes: "2"},
	})
	require.NoError(t, err)
	drain(view, events)

	require.Len(t, view.rows, 1)
	var id string
	var current *row
	for id, current = range view.rows {
		break
	}
	assert.Equal(t, "00:02:00", current.timeLabel.Text)
	assert.Equal(t, "Start", current.toggleButton.Text)

	test.Tap(current.toggleButton)
	scheduler.Advance(3 * time.Second)
	drain(view, events)
	assert.Equal(t, "00:01:57", current.timeLabel.Text)
	assert.Equal(t, "Pause", current.toggleButton.Text)
	assert.Equal(t, string(timekeeper.StateRunning), current.stateLabel.Text)

	short := view.tabFor(model.CategoryShortTerm)
	assert.Contains(t, short.list.Objects, current.container)
	assert.NotContains(t, short.list.Objects, short.empty)

	registry.Delete(id)
	drain(view, events)
	assert.Empty(t, view.rows)
	assert.Contains(t, short.list.Objects, short.empty)
}

func TestViewCategories(t *testing.T) {
	view, registry, _ := newTestView(t)
	events := registry.Subscribe(64)

	_, err := registry.Create(model.Timer{Name: "daily", Category: model.CategoryLongTerm, Duration: time.Hour})
	require.NoError(t, err)
	_, err = registry.Create(model.Timer{Name: "misc", Category: "custom", Duration: time.Hour})
	require.NoError(t, err)
	drain(view, events)

	assert.Len(t, view.tabFor(model.CategoryLongTerm).list.Objects, 1)
	assert.Len(t, view.tabFor("").list.Objects, 1)
	assert.Contains(t, view.tabFor(model.CategoryShortTerm).list.Objects, view.tabFor(model.CategoryShortTerm).empty)
}

func TestViewRebuildsOnUnknownTimer(t *testing.T) {
	view, registry, _ := newTestView(t)

	id, err := registry.Create(model.Timer{Name: "late", Duration: time.Minute})
	require.NoError(t, err)
	assert.Empty(t, view.rows)

	snapshot, _ := registry.Snapshot(id)
	view.handleEventUnsafe(timekeeper.Event{Type: timekeeper.EventSnapshot, TimerID: id, Snapshot: snapshot})
	assert.Contains(t, view.rows, id)
}

func TestViewOpenOverlay(t *testing.T) {
	view, registry, _ := newTestView(t)
	id, err := registry.Create(model.Timer{Name: "raid", Duration: time.Minute})
	require.NoError(t, err)

	view.openOverlay(id)
	assert.Equal(t, []string{id}, view.overlays.(*nopOverlays).opened)
}
