package link

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"
	"gamertimer/internal/core/timekeeper"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type fakeSurface struct {
	sync.Mutex
	timerID string
	inbox   Inbox
	updates []protocol.Update
	focused int
	closed  int
}

func (surface *fakeSurface) Deliver(update protocol.Update) {
	surface.Lock()
	defer surface.Unlock()
	surface.updates = append(surface.updates, update)
}

func (surface *fakeSurface) Focus() {
	surface.Lock()
	defer surface.Unlock()
	surface.focused++
}

func (surface *fakeSurface) Close() {
	surface.Lock()
	defer surface.Unlock()
	surface.closed++
}

func (surface *fakeSurface) snapshots() []protocol.Snapshot {
	surface.Lock()
	defer surface.Unlock()

	var snapshots []protocol.Snapshot
	for _, update := range surface.updates {
		if snapshot, ok := update.(protocol.Snapshot); ok {
			snapshots = append(snapshots, snapshot)
		}
	}
	return snapshots
}

func (surface *fakeSurface) opacities() []float64 {
	surface.Lock()
	defer surface.Unlock()

	var values []float64
	for _, update := range surface.updates {
		if opacity, ok := update.(protocol.Opacity); ok {
			values = append(values, opacity.Value)
		}
	}
	return values
}

func (surface *fakeSurface) closeCount() int {
	surface.Lock()
	defer surface.Unlock()
	return surface.closed
}

type fakeFactory struct {
	sync.Mutex
	surfaces []*fakeSurface
	err      error
}

func (factory *fakeFactory) Create(timerID string, inbox Inbox) (Surface, error) {
	factory.Lock()
	defer factory.Unlock()

	if factory.err != nil {
		return nil, factory.err
	}
	surface := &fakeSurface{timerID: timerID, inbox: inbox}
	factory.surfaces = append(factory.surfaces, surface)
	return surface, nil
}

func (factory *fakeFactory) created() []*fakeSurface {
	factory.Lock()
	defer factory.Unlock()
	return append([]*fakeSurface(nil), factory.surfaces...)
}

type testManager struct {
	suite.Suite
	scheduler *timekeeper.ManualScheduler
	registry  *timekeeper.Registry
	factory   *fakeFactory
	manager   *Manager
}

func (t *testManager) SetupTest() {
	t.scheduler = timekeeper.NewManualScheduler()
	t.registry = timekeeper.New(nil, t.scheduler, timekeeper.Config{TickInterval: time.Second})
	t.factory = &fakeFactory{}
	t.manager = NewManager(t.factory, t.registry, Config{})
	t.registry.SetForwarder(t.manager)
}

func (t *testManager) TearDownTest() {
	t.registry.Close()
	t.manager.Shutdown()
}

func (t *testManager) create(name string) string {
	id, err := t.registry.Create(model.Timer{Name: name, Duration: time.Minute, FlashOnComplete: true})
	t.NoError(err)
	return id
}

func (t *testManager) waitSnapshots(surface *fakeSurface, count int) []protocol.Snapshot {
	t.Eventually(func() bool {
		return len(surface.snapshots()) >= count
	}, time.Second, time.Millisecond)
	return surface.snapshots()
}

func (t *testManager) TestOpenPushesInitialState() {
	id := t.create("Raid")

	t.NoError(t.manager.Open(id))
	t.True(t.manager.IsOpen(id))

	surfaces := t.factory.created()
	t.Len(surfaces, 1)

	snapshots := t.waitSnapshots(surfaces[0], 1)
	t.True(snapshots[0].Initial)
	t.Equal("Raid", snapshots[0].Name)
	t.True(snapshots[0].FlashOnComplete)
	t.Equal(time.Minute, snapshots[0].Remaining)

	t.Eventually(func() bool {
		return len(surfaces[0].opacities()) == 1
	}, time.Second, time.Millisecond)
	t.Equal([]float64{DefaultOpacity}, surfaces[0].opacities())
}

func (t *testManager) TestOpenTwiceRefocuses() {
	id := t.create("Raid")

	t.NoError(t.manager.Open(id))
	t.NoError(t.manager.Open(id))

	surfaces := t.factory.created()
	t.Len(surfaces, 1)
	t.Equal(1, t.manager.Count())

	surfaces[0].Lock()
	focused := surfaces[0].focused
	surfaces[0].Unlock()
	t.Equal(1, focused)

	snapshots := t.waitSnapshots(surfaces[0], 2)
	t.True(snapshots[1].Initial, "refocus resends the current state")
}

func (t *testManager) TestOpenUnknownTimer() {
	err := t.manager.Open("timer-missing")
	t.True(errors.Is(err, ErrUnknownTimer))
	t.Empty(t.factory.created())
}

func (t *testManager) TestOpenFactoryFailure() {
	id := t.create("Raid")
	t.factory.err = errors.New("no display")

	err := t.manager.Open(id)
	t.ErrorContains(err, "no display")
	t.False(t.manager.IsOpen(id))
}

func (t *testManager) TestTicksArriveInOrder() {
	id := t.create("Raid")
	t.NoError(t.manager.Open(id))
	surface := t.factory.created()[0]
	t.waitSnapshots(surface, 1)

	t.registry.Start(id)
	t.scheduler.Advance(3 * time.Second)

	snapshots := t.waitSnapshots(surface, 5)
	ticks := snapshots[2:]
	t.Equal([]time.Duration{59 * time.Second, 58 * time.Second, 57 * time.Second}, []time.Duration{
		ticks[0].Remaining, ticks[1].Remaining, ticks[2].Remaining,
	})
	for _, snapshot := range ticks {
		t.True(snapshot.Running)
		t.False(snapshot.Initial)
	}
}

func (t *testManager) TestSurfaceCommandsReachRegistry() {
	id := t.create("Raid")
	t.NoError(t.manager.Open(id))
	surface := t.factory.created()[0]

	surface.inbox.Post(protocol.Command{Kind: protocol.CommandToggle, TimerID: id})
	t.Eventually(func() bool {
		state, _ := t.registry.State(id)
		return state == timekeeper.StateRunning
	}, time.Second, time.Millisecond)

	surface.inbox.Post(protocol.Command{Kind: protocol.CommandReset, TimerID: id})
	t.Eventually(func() bool {
		state, _ := t.registry.State(id)
		return state == timekeeper.StateIdle
	}, time.Second, time.Millisecond)
}

func (t *testManager) TestSetOpacityClamps() {
	id := t.create("Raid")
	t.NoError(t.manager.Open(id))
	surface := t.factory.created()[0]

	t.manager.HandleCommand(protocol.Command{Kind: protocol.CommandSetOpacity, TimerID: id, Value: 0.05})
	value, _ := t.manager.Opacity(id)
	t.Equal(MinOpacity, value)

	t.manager.HandleCommand(protocol.Command{Kind: protocol.CommandSetOpacity, TimerID: id, Value: 3})
	value, _ = t.manager.Opacity(id)
	t.Equal(MaxOpacity, value)

	t.manager.SetOpacity(id, 0.5)
	t.Eventually(func() bool {
		return len(surface.opacities()) == 4
	}, time.Second, time.Millisecond)
	t.Equal([]float64{DefaultOpacity, MinOpacity, MaxOpacity, 0.5}, surface.opacities())

	t.manager.SetOpacity("timer-missing", 0.5)
	_, found := t.manager.Opacity("timer-missing")
	t.False(found)
}

func (t *testManager) TestSetDefaultOpacity() {
	id := t.create("Raid")
	t.manager.SetDefaultOpacity(0.4)
	t.NoError(t.manager.Open(id))

	value, _ := t.manager.Opacity(id)
	t.Equal(0.4, value)
}

func (t *testManager) TestCloseCommand() {
	id := t.create("Raid")
	t.NoError(t.manager.Open(id))
	surface := t.factory.created()[0]

	surface.inbox.Post(protocol.Command{Kind: protocol.CommandClose, TimerID: id})
	t.Eventually(func() bool {
		return !t.manager.IsOpen(id)
	}, time.Second, time.Millisecond)
	t.Equal(1, surface.closeCount())

	t.manager.Close(id)
	t.Equal(1, surface.closeCount(), "closing twice is a no-op")

	t.registry.Start(id)
	t.scheduler.Advance(time.Second)
	state, _ := t.registry.State(id)
	t.Equal(timekeeper.StateRunning, state, "timer keeps running without a surface")
}

func (t *testManager) TestDeleteClosesSurface() {
	id := t.create("Raid")
	t.NoError(t.manager.Open(id))
	surface := t.factory.created()[0]

	t.registry.Delete(id)
	t.False(t.manager.IsOpen(id))
	t.Equal(1, surface.closeCount())

	t.manager.HandleCommand(protocol.Command{Kind: protocol.CommandToggle, TimerID: id})
	t.manager.HandleCommand(protocol.Command{Kind: protocol.CommandSetOpacity, TimerID: id, Value: 0.5})
	t.Equal(0, t.scheduler.Pending())
	t.False(t.manager.IsOpen(id))
	t.True(errors.Is(t.manager.Open(id), ErrUnknownTimer))
}

func (t *testManager) TestRegistryCloseCascades() {
	first := t.create("first")
	second := t.create("second")
	t.NoError(t.manager.Open(first))
	t.NoError(t.manager.Open(second))

	t.registry.Close()

	t.Equal(0, t.manager.Count())
	for _, surface := range t.factory.created() {
		t.Equal(1, surface.closeCount())
	}
}

func (t *testManager) TestActivate() {
	var activated int
	t.manager.SetActivateHandler(func() { activated++ })

	t.manager.HandleCommand(protocol.Command{Kind: protocol.CommandActivate})
	t.Equal(1, activated)

	id := t.create("Raid")
	t.manager.HandleCommand(protocol.Command{Kind: protocol.CommandActivate, TimerID: id})
	t.True(t.manager.IsOpen(id))
	t.Equal(1, activated)
}

func (t *testManager) TestIgnoredCommandsAreLogged() {
	var buffer bytes.Buffer
	t.manager.SetLogger(zerolog.New(&buffer).Level(zerolog.DebugLevel))

	t.manager.HandleCommand(protocol.Command{Kind: "teleport", TimerID: "timer-x"})
	t.manager.HandleCommand(protocol.Command{Kind: protocol.CommandActivate, TimerID: "timer-missing"})

	t.Contains(buffer.String(), `"command":"teleport"`)
	t.Contains(buffer.String(), "unknown command")
	t.Contains(buffer.String(), "activate ignored")
	t.Equal(0, t.manager.Count())
}

func (t *testManager) TestShutdown() {
	id := t.create("Raid")
	t.NoError(t.manager.Open(id))

	t.manager.Shutdown()
	t.Equal(0, t.manager.Count())
	t.True(errors.Is(t.manager.Open(id), ErrClosed))
}

func TestManager(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(testManager))
}

func TestClampOpacity(t *testing.T) {
	cases := map[float64]float64{
		0:    DefaultOpacity,
		0.1:  MinOpacity,
		0.2:  0.2,
		0.65: 0.65,
		1:    1,
		1.5:  MaxOpacity,
		-1:   MinOpacity,
	}
	for input, expected := range cases {
		if got := ClampOpacity(input); got != expected {
			t.Errorf("ClampOpacity(%v) = %v, want %v", input, got, expected)
		}
	}
}
