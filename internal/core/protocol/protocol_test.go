package protocol

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recorder struct {
	mu    sync.Mutex
	items []int
}

func (r *recorder) add(item int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.items...)
}

func TestQueueDeliversInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	queue := NewQueue(DefaultQueueSize, rec.add)

	for i := 0; i < 20; i++ {
		require.True(t, queue.Post(i))
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 20 }, time.Second, time.Millisecond)
	for i, item := range rec.snapshot() {
		assert.Equal(t, i, item)
	}

	queue.Close()
	queue.Wait()
}

func TestQueueDropsWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	queue := NewQueue(1, func(int) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})

	require.True(t, queue.Post(1))
	<-started
	require.True(t, queue.Post(2))
	assert.False(t, queue.Post(3), "buffer of one is occupied")

	close(release)
	queue.Close()
	queue.Wait()
}

func TestQueuePostAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	queue := NewQueue(4, rec.add)
	queue.Close()
	queue.Close()
	queue.Wait()

	assert.False(t, queue.Post(1))
	assert.Empty(t, rec.snapshot())
}

func TestCommandKindAffectsClock(t *testing.T) {
	for _, kind := range []CommandKind{CommandStart, CommandPause, CommandReset, CommandToggle} {
		assert.True(t, kind.AffectsClock(), kind)
	}
	for _, kind := range []CommandKind{CommandSetOpacity, CommandClose, CommandActivate} {
		assert.False(t, kind.AffectsClock(), kind)
	}
}

func TestCodecStream(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)

	require.NoError(t, encoder.Encode(Snapshot{
		TimerID:         "timer-a",
		Remaining:       4500 * time.Millisecond,
		Running:         true,
		Initial:         true,
		Name:            "Boss respawn",
		FlashOnComplete: true,
	}))
	require.NoError(t, encoder.Encode(Command{Kind: CommandToggle, TimerID: "timer-a"}))
	require.NoError(t, encoder.Encode(Opacity{TimerID: "timer-a", Value: 0.5}))

	assert.Contains(t, buffer.String(), `"remaining_ms":4500`)

	decoder := NewDecoder(&buffer)

	first, err := decoder.Decode()
	require.NoError(t, err)
	snapshot, ok := first.(Snapshot)
	require.True(t, ok)
	assert.Equal(t, 4500*time.Millisecond, snapshot.Remaining)
	assert.Equal(t, "Boss respawn", snapshot.Name)
	assert.True(t, snapshot.Initial)

	second, err := decoder.Decode()
	require.NoError(t, err)
	assert.Equal(t, Command{Kind: CommandToggle, TimerID: "timer-a"}, second)

	third, err := decoder.Decode()
	require.NoError(t, err)
	assert.Equal(t, Opacity{TimerID: "timer-a", Value: 0.5}, third)

	_, err = decoder.Decode()
	assert.Equal(t, io.EOF, err)
}

func TestCodecRejectsUnknown(t *testing.T) {
	err := NewEncoder(io.Discard).Encode("hello")
	assert.True(t, errors.Is(err, ErrUnknownMessage))

	_, err = NewDecoder(strings.NewReader(`{"v":1,"type":"ping"}` + "\n")).Decode()
	assert.True(t, errors.Is(err, ErrUnknownMessage))

	_, err = NewDecoder(strings.NewReader("not json\n")).Decode()
	assert.Error(t, err)
}
