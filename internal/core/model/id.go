package model

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

const timerIDPrefix = "timer-"

var timerIDs = newIDPool()

type idPool struct {
	entropy io.Reader
	sync.Mutex
}

func newIDPool() *idPool {
	return &idPool{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (pool *idPool) next(now time.Time) string {
	pool.Lock()
	defer pool.Unlock()

	return timerIDPrefix + strings.ToLower(ulid.MustNew(ulid.Timestamp(now), pool.entropy).String())
}

// NewTimerID returns a unique, time-ordered timer identifier.
func NewTimerID() string {
	return timerIDs.next(time.Now())
}
