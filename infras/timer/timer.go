package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Handle identifies one scheduled callback.
type Handle uint64

// Timer runs callbacks at a wall-clock time. Callbacks run on their own goroutine.
type Timer interface {
	ScheduleAt(at time.Time, fn func()) Handle
	Cancel(handle Handle) bool
	Pending() int
	Stop()
}

type timerImpl struct {
	mu      sync.Mutex
	nextID  atomic.Uint64
	timers  map[Handle]*time.Timer
	stopped bool
	now     func() time.Time
}

func New() Timer {
	return &timerImpl{
		timers: map[Handle]*time.Timer{},
		now:    time.Now,
	}
}

// ScheduleAt registers fn to run at at. A time in the past runs fn right away.
// After Stop, nothing is scheduled and the zero handle is returned.
func (t *timerImpl) ScheduleAt(at time.Time, fn func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		log.Warn().Time("at", at).Msg("timer stopped, callback not scheduled")

		return 0
	}

	handle := Handle(t.nextID.Add(1))
	delay := max(at.Sub(t.now()), 0)

	t.timers[handle] = time.AfterFunc(delay, func() {
		if !t.release(handle) {
			return
		}

		fn()
	})

	return handle
}

// release drops the handle and reports whether the callback still owns it.
func (t *timerImpl) release(handle Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.timers[handle]; !ok {
		return false
	}

	delete(t.timers, handle)

	return true
}

func (t *timerImpl) Cancel(handle Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	tm, ok := t.timers[handle]
	if !ok {
		return false
	}

	delete(t.timers, handle)
	tm.Stop()

	return true
}

func (t *timerImpl) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.timers)
}

// Stop cancels everything still pending.
func (t *timerImpl) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for handle, tm := range t.timers {
		tm.Stop()
		delete(t.timers, handle)
	}

	t.stopped = true
}

// Clock returns the current time. Injected where decisions depend on now.
type Clock func() time.Time

func NewClock() Clock {
	return time.Now
}
