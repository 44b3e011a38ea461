package pool

import (
	"sync"
	"sync/atomic"
)

// Idle event states. SHUTDOWN is absorbing: once reached, wait always
// returns immediately and no further transition occurs.
const (
	idleEmpty uint32 = iota
	idleWaiting
	idleNotified
	idleShutdown
)

// idleEvent is a futex-style parking point: a worker with no work parks
// here instead of spinning. The reference design parks directly on a
// raw futex syscall; this package has no verified futex wrapper in its
// dependency surface; sync.Cond's Signal/Broadcast distinction maps
// exactly onto the spec's wake-one (notify) versus wake-all (shutdown)
// requirement, and the Go runtime already takes the parked goroutine off
// its OS thread, so the parking itself is just as cheap.
type idleEvent struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state atomic.Uint32
}

func newIdleEvent() *idleEvent {
	e := &idleEvent{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// wait parks the calling worker until a notify or a shutdown; if a notify
// is already pending (or shutdown already happened) it returns
// immediately without parking. acquireWith
// tracks what state a NOTIFIED event collapses back to, matching the
// spec's cascading-wake guarantee: the first iteration collapses to
// EMPTY, every iteration after an actual park collapses to WAITING so a
// late sleeper that missed the original notify still observes one.
func (e *idleEvent) wait() {
	acquireWith := idleEmpty
	for {
		cur := e.state.Load()
		switch cur {
		case idleShutdown:
			return
		case idleNotified:
			if e.state.CompareAndSwap(cur, acquireWith) {
				return
			}
		case idleEmpty:
			e.state.CompareAndSwap(idleEmpty, idleWaiting)
		case idleWaiting:
			e.parkUntilChanged(idleWaiting)
			acquireWith = idleWaiting
		}
	}
}

func (e *idleEvent) parkUntilChanged(observed uint32) {
	e.mu.Lock()
	for e.state.Load() == observed {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// notify wakes at most one parked worker.
func (e *idleEvent) notify() {
	prev := e.state.Swap(idleNotified)
	if prev == idleWaiting {
		e.mu.Lock()
		e.cond.Signal()
		e.mu.Unlock()
	}
}

// shutdown puts the event into its absorbing state and wakes every
// parked worker.
func (e *idleEvent) shutdown() {
	prev := e.state.Swap(idleShutdown)
	if prev == idleWaiting {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	}
}
