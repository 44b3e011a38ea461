package pool

import "sync/atomic"

// syncState is one of the four states the pool-wide coordination word
// tracks. shutdown is absorbing.
type syncState uint32

const (
	statePending syncState = iota
	stateSignaled
	stateWaking
	stateShutdown
)

// Sync packs idle count, spawned count, a notified flag, and the
// current state into one 32-bit word, matching the reference layout
// exactly: unlike the overflow queue, nothing here is a pointer, so
// there is no garbage-collection hazard in keeping it a single packed
// integer, and splitting it into separate atomics would reopen the
// races the packing exists to close (idle/spawned/state must all be
// visible as of the same CAS).
//
//	bits  0–13: idle    (14 bits)
//	bits 14–27: spawned (14 bits)
//	bit     28: notified
//	bits 29–30: state
const (
	syncIdleBits    = 14
	syncSpawnedBits = 14

	syncIdleShift    = 0
	syncSpawnedShift = syncIdleShift + syncIdleBits
	syncNotifiedBit  = syncSpawnedShift + syncSpawnedBits
	syncStateShift   = syncNotifiedBit + 1

	syncIdleMask    = uint32(1<<syncIdleBits) - 1
	syncSpawnedMask = uint32(1<<syncSpawnedBits) - 1
	syncStateMask   = uint32(0b11)

	syncMaxCount = uint32(1<<syncIdleBits) - 1
)

type syncWord struct {
	idle     uint32
	spawned  uint32
	notified bool
	state    syncState
}

func decodeSync(v uint32) syncWord {
	return syncWord{
		idle:     (v >> syncIdleShift) & syncIdleMask,
		spawned:  (v >> syncSpawnedShift) & syncSpawnedMask,
		notified: (v>>syncNotifiedBit)&1 != 0,
		state:    syncState((v >> syncStateShift) & syncStateMask),
	}
}

func (s syncWord) encode() uint32 {
	var v uint32
	v |= (s.idle & syncIdleMask) << syncIdleShift
	v |= (s.spawned & syncSpawnedMask) << syncSpawnedShift
	if s.notified {
		v |= 1 << syncNotifiedBit
	}
	v |= (uint32(s.state) & syncStateMask) << syncStateShift
	return v
}

// syncCell is the atomic home of the packed word.
type syncCell struct {
	v atomic.Uint32
}

func (c *syncCell) load() syncWord           { return decodeSync(c.v.Load()) }
func (c *syncCell) compareAndSwap(old, next syncWord) bool {
	return c.v.CompareAndSwap(old.encode(), next.encode())
}

// notify implements the Sync CAS-loop notification algorithm. isWaking
// indicates the caller currently holds the waking token (it is a worker
// that just popped/executed work and is about to hand the token off or
// keep it). It spawns a new worker via spawn when growing the pool, and
// reports spawn failures to unregisterFailed so the spawned count is
// reversed without surfacing an error to the submitter.
func (c *syncCell) notify(isWaking bool, maxThreads uint32, idleEvt *idleEvent, spawn func() error, unregisterFailed func()) {
	for {
		old := c.load()
		if old.state == stateShutdown {
			return
		}
		canWake := isWaking || old.state == statePending

		if canWake && old.idle > 0 {
			next := old
			next.state = stateSignaled
			next.notified = true
			if c.v.CompareAndSwap(old.encode(), next.encode()) {
				idleEvt.notify()
				return
			}
			continue
		}

		if canWake && old.spawned < maxThreads {
			next := old
			next.state = stateSignaled
			next.notified = true
			next.spawned++
			if c.v.CompareAndSwap(old.encode(), next.encode()) {
				if err := spawn(); err != nil {
					unregisterFailed()
				}
				return
			}
			continue
		}

		if isWaking {
			next := old
			next.state = statePending
			next.notified = true
			if c.v.CompareAndSwap(old.encode(), next.encode()) {
				return
			}
			continue
		}

		// Not notified and nothing this call can legally change; or
		// already notified, in which case there is nothing to add.
		return
	}
}

// waitOutcome reports how a wait call resolved.
type waitOutcome int

const (
	waitWoken waitOutcome = iota
	waitShutdown
)

// wait implements the Sync CAS-loop wait algorithm for a worker that has
// no local work left. It returns whether the caller now holds the
// waking token.
func (c *syncCell) wait(isWaking bool, idleEvt *idleEvent) (waitOutcome, bool) {
	markedIdle := false
	for {
		old := c.load()
		if old.state == stateShutdown {
			return waitShutdown, false
		}

		if old.notified {
			next := old
			next.notified = false
			if markedIdle {
				next.idle--
			}
			promoted := next.state == stateSignaled
			if promoted {
				next.state = stateWaking
			}
			if c.v.CompareAndSwap(old.encode(), next.encode()) {
				return waitWoken, promoted
			}
			continue
		}

		if !markedIdle {
			next := old
			next.idle++
			if isWaking {
				next.state = statePending
			}
			if c.v.CompareAndSwap(old.encode(), next.encode()) {
				markedIdle = true
			}
			continue
		}

		idleEvt.wait()
	}
}

// shutdown transitions Sync to its absorbing shutdown state and wakes
// every parked worker via the broadcast variant of the idle event. It
// returns the spawned count as of the transition, so a caller with no
// workers ever spawned can tell immediately that join has nothing to
// wait for.
func (c *syncCell) shutdown(idleEvt *idleEvent) uint32 {
	for {
		old := c.load()
		if old.state == stateShutdown {
			return old.spawned
		}
		next := syncWord{
			idle:     0,
			spawned:  old.spawned,
			notified: true,
			state:    stateShutdown,
		}
		if c.v.CompareAndSwap(old.encode(), next.encode()) {
			idleEvt.shutdown()
			return old.spawned
		}
	}
}
