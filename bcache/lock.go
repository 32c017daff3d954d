package bcache

import "sync"

// slotLock is a per-slot mutual-exclusion lock with waiters, adapted from
// a sharded map[addr]*lockState pattern (each entry guarded by its own
// sync.Cond) where lock state is normally allocated lazily per flat
// address and cleaned up once uncontended. A cache slot already has a
// fixed, bounded lifetime (the lifetime of the pool entry), so here the
// lock state lives inline in the slot instead of in a side map.
type slotLock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	held    bool
	waiters uint64
}

func newSlotLock() *slotLock {
	l := &slotLock{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// acquire blocks until the slot's lock is free, then takes it. This is what
// gives bread its locked-and-reference-held contract.
func (l *slotLock) acquire() {
	l.mu.Lock()
	for l.held {
		l.waiters++
		l.cond.Wait()
		l.waiters--
	}
	l.held = true
	l.mu.Unlock()
}

// release frees the slot's lock, waking one waiter if any (there is no
// reason to wake more than one: slotLock is exclusive, not shared like the
// log's wait channel).
func (l *slotLock) release() {
	l.mu.Lock()
	l.held = false
	if l.waiters > 0 {
		l.cond.Signal()
	}
	l.mu.Unlock()
}
