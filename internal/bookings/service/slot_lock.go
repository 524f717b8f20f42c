package service

import (
	"context"
	"sync"
)

// slotLocks serializes writes that claim the same service slot. Slots are
// held as one-token channels so waiting respects the request context.
type slotLocks struct {
	mu    sync.Mutex
	slots map[string]*slotLock
}

type slotLock struct {
	token chan struct{}
	refs  int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{slots: make(map[string]*slotLock)}
}

func slotKey(serviceID, date, at string) string {
	return serviceID + "|" + date + "|" + at
}

// acquire blocks until key is free or ctx is done. The returned release
// must be called exactly once.
func (l *slotLocks) acquire(ctx context.Context, key string) (release func(), err error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &slotLock{token: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.token <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, slot)
		return nil, ctx.Err()
	}

	return func() {
		<-slot.token
		l.drop(key, slot)
	}, nil
}

func (l *slotLocks) drop(key string, slot *slotLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *slotLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
