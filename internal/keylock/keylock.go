// Package keylock serializes work per key without a global lock. Each key
// owns a one-slot semaphore that exists only while someone holds or waits
// for it, so unrelated keys never contend.
package keylock

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/fx"
)

var Module = fx.Module("keylock",
	fx.Provide(New),
)

func UserKey(userID string) string {
	return "user:" + userID
}

func ChargerKey(chargerID string) string {
	return "charger:" + chargerID
}

type slot struct {
	sem  chan struct{}
	refs int
}

// Locker is an arena of per-key locks.
type Locker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func New() *Locker {
	return &Locker{slots: make(map[string]*slot)}
}

// Lock blocks until key is free or ctx is done. The returned func releases
// the key and must be called exactly once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	s := l.acquireSlot(key)
	select {
	case s.sem <- struct{}{}:
		return func() { l.release(key, s) }, nil
	case <-ctx.Done():
		l.releaseSlot(key, s)
		return nil, ctx.Err()
	}
}

// LockAll locks every distinct key in sorted order, so two callers locking
// overlapping key sets can never deadlock.
func (l *Locker) LockAll(ctx context.Context, keys ...string) (func(), error) {
	ordered := dedupe(keys)
	unlocks := make([]func(), 0, len(ordered))
	unlockAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, key := range ordered {
		unlock, err := l.Lock(ctx, key)
		if err != nil {
			unlockAll()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return unlockAll, nil
}

// Held reports how many keys currently have holders or waiters.
func (l *Locker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *Locker) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Locker) release(key string, s *slot) {
	<-s.sem
	l.releaseSlot(key, s)
}

func (l *Locker) releaseSlot(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
