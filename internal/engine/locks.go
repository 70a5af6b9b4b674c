package engine

import (
	"fmt"
	"sort"
	"time"
)

// domain ranks the lock ordering. Every operation acquires its locks in
// ascending (domain, key) order, so no two operations can deadlock.
type domain int

const (
	domAlignment domain = iota
	domThreat
	domRelationship
	domFaction
	domQuest
)

type lockKey struct {
	dom domain
	key string
}

func (k lockKey) String() string {
	return fmt.Sprintf("%d/%s", k.dom, k.key)
}

// lockTable hands out one semaphore per entity key. Semaphores are never
// removed; the entity population is small and append-only.
type lockTable struct {
	wait time.Duration

	mu   chan struct{} // guards sems
	sems map[lockKey]chan struct{}
}

func newLockTable(wait time.Duration) *lockTable {
	t := &lockTable{
		wait: wait,
		mu:   make(chan struct{}, 1),
		sems: make(map[lockKey]chan struct{}),
	}
	t.mu <- struct{}{}
	return t
}

func (t *lockTable) sem(k lockKey) chan struct{} {
	<-t.mu
	s, ok := t.sems[k]
	if !ok {
		s = make(chan struct{}, 1)
		t.sems[k] = s
	}
	t.mu <- struct{}{}
	return s
}

// acquire takes every key in canonical order, sharing one bounded wait across
// the whole set. On timeout it releases what it took and returns ErrBusy.
// The returned release function is idempotent per acquisition.
func (t *lockTable) acquire(keys []lockKey) (func(), error) {
	ordered := make([]lockKey, 0, len(keys))
	seen := make(map[lockKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			ordered = append(ordered, k)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].dom != ordered[j].dom {
			return ordered[i].dom < ordered[j].dom
		}
		return ordered[i].key < ordered[j].key
	})

	timer := time.NewTimer(t.wait)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, k := range ordered {
		s := t.sem(k)
		select {
		case s <- struct{}{}:
			held = append(held, s)
		case <-timer.C:
			release()
			return nil, fmt.Errorf("%w: lock %s held too long", ErrBusy, k)
		}
	}
	return release, nil
}
