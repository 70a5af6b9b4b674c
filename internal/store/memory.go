package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

// Memory is an in-memory Store for tests and ephemeral worlds. Entity state
// round-trips through JSON so behavior matches the SQLite store.
type Memory struct {
	mu       sync.Mutex
	entities map[Kind]map[string]json.RawMessage
	events   []event.Event
	seq      uint64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entities: make(map[Kind]map[string]json.RawMessage)}
}

// Get unmarshals the state for (kind, key) into out.
func (m *Memory) Get(kind Kind, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.entities[kind][key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", kind, key, err)
	}
	return true, nil
}

// Keys lists all keys stored under kind.
func (m *Memory) Keys(kind Kind) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entities[kind]))
	for k := range m.entities[kind] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Apply commits the batch atomically: all puts are staged before anything
// becomes visible, so an encode failure leaves the store untouched.
func (m *Memory) Apply(b *Batch) ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := make([]Put, 0, len(b.Puts))
	encoded := make([]json.RawMessage, 0, len(b.Puts))
	for _, p := range b.Puts {
		raw, err := json.Marshal(p.State)
		if err != nil {
			return nil, fmt.Errorf("encode %s/%s: %w", p.Kind, p.Key, err)
		}
		staged = append(staged, p)
		encoded = append(encoded, raw)
	}

	for i, p := range staged {
		if m.entities[p.Kind] == nil {
			m.entities[p.Kind] = make(map[string]json.RawMessage)
		}
		m.entities[p.Kind][p.Key] = encoded[i]
	}

	committed := make([]event.Event, 0, len(b.Events))
	for _, e := range b.Events {
		m.seq++
		e.Seq = m.seq
		m.events = append(m.events, e)
		committed = append(committed, e)
	}
	return committed, nil
}

// Events returns events matching the filter, oldest first.
func (m *Memory) Events(f event.Filter) ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []event.Event
	for _, e := range m.events {
		if !f.Match(e) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// EventCount returns the total number of committed events.
func (m *Memory) EventCount() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
