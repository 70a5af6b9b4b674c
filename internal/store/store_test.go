package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// The two implementations must be interchangeable, so the contract tests run
// against both.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{"memory": NewMemory(), "sqlite": sq}
}

type testState struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestApplyAndGet(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var b Batch
			b.Append(KindAlignment, "han", testState{Name: "han", Score: 42})
			b.Log(event.Event{Timestamp: now, Category: event.AlignmentShift, Description: "first", Player: "han"})
			b.Log(event.Event{Timestamp: now, Category: event.FactionAction, Description: "second", Faction: "hegemony"})

			events, err := st.Apply(&b)
			if err != nil {
				t.Fatal(err)
			}
			if len(events) != 2 {
				t.Fatalf("committed events = %d, want 2", len(events))
			}
			if events[0].Seq != 1 || events[1].Seq != 2 {
				t.Errorf("seqs = %d, %d, want 1, 2", events[0].Seq, events[1].Seq)
			}

			var got testState
			ok, err := st.Get(KindAlignment, "han", &got)
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if got.Score != 42 {
				t.Errorf("score = %d, want 42", got.Score)
			}

			// Missing records report absence without error.
			ok, err = st.Get(KindAlignment, "ghost", &got)
			if err != nil || ok {
				t.Errorf("missing key: ok=%v err=%v", ok, err)
			}

			keys, err := st.Keys(KindAlignment)
			if err != nil {
				t.Fatal(err)
			}
			if len(keys) != 1 || keys[0] != "han" {
				t.Errorf("keys = %v, want [han]", keys)
			}

			count, err := st.EventCount()
			if err != nil {
				t.Fatal(err)
			}
			if count != 2 {
				t.Errorf("event count = %d, want 2", count)
			}
		})
	}
}

func TestApplyOverwrites(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var b1 Batch
			b1.Append(KindThreat, "han", testState{Score: 1})
			if _, err := st.Apply(&b1); err != nil {
				t.Fatal(err)
			}
			var b2 Batch
			b2.Append(KindThreat, "han", testState{Score: 2})
			if _, err := st.Apply(&b2); err != nil {
				t.Fatal(err)
			}

			var got testState
			if _, err := st.Get(KindThreat, "han", &got); err != nil {
				t.Fatal(err)
			}
			if got.Score != 2 {
				t.Errorf("score = %d, want latest write", got.Score)
			}
		})
	}
}

func TestApplyIsAtomic(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var b Batch
			b.Append(KindFaction, "good", testState{Score: 1})
			b.Append(KindFaction, "bad", make(chan int)) // not JSON-marshalable
			b.Log(event.Event{Timestamp: now, Category: event.FactionAction, Description: "never lands"})

			if _, err := st.Apply(&b); err == nil {
				t.Fatal("expected encode error")
			}

			var got testState
			ok, _ := st.Get(KindFaction, "good", &got)
			if ok {
				t.Error("partial batch became visible")
			}
			count, err := st.EventCount()
			if err != nil {
				t.Fatal(err)
			}
			if count != 0 {
				t.Errorf("event count = %d, want 0 after failed batch", count)
			}
		})
	}
}

func TestEventsFilter(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var b Batch
			b.Log(event.Event{Timestamp: now, Category: event.AlignmentShift, Description: "a", Player: "han"})
			b.Log(event.Event{Timestamp: now.Add(time.Hour), Category: event.FactionAction, Description: "b", Player: "han", Faction: "hegemony"})
			b.Log(event.Event{Timestamp: now.Add(2 * time.Hour), Category: event.FactionAction, Description: "c", Player: "luke", Faction: "hegemony"})
			if _, err := st.Apply(&b); err != nil {
				t.Fatal(err)
			}

			byPlayer, err := st.Events(event.Filter{Player: "han"})
			if err != nil {
				t.Fatal(err)
			}
			if len(byPlayer) != 2 {
				t.Fatalf("player filter = %d events, want 2", len(byPlayer))
			}
			if byPlayer[0].Seq >= byPlayer[1].Seq {
				t.Error("events not in sequence order")
			}

			byFaction, err := st.Events(event.Filter{Faction: "hegemony", Category: event.FactionAction})
			if err != nil {
				t.Fatal(err)
			}
			if len(byFaction) != 2 {
				t.Fatalf("faction filter = %d events, want 2", len(byFaction))
			}

			since, err := st.Events(event.Filter{Since: now.Add(90 * time.Minute)})
			if err != nil {
				t.Fatal(err)
			}
			if len(since) != 1 || since[0].Description != "c" {
				t.Errorf("since filter = %+v, want only the last event", since)
			}

			limited, err := st.Events(event.Filter{Limit: 1})
			if err != nil {
				t.Fatal(err)
			}
			if len(limited) != 1 {
				t.Errorf("limit filter = %d events, want 1", len(limited))
			}
		})
	}
}
