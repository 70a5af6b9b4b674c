package npc

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestApplyClampsAndDerivesMood(t *testing.T) {
	rel := Relationship{Player: "han", NPC: "Greedo", Trust: 90, Fear: 95}

	next, ev, err := Apply(rel, Interaction{
		Type: "threat", Description: "drew a blaster", TrustDelta: 50, FearDelta: 20, Timestamp: now,
	})
	if err != nil {
		t.Fatal(err)
	}
	if next.Trust != 100 {
		t.Errorf("trust = %d, want 100 (clamped)", next.Trust)
	}
	if next.Fear != 100 {
		t.Errorf("fear = %d, want 100 (clamped)", next.Fear)
	}
	if next.Mood != "terrified" {
		t.Errorf("mood = %q, want terrified (fear dominates trust)", next.Mood)
	}
	if len(next.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(next.History))
	}
	if ev.NPC != "Greedo" || ev.Player != "han" {
		t.Errorf("event refs: player %q npc %q", ev.Player, ev.NPC)
	}

	// Negative deltas clamp at the other bounds.
	next, _, err = Apply(next, Interaction{
		Type: "betrayal", TrustDelta: -300, FearDelta: -300, Timestamp: now,
	})
	if err != nil {
		t.Fatal(err)
	}
	if next.Trust != -100 || next.Fear != 0 {
		t.Errorf("trust %d fear %d, want -100 and 0", next.Trust, next.Fear)
	}
}

func TestApplyDoesNotShareHistory(t *testing.T) {
	rel := Relationship{Player: "han", NPC: "Greedo"}
	one, _, err := Apply(rel, Interaction{Type: "meeting", Timestamp: now})
	if err != nil {
		t.Fatal(err)
	}
	two, _, err := Apply(one, Interaction{Type: "deal", Timestamp: now})
	if err != nil {
		t.Fatal(err)
	}
	if len(one.History) != 1 {
		t.Errorf("earlier snapshot history grew to %d", len(one.History))
	}
	if len(two.History) != 2 {
		t.Errorf("history length = %d, want 2", len(two.History))
	}
}

func TestMoodFor(t *testing.T) {
	tests := []struct {
		trust, fear int
		want        string
	}{
		{0, 80, "terrified"},
		{90, 85, "terrified"},
		{0, 50, "fearful"},
		{-60, 10, "hostile"},
		{-10, 0, "wary"},
		{60, 0, "devoted"},
		{20, 0, "warm"},
		{0, 0, "neutral"},
		{19, 49, "neutral"},
	}
	for _, tt := range tests {
		if got := MoodFor(tt.trust, tt.fear); got != tt.want {
			t.Errorf("MoodFor(%d, %d) = %q, want %q", tt.trust, tt.fear, got, tt.want)
		}
	}
}

func TestHistoryPaging(t *testing.T) {
	rel := Relationship{Player: "han", NPC: "Greedo"}
	for i := 0; i < 25; i++ {
		var err error
		rel, _, err = Apply(rel, Interaction{
			Type:        "visit",
			Description: fmt.Sprintf("visit %d", i),
			Timestamp:   now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	page0 := History(rel, 0, 10)
	if len(page0) != 10 {
		t.Fatalf("page 0 length = %d, want 10", len(page0))
	}
	if page0[0].Description != "visit 24" {
		t.Errorf("page 0 starts with %q, want the most recent", page0[0].Description)
	}
	if page0[9].Description != "visit 15" {
		t.Errorf("page 0 ends with %q, want visit 15", page0[9].Description)
	}

	page2 := History(rel, 2, 10)
	if len(page2) != 5 {
		t.Errorf("page 2 length = %d, want 5 (partial tail)", len(page2))
	}
	if got := History(rel, 3, 10); got != nil {
		t.Errorf("page past the end = %v, want nil", got)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry([]string{"Greedo", "Watto"})
	if err := reg.Check("Greedo"); err != nil {
		t.Errorf("known npc rejected: %v", err)
	}
	if err := reg.Check("Jabba"); !errors.Is(err, ErrUnknownNPC) {
		t.Errorf("err = %v, want ErrUnknownNPC", err)
	}

	// Nil registry accepts everyone.
	var nilReg *Registry
	if err := nilReg.Check("anyone"); err != nil {
		t.Errorf("nil registry rejected: %v", err)
	}
}
