package alignment

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestDarkAccumulation(t *testing.T) {
	a := Alignment{Player: "han"}

	for i := 0; i < 3; i++ {
		var err error
		a, _, err = Apply(a, Input{Type: Dark, Shift: -30, Description: "betrayal"}, now)
		if err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}

	if a.DarkPoints != 90 {
		t.Errorf("dark points = %d, want 90", a.DarkPoints)
	}
	if got := a.Net(); got != -90 {
		t.Errorf("net = %d, want -90", got)
	}
	if got := a.Tier(); got != "Dark Side Adept" {
		t.Errorf("tier = %q, want Dark Side Adept", got)
	}
	if a.CorruptionLevel != 4 {
		t.Errorf("corruption = %d, want 4", a.CorruptionLevel)
	}

	// A fourth action pushes past the clamp.
	a, _, err := Apply(a, Input{Type: Dark, Shift: -30, Description: "massacre"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Net(); got != -100 {
		t.Errorf("net after fourth action = %d, want -100", got)
	}
}

func TestSignCoercion(t *testing.T) {
	a, ev, err := Apply(Alignment{Player: "luke"}, Input{Type: Light, Shift: -10, Description: "rescue"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if a.LightPoints != 10 {
		t.Errorf("light points = %d, want 10", a.LightPoints)
	}
	if a.DarkPoints != 0 {
		t.Errorf("dark points = %d, want 0", a.DarkPoints)
	}
	if !strings.Contains(ev.Description, "shift sign coerced") {
		t.Errorf("event should note coercion, got %q", ev.Description)
	}
}

func TestInvalidActionType(t *testing.T) {
	cur := Alignment{Player: "luke", LightPoints: 5}
	got, _, err := Apply(cur, Input{Type: "chaotic", Shift: 10}, now)
	if !errors.Is(err, ErrInvalidActionType) {
		t.Fatalf("err = %v, want ErrInvalidActionType", err)
	}
	if got != cur {
		t.Error("failed apply must return the input state unchanged")
	}
}

func TestNeutralLogsWithoutPoints(t *testing.T) {
	a, ev, err := Apply(Alignment{Player: "lando"}, Input{Type: Neutral, Shift: 5, Description: "traded parts"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if a.LightPoints != 0 || a.DarkPoints != 0 {
		t.Errorf("neutral action moved points: light %d dark %d", a.LightPoints, a.DarkPoints)
	}
	if ev.Description == "" {
		t.Error("neutral action should still produce an event")
	}
	if a.LastEvent != now {
		t.Error("last event time not updated")
	}
}

func TestTierBands(t *testing.T) {
	tests := []struct {
		light, dark int
		want        string
	}{
		{60, 0, "Light Side Devotee"},
		{51, 0, "Light Side Devotee"},
		{50, 0, "Light Side Leaning"},
		{10, 0, "Light Side Leaning"},
		{9, 0, "Balanced"},
		{0, 0, "Balanced"},
		{0, 10, "Balanced"},
		{0, 11, "Dark Side Leaning"},
		{0, 50, "Dark Side Leaning"},
		{0, 51, "Dark Side Adept"},
		{0, 200, "Dark Side Adept"},
	}
	for _, tt := range tests {
		a := Alignment{LightPoints: tt.light, DarkPoints: tt.dark}
		if got := a.Tier(); got != tt.want {
			t.Errorf("light=%d dark=%d: tier = %q, want %q", tt.light, tt.dark, got, tt.want)
		}
	}
}

func TestCorruptionNeverDecreases(t *testing.T) {
	a := Alignment{Player: "anakin", DarkPoints: 120, CorruptionLevel: 7}

	// Light actions do not cleanse corruption.
	for i := 0; i < 10; i++ {
		var err error
		a, _, err = Apply(a, Input{Type: Light, Shift: 20, Description: "redemption attempt"}, now)
		if err != nil {
			t.Fatal(err)
		}
	}
	if a.CorruptionLevel != 7 {
		t.Errorf("corruption = %d, want 7 (sticky)", a.CorruptionLevel)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	cur := Alignment{Player: "chewie", LightPoints: 3, DarkPoints: 2}
	snapshot := cur
	if _, _, err := Apply(cur, Input{Type: Dark, Shift: 9, Description: "smuggling"}, now); err != nil {
		t.Fatal(err)
	}
	if cur != snapshot {
		t.Error("Apply mutated its input")
	}
}
