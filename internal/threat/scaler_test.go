package threat

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestTierBands(t *testing.T) {
	tests := []struct {
		notoriety float64
		want      Tier
	}{
		{0, Low},
		{10, Low},
		{10.5, Guarded},
		{30, Guarded},
		{31, Elevated},
		{60, Elevated},
		{60.1, Severe},
		{100, Severe},
		{100.5, Critical},
		{5000, Critical},
	}
	for _, tt := range tests {
		if got := TierFor(tt.notoriety); got != tt.want {
			t.Errorf("TierFor(%v) = %v, want %v", tt.notoriety, got, tt.want)
		}
	}
}

func TestRecordRejectsNegativeSeverity(t *testing.T) {
	cur := Level{Player: "boba", Notoriety: 12}
	got, err := Record(cur, -1, now)
	if !errors.Is(err, ErrInvalidDelta) {
		t.Fatalf("err = %v, want ErrInvalidDelta", err)
	}
	if got != cur {
		t.Error("failed record must return the input state unchanged")
	}
}

func TestRecordBountyThreshold(t *testing.T) {
	cur := Level{Player: "boba"}

	// Below the threshold notoriety grows but no bounty accrues.
	lvl, err := Record(cur, 4, now)
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Notoriety != 4 || lvl.Bounty != 0 {
		t.Errorf("severity 4: notoriety %v bounty %d, want 4 and 0", lvl.Notoriety, lvl.Bounty)
	}

	lvl, err = Record(lvl, 8, now)
	if err != nil {
		t.Fatal(err)
	}
	if lvl.Notoriety != 12 {
		t.Errorf("notoriety = %v, want 12", lvl.Notoriety)
	}
	if lvl.Bounty != 8*500 {
		t.Errorf("bounty = %d, want %d", lvl.Bounty, 8*500)
	}
	if lvl.LastAction != now {
		t.Error("last action not updated")
	}
}

func TestDecay(t *testing.T) {
	lvl := Level{Player: "han", Notoriety: 10, Bounty: 75}

	got := Decay(lvl, 3*time.Hour)
	if got.Notoriety != 7 {
		t.Errorf("notoriety = %v, want 7", got.Notoriety)
	}
	if got.Bounty != 0 {
		t.Errorf("bounty = %d, want 0 (floored)", got.Bounty)
	}

	// Long idle periods floor at zero, never go negative.
	got = Decay(got, 1000*time.Hour)
	if got.Notoriety != 0 || got.Bounty != 0 {
		t.Errorf("after long decay: notoriety %v bounty %d, want zeros", got.Notoriety, got.Bounty)
	}

	// Zero or negative elapsed is a no-op.
	if Decay(lvl, 0) != lvl {
		t.Error("zero elapsed should not change the level")
	}
	if Decay(lvl, -time.Hour) != lvl {
		t.Error("negative elapsed should not change the level")
	}
}
