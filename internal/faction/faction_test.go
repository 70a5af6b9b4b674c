package faction

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newState(id string, resources int) State {
	return State{
		ID:        id,
		Name:      strings.ToUpper(id[:1]) + id[1:],
		Resources: resources,
		Territory: map[string]bool{},
		Hostility: map[string]int{},
		Awareness: map[string]int{},
	}
}

func TestUpdateAwareness(t *testing.T) {
	st := newState("hegemony", 1000)

	next, ev, err := UpdateAwareness(st, "han", 30, 20, "shot a patrol", now)
	if err != nil {
		t.Fatal(err)
	}
	if next.Awareness["han"] != 30 || next.Hostility["han"] != 20 {
		t.Errorf("awareness %d hostility %d, want 30 and 20", next.Awareness["han"], next.Hostility["han"])
	}
	if strings.Contains(ev.Description, "priority target") {
		t.Error("pursuit note before thresholds crossed")
	}
	if len(st.Awareness) != 0 {
		t.Error("UpdateAwareness mutated its input")
	}

	// Crossing both pursuit thresholds adds the hunt note.
	next, ev, err = UpdateAwareness(next, "han", 40, 20, "raided a convoy", now)
	if err != nil {
		t.Fatal(err)
	}
	if next.Awareness["han"] != 70 || next.Hostility["han"] != 40 {
		t.Errorf("awareness %d hostility %d, want 70 and 40", next.Awareness["han"], next.Hostility["han"])
	}
	if !strings.Contains(ev.Description, "priority target") {
		t.Errorf("expected pursuit note, got %q", ev.Description)
	}
}

func TestUpdateAwarenessValidation(t *testing.T) {
	st := newState("hegemony", 1000)
	for _, tt := range []struct{ aw, ho int }{
		{-1, 0}, {101, 0}, {0, -1}, {0, 101},
	} {
		if _, _, err := UpdateAwareness(st, "han", tt.aw, tt.ho, "x", now); !errors.Is(err, ErrInvalidDelta) {
			t.Errorf("aw=%d ho=%d: err = %v, want ErrInvalidDelta", tt.aw, tt.ho, err)
		}
	}
}

func TestAwarenessClampsAtBounds(t *testing.T) {
	st := newState("hegemony", 1000)
	st.Awareness["han"] = 90
	st.Hostility["han"] = 95

	next, _, err := UpdateAwareness(st, "han", 100, 100, "open war", now)
	if err != nil {
		t.Fatal(err)
	}
	if next.Awareness["han"] != 100 || next.Hostility["han"] != 100 {
		t.Errorf("awareness %d hostility %d, want both clamped to 100", next.Awareness["han"], next.Hostility["han"])
	}
}

func TestDecideRetaliate(t *testing.T) {
	st := newState("hegemony", 1000)
	st.Hostility["han"] = 95
	st.Hostility["luke"] = 40

	dec := Decide(st, Signals{Regions: map[string]Region{}, Owner: map[string]string{}, Resources: map[string]int{"hegemony": 1000}})
	if dec.Goal != Retaliate {
		t.Fatalf("goal = %v, want Retaliate", dec.Goal)
	}
	if dec.TargetPlayer != "han" {
		t.Errorf("target = %q, want the most hostile player", dec.TargetPlayer)
	}
}

func TestDecideExpandIntoUnclaimedRegion(t *testing.T) {
	st := newState("syndicate", 800)
	sig := Signals{
		Regions: map[string]Region{
			"sector-01": {ID: "sector-01", Richness: 0.9},
			"sector-02": {ID: "sector-02", Richness: 0.3},
		},
		Owner:     map[string]string{},
		Resources: map[string]int{"syndicate": 800},
	}

	dec := Decide(st, sig)
	if dec.Goal != Expand {
		t.Fatalf("goal = %v (%s), want Expand", dec.Goal, dec.Reason)
	}
	if dec.TargetRegion != "sector-01" {
		t.Errorf("target region = %q, want the richest eligible", dec.TargetRegion)
	}
}

func TestDecideConsolidateWhenPoor(t *testing.T) {
	st := newState("liberation", 200)
	sig := Signals{
		Regions:   map[string]Region{"sector-01": {ID: "sector-01", Richness: 0.2}},
		Owner:     map[string]string{},
		Resources: map[string]int{"liberation": 200},
	}

	// Resources below the expand cost rule expansion out entirely.
	dec := Decide(st, sig)
	if dec.Goal != Consolidate {
		t.Fatalf("goal = %v, want Consolidate", dec.Goal)
	}
}

func TestDecideNegotiateUnderModerateHostility(t *testing.T) {
	st := newState("mercantile", 600)
	st.Hostility["han"] = 50

	// Every region is held by a much stronger rival, so expansion is off the
	// table and negotiation beats baseline consolidation.
	sig := Signals{
		Regions:   map[string]Region{"sector-01": {ID: "sector-01", Richness: 0.9}},
		Owner:     map[string]string{"sector-01": "hegemony"},
		Resources: map[string]int{"mercantile": 600, "hegemony": 5000},
	}

	dec := Decide(st, sig)
	if dec.Goal != Negotiate {
		t.Fatalf("goal = %v (%s), want Negotiate", dec.Goal, dec.Reason)
	}
	if dec.TargetPlayer != "han" {
		t.Errorf("target = %q, want han", dec.TargetPlayer)
	}
}

func TestDecideDeterministicTieBreak(t *testing.T) {
	st := newState("syndicate", 1000)
	st.Hostility["aaa"] = 95
	st.Hostility["zzz"] = 95

	for i := 0; i < 50; i++ {
		dec := Decide(st, Signals{Regions: map[string]Region{}, Owner: map[string]string{}, Resources: map[string]int{"syndicate": 1000}})
		if dec.TargetPlayer != "aaa" {
			t.Fatalf("run %d: target = %q, want lexicographic tie-break to aaa", i, dec.TargetPlayer)
		}
	}
}

func TestExecuteTickRetaliate(t *testing.T) {
	st := newState("hegemony", 1000)
	st.Hostility["han"] = 95
	states := map[string]State{"hegemony": st}

	res, err := ExecuteTick("hegemony", states, map[string]Region{}, now)
	if err != nil {
		t.Fatal(err)
	}
	next := res.Changed["hegemony"]
	if next.Resources != 800 {
		t.Errorf("resources = %d, want 800 after retaliation cost", next.Resources)
	}
	if next.Hostility["han"] != 100 {
		t.Errorf("hostility = %d, want 100 (95 + penalty, clamped)", next.Hostility["han"])
	}
	if res.EscalatePlayer != "han" || res.EscalateSeverity != 10 {
		t.Errorf("escalation = (%q, %d), want (han, 10)", res.EscalatePlayer, res.EscalateSeverity)
	}
	if len(res.Events) != 1 || !strings.Contains(res.Events[0].Description, "retaliates") {
		t.Errorf("events = %+v, want one retaliation event", res.Events)
	}
	if states["hegemony"].Resources != 1000 {
		t.Error("ExecuteTick mutated the input snapshot")
	}
}

func TestExecuteTickExpandDisplacesIncumbent(t *testing.T) {
	strong := newState("hegemony", 10000)
	strong.Territory["sector-01"] = true
	weak := newState("liberation", 100)
	weak.Territory["sector-02"] = true

	states := map[string]State{"hegemony": strong, "liberation": weak}
	regions := map[string]Region{
		"sector-01": {ID: "sector-01", Richness: 0.5, Defense: 0.2},
		"sector-02": {ID: "sector-02", Richness: 0.8, Defense: 0.1},
	}

	res, err := ExecuteTick("hegemony", states, regions, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Decision.Goal != Expand {
		t.Fatalf("goal = %v (%s), want Expand", res.Decision.Goal, res.Decision.Reason)
	}

	winner := res.Changed["hegemony"]
	loser, ok := res.Changed["liberation"]
	if !ok {
		t.Fatal("displaced incumbent missing from Changed")
	}
	if !winner.Territory["sector-02"] {
		t.Error("winner did not gain the contested region")
	}
	if loser.Territory["sector-02"] {
		t.Error("incumbent still holds the contested region")
	}
	if len(res.Events) != 2 {
		t.Fatalf("events = %d, want 2 (seizure plus loss)", len(res.Events))
	}
	if !strings.Contains(res.Events[0].Description, "seizes") {
		t.Errorf("first event %q, want the seizure", res.Events[0].Description)
	}
}

func TestExecuteTickNegotiateEasesHostility(t *testing.T) {
	st := newState("mercantile", 600)
	st.Hostility["han"] = 50

	states := map[string]State{"mercantile": st, "hegemony": newState("hegemony", 5000)}
	res, err := ExecuteTick("mercantile", states, map[string]Region{}, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Decision.Goal != Negotiate {
		t.Fatalf("goal = %v (%s), want Negotiate", res.Decision.Goal, res.Decision.Reason)
	}
	next := res.Changed["mercantile"]
	if next.Hostility["han"] != 30 {
		t.Errorf("hostility = %d, want 30 after relief", next.Hostility["han"])
	}
	if len(res.Events) == 0 {
		t.Fatal("every tick must record at least one event")
	}
}

func TestExecuteTickUnknownFaction(t *testing.T) {
	_, err := ExecuteTick("ghost", map[string]State{}, map[string]Region{}, now)
	if !errors.Is(err, ErrUnknownFaction) {
		t.Fatalf("err = %v, want ErrUnknownFaction", err)
	}
}

func TestBootstrap(t *testing.T) {
	regions := GenerateRegions(42, 12)
	states, err := Bootstrap(DefaultConfigs(), regions, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 4 {
		t.Fatalf("factions = %d, want 4", len(states))
	}

	owners := map[string]string{}
	for id, st := range states {
		for region := range st.Territory {
			if other, taken := owners[region]; taken {
				t.Errorf("region %s owned by both %s and %s", region, other, id)
			}
			owners[region] = id
		}
	}
}

func TestBootstrapRejectsSharedTerritory(t *testing.T) {
	regions := GenerateRegions(42, 4)
	cfgs := []Config{
		{ID: "a", Name: "A", Territory: []string{"sector-01"}},
		{ID: "b", Name: "B", Territory: []string{"sector-01"}},
	}
	if _, err := Bootstrap(cfgs, regions, now); err == nil {
		t.Fatal("expected territory exclusion error")
	}
}

func TestBootstrapRejectsUnknownRegion(t *testing.T) {
	cfgs := []Config{{ID: "a", Name: "A", Territory: []string{"sector-99"}}}
	if _, err := Bootstrap(cfgs, GenerateRegions(42, 4), now); err == nil {
		t.Fatal("expected unknown region error")
	}
}

func TestGenerateRegionsDeterministic(t *testing.T) {
	a := GenerateRegions(7, 8)
	b := GenerateRegions(7, 8)
	if len(a) != 8 {
		t.Fatalf("count = %d, want 8", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("region %d differs between identical seeds: %+v vs %+v", i, a[i], b[i])
		}
		if a[i].Richness < 0 || a[i].Richness > 1 || a[i].Defense < 0 || a[i].Defense > 1 {
			t.Errorf("region %d out of range: %+v", i, a[i])
		}
	}

	c := GenerateRegions(8, 8)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical regions")
	}
}
