package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"WORLDD_PORT", "WORLDD_DB", "WORLDD_SEED",
		"WORLDD_LOCK_WAIT", "WORLDD_TICK_INTERVAL", "WORLDD_ADMIN_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 8080 {
		t.Errorf("port = %d, want 8080", c.Port)
	}
	if c.DBPath != "data/world.db" {
		t.Errorf("db path = %q", c.DBPath)
	}
	if c.Seed != 42 || c.LockWait != 2*time.Second || c.TickInterval != time.Minute {
		t.Errorf("defaults = seed %d, lock wait %s, tick %s", c.Seed, c.LockWait, c.TickInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORLDD_PORT", "9999")
	t.Setenv("WORLDD_SEED", "7")
	t.Setenv("WORLDD_LOCK_WAIT", "500ms")
	t.Setenv("WORLDD_ADMIN_KEY", "hunter2")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 9999 || c.Seed != 7 || c.LockWait != 500*time.Millisecond || c.AdminKey != "hunter2" {
		t.Errorf("overrides not applied: %+v", c)
	}
}

func TestLoadWorldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	doc := `regions: 6
factions:
  - id: syndicate
    name: Shadow Syndicate
    priority: 1
    resources: 400
    territory: [region-0]
npcs: [greedo, watto]
quest_templates:
  - name: test-run
    title: Test Run
    description: A simple delivery.
    giver: Dispatcher
    difficulty: 2
    weight: 1
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	wf, err := LoadWorldFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if wf.Regions != 6 {
		t.Errorf("regions = %d, want 6", wf.Regions)
	}
	if len(wf.Factions) != 1 || wf.Factions[0].ID != "syndicate" || wf.Factions[0].Resources != 400 {
		t.Errorf("factions = %+v", wf.Factions)
	}
	if len(wf.NPCs) != 2 {
		t.Errorf("npcs = %v", wf.NPCs)
	}
	if len(wf.QuestTemplates) != 1 || wf.QuestTemplates[0].Name != "test-run" {
		t.Errorf("templates = %+v", wf.QuestTemplates)
	}
}

func TestLoadWorldFileEmptyPath(t *testing.T) {
	wf, err := LoadWorldFile("")
	if err != nil {
		t.Fatal(err)
	}
	if wf.Regions != 0 || wf.Factions != nil {
		t.Errorf("empty path should yield zero value, got %+v", wf)
	}
}

func TestLoadWorldFileMissing(t *testing.T) {
	if _, err := LoadWorldFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
