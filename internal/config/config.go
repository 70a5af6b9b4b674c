// Package config loads server configuration from the environment and the
// optional world definition file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/GameMasterRPG/GalacticConsequence/internal/faction"
	"github.com/GameMasterRPG/GalacticConsequence/internal/quest"
)

// Config is the process environment. Only WORLDD_ADMIN_KEY matters for
// security; everything else has a workable default.
type Config struct {
	Port     int    `env:"WORLDD_PORT" envDefault:"8080"`
	DBPath   string `env:"WORLDD_DB" envDefault:"data/world.db"`
	AdminKey string `env:"WORLDD_ADMIN_KEY"`

	WorldFile    string        `env:"WORLDD_WORLD_FILE"`
	Seed         int64         `env:"WORLDD_SEED" envDefault:"42"`
	LockWait     time.Duration `env:"WORLDD_LOCK_WAIT" envDefault:"2s"`
	TickInterval time.Duration `env:"WORLDD_TICK_INTERVAL" envDefault:"1m"`

	DialogueAPIKey string `env:"DIALOGUE_API_KEY"`
	DialogueURL    string `env:"DIALOGUE_API_URL" envDefault:"https://integrate.api.nvidia.com/v1/chat/completions"`
	DialogueModel  string `env:"DIALOGUE_MODEL" envDefault:"meta/llama-3.1-70b-instruct"`
}

// Load parses the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return c, nil
}

// WorldFile is the optional YAML world definition. Missing sections fall back
// to the built-in defaults.
type WorldFile struct {
	Regions        int              `yaml:"regions"`
	Factions       []faction.Config `yaml:"factions"`
	NPCs           []string         `yaml:"npcs"`
	QuestTemplates []quest.Template `yaml:"quest_templates"`
}

// LoadWorldFile reads and parses a world definition. An empty path returns a
// zero WorldFile without error.
func LoadWorldFile(path string) (WorldFile, error) {
	var wf WorldFile
	if path == "" {
		return wf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return wf, fmt.Errorf("read world file: %w", err)
	}
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return wf, fmt.Errorf("parse world file %s: %w", path, err)
	}
	return wf, nil
}
