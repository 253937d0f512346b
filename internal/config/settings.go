// Package config loads game settings and the data tables that describe
// items, equipment and monsters.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the top-level game configuration.
type Settings struct {
	LogLevel    string         `yaml:"log_level"`
	TablesPath  string         `yaml:"tables_path"` // empty: embedded defaults
	WatchTables bool           `yaml:"watch_tables"`
	Player      PlayerSettings `yaml:"player"`
	Spawn       SpawnSettings  `yaml:"spawn"`
	Events      EventSettings  `yaml:"events"`
}

// PlayerSettings describes the player entity created for each session.
type PlayerSettings struct {
	MaxHealth         int           `yaml:"max_health"`
	MaxHunger         int           `yaml:"max_hunger"`
	MaxSanity         int           `yaml:"max_sanity"`
	BaseAttack        int           `yaml:"base_attack"`
	BaseDefense       int           `yaml:"base_defense"`
	AttackCooldown    time.Duration `yaml:"attack_cooldown"`
	InventoryCapacity int           `yaml:"inventory_capacity"`
	StartItems        []int         `yaml:"start_items"`
	StartEquipment    []int         `yaml:"start_equipment"`
}

// SpawnSettings configures the monster spawner.
type SpawnSettings struct {
	Enabled     bool          `yaml:"enabled"`
	Random      bool          `yaml:"random"`
	Interval    time.Duration `yaml:"interval"`
	MinInterval time.Duration `yaml:"min_interval"`
	MonsterIDs  []int         `yaml:"monster_ids"`
	X           float64       `yaml:"x"`
	Y           float64       `yaml:"y"`
	MaxAlive    int           `yaml:"max_alive"`
}

// EventSettings configures the per-session event bus.
type EventSettings struct {
	MaxDepth int `yaml:"max_depth"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		LogLevel: "info",
		Player: PlayerSettings{
			MaxHealth:         100,
			MaxHunger:         150,
			MaxSanity:         200,
			BaseAttack:        10,
			BaseDefense:       0,
			AttackCooldown:    time.Second,
			InventoryCapacity: 12,
			StartItems:        []int{1001, 1101, 2001, 2001, 2002},
		},
		Spawn: SpawnSettings{
			Enabled:     true,
			Random:      true,
			Interval:    10 * time.Second,
			MinInterval: time.Second,
			MonsterIDs:  []int{5001, 5002},
			MaxAlive:    5,
		},
		Events: EventSettings{MaxDepth: 8},
	}
}

// Load reads settings from path on top of Default, then applies CAMPFIRE_*
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings: %w", err)
		}
	}
	if err := applyEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyEnv(s *Settings) error {
	if v := os.Getenv("CAMPFIRE_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("CAMPFIRE_TABLES"); v != "" {
		s.TablesPath = v
	}
	if v := os.Getenv("CAMPFIRE_SPAWN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CAMPFIRE_SPAWN_INTERVAL: %w", err)
		}
		s.Spawn.Interval = d
	}
	if v := os.Getenv("CAMPFIRE_SPAWN_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CAMPFIRE_SPAWN_ENABLED: %w", err)
		}
		s.Spawn.Enabled = b
	}
	return nil
}

// Validate checks invariants and clamps values that have a safe floor.
func (s *Settings) Validate() error {
	var errs []error
	p := &s.Player
	if p.MaxHealth <= 0 {
		errs = append(errs, errors.New("player.max_health must be positive"))
	}
	if p.InventoryCapacity <= 0 {
		errs = append(errs, errors.New("player.inventory_capacity must be positive"))
	}
	if p.AttackCooldown < 0 {
		errs = append(errs, errors.New("player.attack_cooldown must not be negative"))
	}
	if s.Spawn.MinInterval <= 0 {
		s.Spawn.MinInterval = time.Second
	}
	if s.Spawn.Interval < s.Spawn.MinInterval {
		s.Spawn.Interval = s.Spawn.MinInterval
	}
	if s.Events.MaxDepth <= 0 {
		errs = append(errs, errors.New("events.max_depth must be positive"))
	}
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	return errors.Join(errs...)
}
