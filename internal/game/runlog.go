package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunLog records statistics gathered during one session.
type RunLog struct {
	ID              string         `json:"id"`
	Player          string         `json:"player"`
	StartedAt       time.Time      `json:"started_at"`
	EndedAt         time.Time      `json:"ended_at"`
	Survived        time.Duration  `json:"survived_ns"`
	Died            bool           `json:"died"`
	CauseOfDeath    string         `json:"cause_of_death,omitempty"`
	MonstersSpawned int            `json:"monsters_spawned"`
	MonstersKilled  map[string]int `json:"monsters_killed"` // name → kill count
	ItemsUsed       map[string]int `json:"items_used"`      // name → use count
	DamageDealt     int            `json:"damage_dealt"`
	DamageTaken     int            `json:"damage_taken"`
	Equipment       []int          `json:"equipment"`
}

// saveRunLog appends the completed run as a single JSON line to runs.jsonl.
func saveRunLog(log RunLog) error {
	dir, err := runLogDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "runs.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

// runLogDir returns the directory where run logs are stored.
// Follows XDG Base Directory spec: $XDG_DATA_HOME/campfire,
// defaulting to ~/.local/share/campfire.
func runLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "campfire"), nil
}
