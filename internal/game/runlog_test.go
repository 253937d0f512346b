package game

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunLogDirXDGEnvOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := runLogDir()
	if err != nil {
		t.Fatalf("runLogDir returned error: %v", err)
	}
	want := filepath.Join(tmp, "campfire")
	if dir != want {
		t.Errorf("dir = %q; want %q", dir, want)
	}
}

func TestRunLogDirDefaultFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "") // force the fallback path

	dir, err := runLogDir()
	if err != nil {
		t.Skip("skipping: no user home directory available in test environment")
	}
	suffix := filepath.Join(".local", "share", "campfire")
	if !strings.HasSuffix(dir, suffix) {
		t.Errorf("dir %q does not end with %q", dir, suffix)
	}
}

func TestSaveRunLog(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	log := RunLog{
		ID:             "run-1",
		Player:         "Wendy",
		Survived:       90 * time.Second,
		Died:           true,
		CauseOfDeath:   "Spider",
		MonstersKilled: map[string]int{"Hound": 2},
		ItemsUsed:      map[string]int{"Berries": 1},
		Equipment:      []int{1101, 1001},
	}
	if err := saveRunLog(log); err != nil {
		t.Fatalf("saveRunLog: %v", err)
	}

	logPath := filepath.Join(tmp, "campfire", "runs.jsonl")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("runs.jsonl not created: %v", err)
	}
	content := string(data)
	if !strings.HasSuffix(content, "\n") {
		t.Errorf("log entry should end with newline; got: %q", content)
	}

	var got RunLog
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &got); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if got.Player != "Wendy" || got.CauseOfDeath != "Spider" || got.MonstersKilled["Hound"] != 2 {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestSaveRunLogAppendsMultiple(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	for i := range 3 {
		if err := saveRunLog(RunLog{
			Player:         "Wendy",
			DamageTaken:    i,
			MonstersKilled: map[string]int{},
			ItemsUsed:      map[string]int{},
		}); err != nil {
			t.Fatalf("saveRunLog: %v", err)
		}
	}

	logPath := filepath.Join(tmp, "campfire", "runs.jsonl")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("runs.jsonl not found: %v", err)
	}
	// Each call appends one JSON line; count the newlines.
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 log lines, got %d", len(lines))
	}
}

func TestSaveRunLogReportsUnwritableDir(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_DATA_HOME", blocker)

	if err := saveRunLog(RunLog{}); err == nil {
		t.Error("expected an error when the data dir is a file")
	}
}
