package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const sampleTables = `
Item:
  1001: {Name: Stone Axe, Type: Equip, MaxStack: 1}
  2001: {Name: Berry, Type: Item, MaxStack: 20}
Equip:
  1001: {Type: Hand, Attack: 5, Defense: 0}
Monster:
  5001: {Name: Spider, MaxHealth: 30, Attack: 4, AttackCooldown: 1.5, Drops: [2001, 2001]}
`

func TestParseTables(t *testing.T) {
	ts, err := Parse([]byte(sampleTables))
	require.NoError(t, err)
	assert.Equal(t, []string{"Equip", "Item", "Monster"}, ts.Names())

	items, err := ts.Reader(TableItem)
	require.NoError(t, err)
	assert.True(t, items.HasKey(1001))
	assert.False(t, items.HasKey(9999))
	assert.Equal(t, []int{1001, 2001}, items.Keys())
	assert.Equal(t, 2, items.Len())
}

func TestParseRejectsNonPositiveIDs(t *testing.T) {
	_, err := Parse([]byte("Item:\n  0: {Name: nothing}\n"))
	assert.Error(t, err)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("Item: [unclosed"))
	assert.Error(t, err)
}

func TestReaderUnknownTable(t *testing.T) {
	ts, err := Parse([]byte(sampleTables))
	require.NoError(t, err)

	_, err = ts.Reader("Building")
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.Zero(t, ts.MustReader("Building").Len())
}

func TestValueConversions(t *testing.T) {
	ts, err := Parse([]byte(sampleTables))
	require.NoError(t, err)
	monsters := ts.MustReader(TableMonster)
	items := ts.MustReader(TableItem)

	assert.Equal(t, "Spider", Value(monsters, 5001, "Name", ""))
	assert.Equal(t, 30, Value(monsters, 5001, "MaxHealth", 0))
	assert.Equal(t, 30.0, Value(monsters, 5001, "MaxHealth", 0.0))
	assert.Equal(t, 1.5, Value(monsters, 5001, "AttackCooldown", 0.0))
	assert.Equal(t, []int{2001, 2001}, Value[[]int](monsters, 5001, "Drops", nil))

	// Non-integral floats do not silently truncate.
	assert.Equal(t, 7, Value(monsters, 5001, "AttackCooldown", 7))
	// Missing column, missing row, nil lookup.
	assert.Equal(t, 3, Value(monsters, 5001, "Defense", 3))
	assert.Equal(t, "none", Value(items, 4242, "Name", "none"))
	assert.Equal(t, "none", Value[string](nil, 1, "Name", "none"))
}

func TestValueStringCoercion(t *testing.T) {
	tbl := NewTable("T", map[int]Row{1: {"N": "42", "F": "0.5", "B": "true", "S": 12}})

	assert.Equal(t, 42, Value(tbl, 1, "N", 0))
	assert.Equal(t, 0.5, Value(tbl, 1, "F", 0.0))
	assert.True(t, Value(tbl, 1, "B", false))
	assert.Equal(t, "12", Value(tbl, 1, "S", ""))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Player, s.Player)
	assert.Equal(t, 8, s.Events.MaxDepth)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campfire.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: DEBUG
player:
  base_attack: 15
  attack_cooldown: 750ms
spawn:
  interval: 100ms
  min_interval: 2s
  monster_ids: [5002]
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 15, s.Player.BaseAttack)
	assert.Equal(t, 750*time.Millisecond, s.Player.AttackCooldown)
	assert.Equal(t, 100, s.Player.MaxHealth, "unset fields keep defaults")
	assert.Equal(t, 2*time.Second, s.Spawn.Interval, "interval is clamped to min_interval")
	assert.Equal(t, []int{5002}, s.Spawn.MonsterIDs)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CAMPFIRE_SPAWN_INTERVAL", "30s")
	t.Setenv("CAMPFIRE_SPAWN_ENABLED", "false")
	t.Setenv("CAMPFIRE_TABLES", "/srv/tables.yaml")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, s.Spawn.Interval)
	assert.False(t, s.Spawn.Enabled)
	assert.Equal(t, "/srv/tables.yaml", s.TablesPath)
}

func TestLoadEnvRejectsGarbage(t *testing.T) {
	t.Setenv("CAMPFIRE_SPAWN_INTERVAL", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateReportsAllProblems(t *testing.T) {
	s := Default()
	s.Player.MaxHealth = 0
	s.Player.InventoryCapacity = -1
	s.Events.MaxDepth = 0

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_health")
	assert.Contains(t, err.Error(), "inventory_capacity")
	assert.Contains(t, err.Error(), "max_depth")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWatcherDeliversReloadedTables(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTables), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := WatchTables(ctx, path, 20*time.Millisecond)
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	updated := sampleTables + "Building:\n  7001: {Name: Campfire}\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case ts := <-w.Updates():
		assert.True(t, ts.MustReader("Building").HasKey(7001))
	case <-time.After(5 * time.Second):
		t.Fatal("no table update delivered")
	}
}

func TestWatcherKeepsOldTablesOnParseError(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTables), 0o644))

	w, err := WatchTables(context.Background(), path, 20*time.Millisecond)
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	require.NoError(t, os.WriteFile(path, []byte("Item: [broken"), 0o644))

	select {
	case <-w.Updates():
		t.Fatal("broken tables must not be delivered")
	case <-time.After(300 * time.Millisecond):
	}
}
