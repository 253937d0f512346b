package assets

import (
	"os"
	"path/filepath"
	"testing"

	"campfire/internal/config"
	"campfire/internal/entity"
	"campfire/internal/item"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTablesParse(t *testing.T) {
	ts, err := Tables()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{config.TableItem, config.TableEquip, config.TableMonster}, ts.Names())
}

func TestEmbeddedTablesCoverDefaults(t *testing.T) {
	ts, err := Tables()
	require.NoError(t, err)
	catalog := item.NewCatalogFromTables(ts)
	defaults := config.Default()

	for _, id := range defaults.Player.StartItems {
		_, ok := catalog.Get(id)
		assert.True(t, ok, "start item %d", id)
	}
	for _, id := range defaults.Player.StartEquipment {
		_, err := catalog.EquipSpec(id)
		assert.NoError(t, err, "start equipment %d", id)
	}
	for _, id := range defaults.Spawn.MonsterIDs {
		_, err := entity.NewMonster(id, ts.MustReader(config.TableMonster))
		assert.NoError(t, err, "monster %d", id)
	}
}

func TestEveryEquipItemHasValidSlot(t *testing.T) {
	ts, err := Tables()
	require.NoError(t, err)
	catalog := item.NewCatalogFromTables(ts)

	for _, id := range ts.MustReader(config.TableItem).Keys() {
		if !catalog.IsEquip(id) {
			continue
		}
		_, err := catalog.SlotOf(id)
		assert.NoError(t, err, "item %d", id)
	}
}

func TestMonsterDropsResolve(t *testing.T) {
	ts, err := Tables()
	require.NoError(t, err)
	catalog := item.NewCatalogFromTables(ts)
	monsters := ts.MustReader(config.TableMonster)

	for _, id := range monsters.Keys() {
		m, err := entity.NewMonster(id, monsters)
		require.NoError(t, err)
		for _, drop := range m.Drops() {
			_, ok := catalog.Get(drop)
			assert.True(t, ok, "monster %d drops unknown item %d", id, drop)
		}
	}
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	ts, err := Load("")
	require.NoError(t, err)
	assert.Positive(t, ts.MustReader(config.TableMonster).Len())
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, TablesYAML, 0o644))

	ts, err := Load(path)
	require.NoError(t, err)
	embedded, err := Tables()
	require.NoError(t, err)
	assert.Equal(t, embedded.MustReader(config.TableItem).Keys(), ts.MustReader(config.TableItem).Keys())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
