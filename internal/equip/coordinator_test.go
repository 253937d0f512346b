package equip

import (
	"testing"

	"campfire/internal/config"
	"campfire/internal/entity"
	"campfire/internal/event"
	"campfire/internal/inventory"
	"campfire/internal/item"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	swordA = 1001 // Hand +5 ATK
	swordB = 1002 // Hand +3 ATK
	helmet = 1101 // Head +2 DEF
	armor  = 1201 // Body +4 DEF
	berry  = 2001
	broken = 1301 // classified Equip but no Equip row
)

const testTables = `
Item:
  1001: {Name: Sword A, Type: Equip}
  1002: {Name: Sword B, Type: Equip}
  1101: {Name: Helmet, Type: Equip}
  1201: {Name: Armor, Type: Equip}
  1301: {Name: Rusty Shard, Type: Equip}
  2001: {Name: Berry, Type: Item}
Equip:
  1001: {Type: Hand, Attack: 5}
  1002: {Type: Hand, Attack: 3}
  1101: {Type: Head, Defense: 2}
  1201: {Type: Body, Defense: 4}
`

type fixture struct {
	bus     *event.Bus
	catalog *item.Catalog
	inv     *inventory.Inventory
	player  *entity.Player
	coord   *Coordinator
	events  []event.Event
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	ts, err := config.Parse([]byte(testTables))
	require.NoError(t, err)

	f := &fixture{bus: event.NewBus(event.WithLogger(zerolog.Nop()))}
	f.catalog = item.NewCatalogFromTables(ts)
	f.inv = inventory.New(capacity, f.catalog, nil)

	settings := config.Default().Player
	settings.BaseAttack = 10
	settings.BaseDefense = 0
	f.player = entity.NewPlayer("Ash", settings, f.catalog)
	f.coord = NewCoordinator(f.catalog, f.inv, f.player, f.bus)

	event.Subscribe(f.bus, func(e Changed) { f.events = append(f.events, e) })
	event.Subscribe(f.bus, func(e Refreshed) { f.events = append(f.events, e) })
	return f
}

func (f *fixture) give(t *testing.T, ids ...int) {
	t.Helper()
	for _, id := range ids {
		require.True(t, f.inv.AddItem(id, 1))
	}
}

func TestEquipSwapReturnsPreviousItem(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, swordA, swordB)

	require.NoError(t, f.coord.Equip(swordA, item.SlotHand))
	assert.Equal(t, 15, f.player.TotalAttack())
	assert.False(t, f.inv.HasEnoughItem(swordA, 1))

	require.NoError(t, f.coord.Equip(swordB, item.SlotHand))
	assert.Equal(t, 13, f.player.TotalAttack())
	assert.True(t, f.inv.HasEnoughItem(swordA, 1), "previous item goes back to the inventory")
	assert.False(t, f.inv.HasEnoughItem(swordB, 1))

	id, ok := f.coord.Equipped(item.SlotHand)
	require.True(t, ok)
	assert.Equal(t, swordB, id)

	want := []event.Event{
		Changed{Slot: item.SlotHand, ItemID: swordA, Equipped: true},
		Changed{Slot: item.SlotHand, ItemID: swordA, Equipped: false},
		Changed{Slot: item.SlotHand, ItemID: swordB, Equipped: true},
	}
	if diff := cmp.Diff(want, f.events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEquipValidationLeavesStateUntouched(t *testing.T) {
	cases := []struct {
		name   string
		itemID int
		slot   item.Slot
		want   error
	}{
		{"consumable", berry, item.SlotHand, ErrNotEquippable},
		{"unknown item", 9999, item.SlotHand, ErrNotEquippable},
		{"missing equip row", broken, item.SlotHand, ErrNotEquippable},
		{"wrong slot", swordA, item.SlotHead, ErrWrongSlot},
		{"not owned", helmet, item.SlotHead, ErrNotInInventory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 10)
			f.give(t, swordA, berry, broken)
			require.NoError(t, f.coord.Equip(swordA, item.SlotHand))
			f.events = nil
			before := f.inv.Stacks()

			err := f.coord.Equip(tc.itemID, tc.slot)
			require.ErrorIs(t, err, tc.want)

			assert.Equal(t, before, f.inv.Stacks())
			assert.Equal(t, map[item.Slot]int{item.SlotHand: swordA}, f.coord.All())
			assert.Equal(t, 15, f.player.TotalAttack())
			assert.Empty(t, f.events, "failed equips publish nothing")
		})
	}
}

func TestUnequip(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, helmet)
	require.NoError(t, f.coord.Equip(helmet, item.SlotHead))
	assert.Equal(t, 2, f.player.TotalDefense())
	f.events = nil

	require.NoError(t, f.coord.Unequip(item.SlotHead))
	assert.Zero(t, f.player.TotalDefense())
	assert.True(t, f.inv.HasEnoughItem(helmet, 1))
	assert.False(t, f.coord.HasEquipped(item.SlotHead))
	assert.Equal(t, []event.Event{Changed{Slot: item.SlotHead, ItemID: helmet}}, f.events)
}

func TestUnequipEmptySlot(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, helmet)
	f.give(t, berry)
	require.NoError(t, f.coord.Equip(helmet, item.SlotHead))
	f.events = nil
	equipped := f.coord.All()
	stacks := f.inv.Stacks()

	err := f.coord.Unequip(item.SlotBody)
	require.ErrorIs(t, err, ErrSlotEmpty)
	assert.Empty(t, f.events)
	assert.Equal(t, equipped, f.coord.All())
	assert.Equal(t, stacks, f.inv.Stacks())
	assert.Equal(t, 2, f.player.TotalDefense())
}

func TestUnequipWithFullInventoryDropsItem(t *testing.T) {
	f := newFixture(t, 1)
	f.give(t, armor)
	require.NoError(t, f.coord.Equip(armor, item.SlotBody))
	f.give(t, berry)

	require.NoError(t, f.coord.Unequip(item.SlotBody))
	assert.False(t, f.inv.HasEnoughItem(armor, 1))
	assert.False(t, f.coord.HasEquipped(item.SlotBody))
	assert.Zero(t, f.player.TotalDefense())
}

func TestSwapWithFullInventoryStillSucceeds(t *testing.T) {
	f := newFixture(t, 1)
	f.give(t, swordA)
	require.NoError(t, f.coord.Equip(swordA, item.SlotHand))
	f.give(t, swordB)

	// The inventory is full when swordA comes off, so it is lost, but the
	// slot frees up once swordB leaves the bag.
	require.NoError(t, f.coord.Equip(swordB, item.SlotHand))
	assert.Equal(t, 13, f.player.TotalAttack())
	assert.Zero(t, f.inv.Used())
}

type rejectingEntity struct {
	worn map[item.Slot]int
}

func (r *rejectingEntity) ApplyEquipComponent(int) bool     { return false }
func (r *rejectingEntity) RemoveEquipComponent(s item.Slot) { delete(r.worn, s) }
func (r *rejectingEntity) EquippedItems() map[item.Slot]int { return r.worn }

func TestEntityRejectionRollsBackInventory(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, swordA)
	coord := NewCoordinator(f.catalog, f.inv, &rejectingEntity{}, f.bus)

	err := coord.Equip(swordA, item.SlotHand)
	require.ErrorIs(t, err, ErrRejected)
	assert.True(t, f.inv.HasEnoughItem(swordA, 1))
	assert.False(t, coord.HasEquipped(item.SlotHand))
	assert.Empty(t, f.events)
}

func TestAllReturnsCopy(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, helmet)
	require.NoError(t, f.coord.Equip(helmet, item.SlotHead))

	all := f.coord.All()
	all[item.SlotHand] = swordA
	delete(all, item.SlotHead)

	assert.Equal(t, map[item.Slot]int{item.SlotHead: helmet}, f.coord.All())
}

func TestItemIDsInSlotOrder(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, swordA, helmet, armor)
	require.NoError(t, f.coord.Equip(swordA, item.SlotHand))
	require.NoError(t, f.coord.Equip(armor, item.SlotBody))
	require.NoError(t, f.coord.Equip(helmet, item.SlotHead))

	assert.Equal(t, []int{helmet, armor, swordA}, f.coord.ItemIDs())
}

func TestLoadFromSave(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, swordB)
	require.NoError(t, f.coord.Equip(swordB, item.SlotHand))
	f.events = nil
	stacks := f.inv.Stacks()

	err := f.coord.LoadFromSave([]int{swordA, 0, helmet, 9999})
	require.Error(t, err, "unknown ids are reported")
	assert.ErrorIs(t, err, item.ErrNoEquipSpec)

	want := map[item.Slot]int{item.SlotHand: swordA, item.SlotHead: helmet}
	if diff := cmp.Diff(want, f.coord.All()); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 15, f.player.TotalAttack())
	assert.Equal(t, 2, f.player.TotalDefense())
	assert.Equal(t, stacks, f.inv.Stacks(), "loading does not touch the inventory")
	assert.Equal(t, []event.Event{Refreshed{Count: 2}}, f.events)
	assert.Empty(t, f.coord.Sync())
}

func TestLoadFromSaveClearsPreviousEquipment(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, armor)
	require.NoError(t, f.coord.Equip(armor, item.SlotBody))
	f.events = nil

	require.NoError(t, f.coord.LoadFromSave(nil))
	assert.Empty(t, f.coord.All())
	assert.Zero(t, f.player.TotalDefense())
	assert.Empty(t, f.events, "nothing equipped, nothing refreshed")
}

func TestSyncReportsDivergence(t *testing.T) {
	f := newFixture(t, 10)
	f.give(t, swordA)
	require.NoError(t, f.coord.Equip(swordA, item.SlotHand))
	assert.Empty(t, f.coord.Sync())

	// Change the entity behind the coordinator's back.
	f.player.RemoveEquipComponent(item.SlotHand)
	require.True(t, f.player.ApplyEquipComponent(helmet))

	got := f.coord.Sync()
	want := []Mismatch{
		{Slot: item.SlotHead, Managed: 0, Actual: helmet},
		{Slot: item.SlotHand, Managed: swordA, Actual: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatches (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[item.Slot]int{item.SlotHand: swordA}, f.coord.All(), "sync never corrects")
}
