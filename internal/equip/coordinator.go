// Package equip owns the authoritative slot → item mapping and runs equip
// and unequip transactions between the inventory and the wearing entity.
package equip

import (
	"errors"
	"fmt"
	"maps"

	"campfire/internal/event"
	"campfire/internal/item"
	xlog "campfire/internal/log"
	"campfire/internal/metrics"

	"github.com/rs/zerolog"
)

var (
	ErrNotEquippable  = errors.New("item is not equipment")
	ErrWrongSlot      = errors.New("item does not fit this slot")
	ErrNotInInventory = errors.New("item not in inventory")
	ErrSlotEmpty      = errors.New("slot is empty")
	ErrRejected       = errors.New("entity rejected equipment")
)

// Changed is published when a slot gains or loses an item.
type Changed struct {
	Slot     item.Slot
	ItemID   int
	Equipped bool
}

func (Changed) EventName() string { return "equip.changed" }

// Refreshed is published once after a bulk load equipped at least one item.
type Refreshed struct {
	Count int
}

func (Refreshed) EventName() string { return "equip.refreshed" }

// Catalog classifies items.
type Catalog interface {
	IsEquip(itemID int) bool
	SlotOf(itemID int) (item.Slot, error)
}

// Inventory holds items that are not worn.
type Inventory interface {
	HasEnoughItem(itemID, count int) bool
	RemoveItem(itemID, count int) bool
	AddItem(itemID, count int) bool
}

// Entity wears equipment components.
type Entity interface {
	ApplyEquipComponent(itemID int) bool
	RemoveEquipComponent(slot item.Slot)
	EquippedItems() map[item.Slot]int
}

// Mismatch is one disagreement found by Sync.
type Mismatch struct {
	Slot    item.Slot
	Managed int // 0 when the coordinator has nothing in the slot
	Actual  int // 0 when the entity wears nothing in the slot
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: managed=%d actual=%d", m.Slot, m.Managed, m.Actual)
}

// Coordinator is the single source of truth for what is equipped. It is not
// safe for concurrent use.
type Coordinator struct {
	catalog  Catalog
	inv      Inventory
	entity   Entity
	bus      *event.Bus
	equipped map[item.Slot]int
	logger   zerolog.Logger
}

// NewCoordinator wires a coordinator to its collaborators.
func NewCoordinator(catalog Catalog, inv Inventory, entity Entity, bus *event.Bus) *Coordinator {
	return &Coordinator{
		catalog:  catalog,
		inv:      inv,
		entity:   entity,
		bus:      bus,
		equipped: make(map[item.Slot]int),
		logger:   xlog.WithComponent("equip"),
	}
}

// Equip moves itemID from the inventory into slot. An occupied slot is
// unequipped first. Validation failures leave everything untouched.
func (c *Coordinator) Equip(itemID int, slot item.Slot) error {
	if err := c.validate(itemID, slot); err != nil {
		metrics.IncEquip("equip", "invalid")
		c.logger.Warn().Err(err).
			Str("event", "equip.rejected").
			Int("item", itemID).
			Stringer("slot", slot).
			Msg("equip rejected")
		return err
	}

	if c.HasEquipped(slot) {
		if err := c.Unequip(slot); err != nil {
			return err
		}
	}

	if !c.inv.RemoveItem(itemID, 1) {
		metrics.IncEquip("equip", "inventory")
		return fmt.Errorf("%w: %d", ErrNotInInventory, itemID)
	}
	if !c.entity.ApplyEquipComponent(itemID) {
		if !c.inv.AddItem(itemID, 1) {
			c.logger.Error().
				Str("event", "equip.rollback_lost").
				Int("item", itemID).
				Msg("entity rejected equipment and inventory could not take it back")
		}
		metrics.IncEquip("equip", "rejected")
		return fmt.Errorf("%w: %d", ErrRejected, itemID)
	}

	c.equipped[slot] = itemID
	metrics.IncEquip("equip", "ok")
	c.logger.Info().Str("event", "equip.equipped").Int("item", itemID).Stringer("slot", slot).Msg("item equipped")
	c.publish(Changed{Slot: slot, ItemID: itemID, Equipped: true})
	return nil
}

func (c *Coordinator) validate(itemID int, slot item.Slot) error {
	if !c.catalog.IsEquip(itemID) {
		return fmt.Errorf("%w: %d", ErrNotEquippable, itemID)
	}
	configured, err := c.catalog.SlotOf(itemID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotEquippable, err)
	}
	if configured != slot {
		return fmt.Errorf("%w: %d goes to %s, not %s", ErrWrongSlot, itemID, configured, slot)
	}
	if !c.inv.HasEnoughItem(itemID, 1) {
		return fmt.Errorf("%w: %d", ErrNotInInventory, itemID)
	}
	return nil
}

// Unequip moves the item in slot back to the inventory. If the inventory is
// full the item is dropped and the unequip still succeeds.
func (c *Coordinator) Unequip(slot item.Slot) error {
	itemID, ok := c.equipped[slot]
	if !ok || itemID <= 0 {
		metrics.IncEquip("unequip", "empty")
		return fmt.Errorf("%w: %s", ErrSlotEmpty, slot)
	}

	delete(c.equipped, slot)
	c.entity.RemoveEquipComponent(slot)
	if !c.inv.AddItem(itemID, 1) {
		metrics.IncEquip("unequip", "dropped")
		c.logger.Warn().
			Str("event", "equip.inventory_full").
			Int("item", itemID).
			Stringer("slot", slot).
			Msg("inventory full, unequipped item was dropped")
	} else {
		metrics.IncEquip("unequip", "ok")
	}
	c.logger.Info().Str("event", "equip.unequipped").Int("item", itemID).Stringer("slot", slot).Msg("item unequipped")
	c.publish(Changed{Slot: slot, ItemID: itemID, Equipped: false})
	return nil
}

// Equipped returns the item in slot.
func (c *Coordinator) Equipped(slot item.Slot) (int, bool) {
	id, ok := c.equipped[slot]
	return id, ok && id > 0
}

// HasEquipped reports whether slot holds an item.
func (c *Coordinator) HasEquipped(slot item.Slot) bool {
	_, ok := c.Equipped(slot)
	return ok
}

// All returns a copy of the slot → item mapping.
func (c *Coordinator) All() map[item.Slot]int {
	return maps.Clone(c.equipped)
}

// ItemIDs returns the equipped item ids in slot order, the shape a save
// system stores and later hands to LoadFromSave.
func (c *Coordinator) ItemIDs() []int {
	var ids []int
	for _, s := range item.Slots {
		if id, ok := c.Equipped(s); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// LoadFromSave replaces the current equipment with itemIDs. Items are owned
// already, so the inventory is not touched. Each failing id is reported in
// the joined error without stopping the rest.
func (c *Coordinator) LoadFromSave(itemIDs []int) error {
	for slot := range c.equipped {
		c.entity.RemoveEquipComponent(slot)
	}
	clear(c.equipped)

	var errs []error
	for _, id := range itemIDs {
		if id <= 0 {
			continue
		}
		slot, err := c.catalog.SlotOf(id)
		if err != nil {
			c.logger.Warn().Err(err).Str("event", "equip.load_skipped").Int("item", id).Msg("cannot resolve saved equipment")
			errs = append(errs, err)
			continue
		}
		if !c.entity.ApplyEquipComponent(id) {
			err := fmt.Errorf("%w: %d", ErrRejected, id)
			c.logger.Warn().Err(err).Str("event", "equip.load_failed").Int("item", id).Stringer("slot", slot).Msg("failed to equip saved item")
			errs = append(errs, err)
			continue
		}
		c.equipped[slot] = id
	}

	if len(c.equipped) > 0 {
		metrics.IncEquip("load", "ok")
		c.publish(Refreshed{Count: len(c.equipped)})
	}
	return errors.Join(errs...)
}

// Sync compares the managed mapping with what the entity actually wears and
// logs every difference. Nothing is corrected.
func (c *Coordinator) Sync() []Mismatch {
	actual := c.entity.EquippedItems()
	var out []Mismatch
	for _, slot := range item.Slots {
		managed := c.equipped[slot]
		worn := actual[slot]
		if managed == worn {
			continue
		}
		m := Mismatch{Slot: slot, Managed: managed, Actual: worn}
		out = append(out, m)
		c.logger.Warn().
			Str("event", "equip.sync_mismatch").
			Stringer("slot", slot).
			Int("managed", managed).
			Int("actual", worn).
			Msg("equipment state diverged from entity")
	}
	c.logger.Debug().
		Str("event", "equip.synced").
		Int("managed", len(c.equipped)).
		Int("mismatches", len(out)).
		Msg("equipment state checked")
	return out
}

func (c *Coordinator) publish(ev event.Event) {
	if c.bus == nil {
		return
	}
	switch e := ev.(type) {
	case Changed:
		event.Publish(c.bus, e)
	case Refreshed:
		event.Publish(c.bus, e)
	}
}
