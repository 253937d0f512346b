// Package inventory implements the player's backpack: a fixed number of slots
// each holding one stack of a single item id.
package inventory

import (
	"slices"

	"campfire/internal/event"
)

// Changed is published after every successful mutation.
type Changed struct {
	ItemID int
	Delta  int // positive when items were added
	Count  int // total held after the change
}

func (Changed) EventName() string { return "inventory.changed" }

// StackSizer reports how many units of an item fit in one slot.
type StackSizer interface {
	MaxStack(itemID int) int
}

// Stack is one occupied backpack slot.
type Stack struct {
	ItemID int
	Count  int
}

// Inventory is a capacity-bounded list of stacks. All mutations are
// all-or-nothing.
type Inventory struct {
	capacity int
	stacks   []Stack
	sizer    StackSizer
	bus      *event.Bus
}

// New returns an empty inventory with the given number of slots. bus may be nil.
func New(capacity int, sizer StackSizer, bus *event.Bus) *Inventory {
	return &Inventory{capacity: capacity, sizer: sizer, bus: bus}
}

// Capacity returns the number of slots.
func (inv *Inventory) Capacity() int { return inv.capacity }

// Used returns the number of occupied slots.
func (inv *Inventory) Used() int { return len(inv.stacks) }

// Stacks returns a copy of the occupied slots in order.
func (inv *Inventory) Stacks() []Stack { return slices.Clone(inv.stacks) }

// Count returns the total number of itemID held.
func (inv *Inventory) Count(itemID int) int {
	n := 0
	for _, s := range inv.stacks {
		if s.ItemID == itemID {
			n += s.Count
		}
	}
	return n
}

// HasEnoughItem reports whether at least count units of itemID are held.
func (inv *Inventory) HasEnoughItem(itemID, count int) bool {
	return count > 0 && inv.Count(itemID) >= count
}

func (inv *Inventory) maxStack(itemID int) int {
	if inv.sizer == nil {
		return 1
	}
	if n := inv.sizer.MaxStack(itemID); n > 0 {
		return n
	}
	return 1
}

// CanAdd reports whether AddItem(itemID, count) would succeed.
func (inv *Inventory) CanAdd(itemID, count int) bool {
	if count <= 0 || itemID <= 0 {
		return false
	}
	per := inv.maxStack(itemID)
	room := 0
	for _, s := range inv.stacks {
		if s.ItemID == itemID {
			room += max(per-s.Count, 0)
		}
	}
	room += (inv.capacity - len(inv.stacks)) * per
	return room >= count
}

// AddItem stores count units of itemID, topping up existing stacks before
// opening new slots. It returns false and changes nothing when they do not fit.
func (inv *Inventory) AddItem(itemID, count int) bool {
	if !inv.CanAdd(itemID, count) {
		return false
	}
	per := inv.maxStack(itemID)
	left := count
	for i := range inv.stacks {
		if left == 0 {
			break
		}
		s := &inv.stacks[i]
		if s.ItemID != itemID || s.Count >= per {
			continue
		}
		n := min(per-s.Count, left)
		s.Count += n
		left -= n
	}
	for left > 0 {
		n := min(per, left)
		inv.stacks = append(inv.stacks, Stack{ItemID: itemID, Count: n})
		left -= n
	}
	inv.publish(itemID, count)
	return true
}

// RemoveItem takes count units of itemID, draining the last stacks first.
// It returns false and changes nothing when not enough are held.
func (inv *Inventory) RemoveItem(itemID, count int) bool {
	if !inv.HasEnoughItem(itemID, count) {
		return false
	}
	left := count
	for i := len(inv.stacks) - 1; i >= 0 && left > 0; i-- {
		s := &inv.stacks[i]
		if s.ItemID != itemID {
			continue
		}
		n := min(s.Count, left)
		s.Count -= n
		left -= n
	}
	inv.stacks = slices.DeleteFunc(inv.stacks, func(s Stack) bool { return s.Count == 0 })
	inv.publish(itemID, -count)
	return true
}

func (inv *Inventory) publish(itemID, delta int) {
	if inv.bus == nil {
		return
	}
	event.Publish(inv.bus, Changed{ItemID: itemID, Delta: delta, Count: inv.Count(itemID)})
}
