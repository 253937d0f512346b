// Package item resolves item ids to their classification and equipment
// metadata using the Item and Equip data tables.
package item

import (
	"errors"
	"fmt"
	"strings"

	"campfire/internal/config"
)

// Type classifies an item.
type Type uint8

const (
	TypeNone  Type = iota
	TypeItem       // consumables and materials
	TypeEquip      // goes into an equipment slot
)

func (t Type) String() string {
	switch t {
	case TypeItem:
		return "Item"
	case TypeEquip:
		return "Equip"
	}
	return "None"
}

// ParseType maps a table value to a Type. Unknown names yield TypeNone.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item":
		return TypeItem
	case "equip":
		return TypeEquip
	}
	return TypeNone
}

// Slot is where a piece of equipment is worn.
type Slot uint8

const (
	SlotNone Slot = iota
	SlotHead
	SlotBody
	SlotHand
)

// Slots lists every equippable slot in display order.
var Slots = []Slot{SlotHead, SlotBody, SlotHand}

func (s Slot) String() string {
	switch s {
	case SlotHead:
		return "Head"
	case SlotBody:
		return "Body"
	case SlotHand:
		return "Hand"
	}
	return "None"
}

// ParseSlot maps a table value to a Slot. Unknown names yield SlotNone.
func ParseSlot(s string) Slot {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "head":
		return SlotHead
	case "body":
		return SlotBody
	case "hand":
		return SlotHand
	}
	return SlotNone
}

var (
	ErrUnknownItem  = errors.New("unknown item")
	ErrNotEquipment = errors.New("item is not equipment")
	ErrNoEquipSpec  = errors.New("equipment config not found")
	ErrInvalidSlot  = errors.New("equipment has no valid slot")
)

// Default stack sizes when the Item table has no MaxStack column.
const (
	DefaultMaxStack      = 20
	DefaultEquipMaxStack = 1
)

// Item is the resolved view of one Item table row.
type Item struct {
	ID       int
	Name     string
	Glyph    string
	Type     Type
	MaxStack int

	// Consumable effects, zero for equipment.
	Heal int
	Food int
}

// IsEquip reports whether the item can be equipped.
func (i Item) IsEquip() bool { return i.Type == TypeEquip }

// EquipSpec is the resolved view of one Equip table row.
type EquipSpec struct {
	ItemID  int
	Name    string
	Glyph   string
	Slot    Slot
	Attack  int
	Defense int
}

// Catalog caches Item rows and resolves Equip rows. It is owned by one game
// session and is not safe for concurrent use.
type Catalog struct {
	items  config.Lookup
	equips config.Lookup
	cache  map[int]Item
}

// NewCatalog builds a catalog over the Item and Equip tables.
func NewCatalog(items, equips config.Lookup) *Catalog {
	return &Catalog{items: items, equips: equips, cache: make(map[int]Item)}
}

// NewCatalogFromTables is a convenience wrapper over a loaded table set.
func NewCatalogFromTables(ts *config.Tables) *Catalog {
	return NewCatalog(ts.MustReader(config.TableItem), ts.MustReader(config.TableEquip))
}

// Reset swaps in new tables and drops the cache.
func (c *Catalog) Reset(items, equips config.Lookup) {
	c.items = items
	c.equips = equips
	clear(c.cache)
}

// Get resolves id from the Item table.
func (c *Catalog) Get(id int) (Item, bool) {
	if it, ok := c.cache[id]; ok {
		return it, true
	}
	if c.items == nil || !c.items.HasKey(id) {
		return Item{}, false
	}
	typ := ParseType(config.Value(c.items, id, "Type", ""))
	maxStack := DefaultMaxStack
	if typ == TypeEquip {
		maxStack = DefaultEquipMaxStack
	}
	it := Item{
		ID:       id,
		Name:     config.Value(c.items, id, "Name", fmt.Sprintf("item #%d", id)),
		Glyph:    config.Value(c.items, id, "Glyph", "?"),
		Type:     typ,
		MaxStack: config.Value(c.items, id, "MaxStack", maxStack),
		Heal:     config.Value(c.items, id, "Heal", 0),
		Food:     config.Value(c.items, id, "Food", 0),
	}
	if it.MaxStack < 1 {
		it.MaxStack = 1
	}
	c.cache[id] = it
	return it, true
}

// Name returns a display name for id, falling back to its number.
func (c *Catalog) Name(id int) string {
	if it, ok := c.Get(id); ok {
		return it.Name
	}
	return fmt.Sprintf("item #%d", id)
}

// IsEquip reports whether id is classified as equipment.
func (c *Catalog) IsEquip(id int) bool {
	it, ok := c.Get(id)
	return ok && it.IsEquip()
}

// MaxStack returns how many of id fit in one inventory stack.
func (c *Catalog) MaxStack(id int) int {
	if it, ok := c.Get(id); ok {
		return it.MaxStack
	}
	return DefaultMaxStack
}

// SlotOf returns the configured slot of an Equip row without checking the
// Item table classification.
func (c *Catalog) SlotOf(id int) (Slot, error) {
	if c.equips == nil || !c.equips.HasKey(id) {
		return SlotNone, fmt.Errorf("%w: %d", ErrNoEquipSpec, id)
	}
	slot := ParseSlot(config.Value(c.equips, id, "Type", ""))
	if slot == SlotNone {
		return SlotNone, fmt.Errorf("%w: %d", ErrInvalidSlot, id)
	}
	return slot, nil
}

// EquipSpec resolves the equipment metadata for id.
func (c *Catalog) EquipSpec(id int) (EquipSpec, error) {
	slot, err := c.SlotOf(id)
	if err != nil {
		return EquipSpec{}, err
	}
	spec := EquipSpec{
		ItemID:  id,
		Slot:    slot,
		Attack:  config.Value(c.equips, id, "Attack", 0),
		Defense: config.Value(c.equips, id, "Defense", 0),
		Name:    fmt.Sprintf("item #%d", id),
		Glyph:   "?",
	}
	if it, ok := c.Get(id); ok {
		spec.Name = it.Name
		spec.Glyph = it.Glyph
	}
	return spec, nil
}
