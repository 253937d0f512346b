// Package entity models the fighting objects of a session: the player and
// the monsters, their equipment components, health and attack cooldown.
package entity

import (
	"slices"
	"time"

	"campfire/internal/item"
	xlog "campfire/internal/log"
	"campfire/internal/object"

	"github.com/rs/zerolog"
)

// SpecSource resolves equipment metadata for an item id.
type SpecSource interface {
	EquipSpec(itemID int) (item.EquipSpec, error)
}

// EquipComponent is one worn piece of equipment and the bonuses it grants.
type EquipComponent struct {
	item.EquipSpec
}

// DamageInfo describes one hit.
type DamageInfo struct {
	Damage     int
	SourceUID  int
	SourceName string
}

// Damageable is anything that can be hit.
type Damageable interface {
	TakeDamage(info DamageInfo) int
	Dead() bool
}

// Stats are the base numbers a combatant is created with.
type Stats struct {
	Name           string
	Glyph          string
	MaxHealth      int
	Attack         int
	Defense        int
	AttackCooldown time.Duration
}

// Combatant holds the state shared by players and monsters. Attack and
// defense totals are derived from the equip list on every read.
type Combatant struct {
	uid      int
	kind     object.Kind
	configID int
	name     string
	glyph    string

	health    int
	maxHealth int

	baseAttack  int
	baseDefense int
	equips      []EquipComponent
	attackTimer *Cooldown

	specs  SpecSource
	logger zerolog.Logger
}

func newCombatant(kind object.Kind, stats Stats, specs SpecSource) Combatant {
	maxHP := max(stats.MaxHealth, 1)
	return Combatant{
		kind:        kind,
		name:        stats.Name,
		glyph:       stats.Glyph,
		health:      maxHP,
		maxHealth:   maxHP,
		baseAttack:  stats.Attack,
		baseDefense: stats.Defense,
		attackTimer: NewCooldown(stats.AttackCooldown),
		specs:       specs,
		logger:      xlog.WithComponent("entity"),
	}
}

func (c *Combatant) UID() int          { return c.uid }
func (c *Combatant) SetUID(uid int)    { c.uid = uid }
func (c *Combatant) Kind() object.Kind { return c.kind }
func (c *Combatant) ConfigID() int     { return c.configID }
func (c *Combatant) Name() string      { return c.name }
func (c *Combatant) Glyph() string     { return c.glyph }
func (c *Combatant) Health() int       { return c.health }
func (c *Combatant) MaxHealth() int    { return c.maxHealth }
func (c *Combatant) BaseAttack() int   { return c.baseAttack }
func (c *Combatant) BaseDefense() int  { return c.baseDefense }
func (c *Combatant) Dead() bool        { return c.health <= 0 }

// TotalAttack is the base attack plus every equipped bonus.
func (c *Combatant) TotalAttack() int {
	total := c.baseAttack
	for _, e := range c.equips {
		total += e.Attack
	}
	return total
}

// TotalDefense is the base defense plus every equipped bonus.
func (c *Combatant) TotalDefense() int {
	total := c.baseDefense
	for _, e := range c.equips {
		total += e.Defense
	}
	return total
}

// CanAttack reports whether the attack cooldown has elapsed.
func (c *Combatant) CanAttack() bool { return c.attackTimer.Ready() }

// AttackTimer returns a copy of the attack cooldown state.
func (c *Combatant) AttackTimer() Cooldown { return *c.attackTimer }

// Update advances timers by dt.
func (c *Combatant) Update(dt time.Duration) {
	c.attackTimer.Update(dt)
}

// Attack hits target with the current total attack and starts the cooldown.
// It returns the damage dealt and whether an attack happened at all.
func (c *Combatant) Attack(target Damageable) (int, bool) {
	if !c.CanAttack() || c.Dead() || target == nil || target.Dead() {
		return 0, false
	}
	dealt := target.TakeDamage(DamageInfo{
		Damage:     c.TotalAttack(),
		SourceUID:  c.uid,
		SourceName: c.name,
	})
	c.attackTimer.Start()
	return dealt, true
}

// TakeDamage applies a hit reduced by total defense. Every hit does at least
// one point; health never drops below zero.
func (c *Combatant) TakeDamage(info DamageInfo) int {
	if c.Dead() {
		return 0
	}
	dmg := max(info.Damage-c.TotalDefense(), 1)
	dmg = min(dmg, c.health)
	c.health -= dmg
	return dmg
}

// Heal restores up to n health, capped at the maximum.
func (c *Combatant) Heal(n int) {
	if n <= 0 || c.Dead() {
		return
	}
	c.health = min(c.health+n, c.maxHealth)
}

// ApplyEquipComponent resolves itemID and wears it, replacing whatever was in
// the same slot. It returns false when the item cannot be resolved.
func (c *Combatant) ApplyEquipComponent(itemID int) bool {
	if c.specs == nil {
		c.logger.Warn().Str("event", "entity.equip_unsupported").Int("item", itemID).Msg("entity cannot wear equipment")
		return false
	}
	spec, err := c.specs.EquipSpec(itemID)
	if err != nil {
		c.logger.Error().Err(err).Str("event", "entity.equip_spec_missing").Int("item", itemID).Msg("cannot resolve equipment")
		return false
	}
	c.RemoveEquipComponent(spec.Slot)
	c.equips = append(c.equips, EquipComponent{EquipSpec: spec})
	return true
}

// RemoveEquipComponent drops the component worn in slot, if any.
func (c *Combatant) RemoveEquipComponent(slot item.Slot) {
	c.equips = slices.DeleteFunc(c.equips, func(e EquipComponent) bool { return e.Slot == slot })
}

// EquipBySlot returns the component worn in slot.
func (c *Combatant) EquipBySlot(slot item.Slot) (EquipComponent, bool) {
	for _, e := range c.equips {
		if e.Slot == slot {
			return e, true
		}
	}
	return EquipComponent{}, false
}

// EquipComponents returns a copy of the worn components in equip order.
func (c *Combatant) EquipComponents() []EquipComponent {
	return slices.Clone(c.equips)
}

// EquippedItems maps each occupied slot to the item id worn there.
func (c *Combatant) EquippedItems() map[item.Slot]int {
	out := make(map[item.Slot]int, len(c.equips))
	for _, e := range c.equips {
		out[e.Slot] = e.ItemID
	}
	return out
}
