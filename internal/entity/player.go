package entity

import (
	"campfire/internal/config"
	"campfire/internal/object"
)

// Player is the session's controllable character.
type Player struct {
	Combatant

	hunger    int
	maxHunger int
	sanity    int
	maxSanity int
}

// NewPlayer creates a player from settings. specs resolves equipment.
func NewPlayer(name string, s config.PlayerSettings, specs SpecSource) *Player {
	p := &Player{
		Combatant: newCombatant(object.KindPlayer, Stats{
			Name:           name,
			Glyph:          "🧑",
			MaxHealth:      s.MaxHealth,
			Attack:         s.BaseAttack,
			Defense:        s.BaseDefense,
			AttackCooldown: s.AttackCooldown,
		}, specs),
		maxHunger: max(s.MaxHunger, 0),
		maxSanity: max(s.MaxSanity, 0),
	}
	p.hunger = p.maxHunger
	p.sanity = p.maxSanity
	return p
}

func (p *Player) Hunger() int    { return p.hunger }
func (p *Player) MaxHunger() int { return p.maxHunger }
func (p *Player) Sanity() int    { return p.sanity }
func (p *Player) MaxSanity() int { return p.maxSanity }

// SetHunger clamps v into [0, MaxHunger].
func (p *Player) SetHunger(v int) { p.hunger = clamp(v, 0, p.maxHunger) }

// SetSanity clamps v into [0, MaxSanity].
func (p *Player) SetSanity(v int) { p.sanity = clamp(v, 0, p.maxSanity) }

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
