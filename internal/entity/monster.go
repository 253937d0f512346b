package entity

import (
	"errors"
	"fmt"
	"time"

	"campfire/internal/config"
	"campfire/internal/object"
)

// ErrUnknownMonster is returned for ids missing from the Monster table.
var ErrUnknownMonster = errors.New("unknown monster")

// Monster is a hostile combatant built from the Monster table.
type Monster struct {
	Combatant
	drops []int
}

// NewMonster builds monster monsterID from its table row.
func NewMonster(monsterID int, table config.Lookup) (*Monster, error) {
	if table == nil || !table.HasKey(monsterID) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMonster, monsterID)
	}
	seconds := config.Value(table, monsterID, "AttackCooldown", 1.0)
	m := &Monster{
		Combatant: newCombatant(object.KindMonster, Stats{
			Name:           config.Value(table, monsterID, "Name", fmt.Sprintf("monster #%d", monsterID)),
			Glyph:          config.Value(table, monsterID, "Glyph", "👾"),
			MaxHealth:      config.Value(table, monsterID, "MaxHealth", 10),
			Attack:         config.Value(table, monsterID, "Attack", 1),
			Defense:        config.Value(table, monsterID, "Defense", 0),
			AttackCooldown: time.Duration(seconds * float64(time.Second)),
		}, nil),
		drops: config.Value[[]int](table, monsterID, "Drops", nil),
	}
	m.configID = monsterID
	// Freshly spawned monsters wait one full cooldown before their first hit.
	m.attackTimer.Start()
	return m, nil
}

// Drops lists the item ids the monster leaves behind, one unit each.
func (m *Monster) Drops() []int { return append([]int(nil), m.drops...) }
