package game

import (
	"fmt"

	"campfire/internal/config"
	"campfire/internal/equip"
	"campfire/internal/spawn"
)

func (g *Game) onEquipChanged(e equip.Changed) {
	name := g.catalog.Name(e.ItemID)
	if e.Equipped {
		g.addMessage(fmt.Sprintf("You equip the %s.", name))
		return
	}
	g.addMessage(fmt.Sprintf("You take off the %s.", name))
}

func (g *Game) onMonsterSpawned(e spawn.MonsterSpawned) {
	g.runLog.MonstersSpawned++
	g.addMessage(fmt.Sprintf("A %s crawls out of the dark!", e.Name))
}

// onMonsterKilled records the kill, shows lore on the first kill of each
// kind and puts the drops into the backpack.
func (g *Game) onMonsterKilled(e MonsterKilled) {
	g.runLog.MonstersKilled[e.Name]++
	g.addMessage(fmt.Sprintf("You kill the %s!", e.Name))

	if !g.discovered[e.MonsterID] {
		g.discovered[e.MonsterID] = true
		lore := config.Value(g.tables.MustReader(config.TableMonster), e.MonsterID, "Lore", "")
		if lore != "" {
			g.addMessage(lore)
		}
	}

	for _, id := range e.Drops {
		name := g.catalog.Name(id)
		if g.inv.AddItem(id, 1) {
			g.addMessage(fmt.Sprintf("You pick up %s.", name))
			continue
		}
		g.addMessage(fmt.Sprintf("No room for %s.", name))
	}
}

func (g *Game) onPlayerHit(e PlayerHit) {
	g.runLog.DamageTaken += e.Damage
	g.lastHitBy = e.SourceName
	g.addMessage(fmt.Sprintf("The %s hits you for %d.", e.SourceName, e.Damage))
}

func (g *Game) onPlayerDied(e PlayerDied) {
	g.runLog.CauseOfDeath = e.Cause
	g.spawner.Stop()
	g.logger.Info().Str("event", "game.player_died").Str("cause", e.Cause).Msg("player died")
	if e.Cause == "" {
		g.addMessage("You died.")
		return
	}
	g.addMessage(fmt.Sprintf("You were killed by the %s.", e.Cause))
}

func (g *Game) onItemConsumed(e ItemConsumed) {
	name := g.catalog.Name(e.ItemID)
	g.runLog.ItemsUsed[name]++
	switch {
	case e.Food > 0 && e.Heal > 0:
		g.addMessage(fmt.Sprintf("You eat the %s. (+%d hunger, +%d HP)", name, e.Food, e.Heal))
	case e.Food > 0:
		g.addMessage(fmt.Sprintf("You eat the %s. (+%d hunger)", name, e.Food))
	default:
		g.addMessage(fmt.Sprintf("You apply the %s. (+%d HP)", name, e.Heal))
	}
}
