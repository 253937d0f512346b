package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campfire/internal/item"
	"campfire/internal/render"

	"github.com/gdamore/tcell/v2"
)

// tickRate is how often the loop advances the session when no key arrives.
const tickRate = 100 * time.Millisecond

// Run starts the session, drives it from screen input and a ticker, and
// stops it when the player quits or ctx is cancelled. The caller owns the
// screen and must Fini it after Run returns.
func (g *Game) Run(ctx context.Context, screen tcell.Screen) error {
	if err := g.Start(); err != nil {
		return err
	}
	defer g.Stop() //nolint:errcheck // Stop logs its own failure

	r := render.NewRenderer(screen)
	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go pollEvents(screen, events, done)

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()
	last := time.Now()

	for {
		r.Draw(g.View())
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if g.HandleAction(keyToAction(ev)) {
					return nil
				}
			}
		case now := <-ticker.C:
			g.Tick(now.Sub(last))
			last = now
		}
	}
}

// pollEvents forwards screen events until the screen is finalised or done
// is closed.
func pollEvents(screen tcell.Screen, out chan<- tcell.Event, done <-chan struct{}) {
	defer close(out)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

// HandleAction applies one player action and reports whether the player
// asked to quit.
func (g *Game) HandleAction(a Action) bool {
	if a == ActionQuit {
		return true
	}
	if g.dead {
		return false
	}

	switch a {
	case ActionCursorUp:
		g.moveCursor(-1)
	case ActionCursorDown:
		g.moveCursor(1)

	case ActionAttack:
		switch err := g.AttackNearest(); {
		case errors.Is(err, ErrNoTarget):
			g.addMessage("There is nothing to attack.")
		case errors.Is(err, ErrCoolingDown):
			g.addMessage("You are still recovering.")
		}

	case ActionEquip:
		id, ok := g.selected()
		if !ok {
			g.addMessage("Nothing selected.")
			return false
		}
		if err := g.Equip(id); err != nil {
			g.addMessage(fmt.Sprintf("Cannot equip the %s.", g.catalog.Name(id)))
		}

	case ActionUse:
		id, ok := g.selected()
		if !ok {
			g.addMessage("Nothing selected.")
			return false
		}
		if err := g.Consume(id); err != nil {
			g.addMessage(fmt.Sprintf("You cannot use the %s.", g.catalog.Name(id)))
		}

	case ActionUnequipHead, ActionUnequipBody, ActionUnequipHand:
		slot := actionToSlot(a)
		if err := g.Unequip(slot); err != nil {
			g.addMessage(fmt.Sprintf("Nothing worn on %s.", slot))
		}

	case ActionSpawn:
		if g.SpawnNow() == nil {
			g.addMessage("Nothing answers the call.")
		}
	}
	return false
}

func (g *Game) moveCursor(delta int) {
	n := g.inv.Used()
	if n == 0 {
		g.cursor = 0
		return
	}
	g.cursor = (g.cursor + delta + n) % n
}

// selected returns the item id under the backpack cursor.
func (g *Game) selected() (int, bool) {
	stacks := g.inv.Stacks()
	if len(stacks) == 0 {
		return 0, false
	}
	g.cursor = min(max(g.cursor, 0), len(stacks)-1)
	return stacks[g.cursor].ItemID, true
}

// View snapshots the session for the renderer.
func (g *Game) View() render.View {
	p := g.player
	v := render.View{
		Title: fmt.Sprintf("🔥 Campfire  %s", g.elapsed.Truncate(time.Second)),
		Player: render.PlayerView{
			Name:      p.Name(),
			Glyph:     p.Glyph(),
			Health:    p.Health(),
			MaxHealth: p.MaxHealth(),
			Hunger:    p.Hunger(),
			MaxHunger: p.MaxHunger(),
			Sanity:    p.Sanity(),
			MaxSanity: p.MaxSanity(),
			Attack:    p.TotalAttack(),
			Defense:   p.TotalDefense(),
			Cooldown:  p.AttackTimer().Remaining,
			Dead:      g.dead,
		},
		Capacity: g.inv.Capacity(),
		Messages: g.Messages(),
		Help:     helpLine,
	}

	for _, slot := range item.Slots {
		sv := render.SlotView{Slot: slot.String()}
		if id, ok := g.equip.Equipped(slot); ok {
			if it, ok := g.catalog.Get(id); ok {
				sv.Name, sv.Glyph = it.Name, it.Glyph
			} else {
				sv.Name, sv.Glyph = g.catalog.Name(id), "?"
			}
		}
		v.Equipment = append(v.Equipment, sv)
	}

	for _, s := range g.inv.Stacks() {
		sv := render.StackView{Name: g.catalog.Name(s.ItemID), Glyph: "?", Count: s.Count}
		if it, ok := g.catalog.Get(s.ItemID); ok {
			sv.Glyph, sv.Equip = it.Glyph, it.IsEquip()
		}
		v.Backpack = append(v.Backpack, sv)
	}
	if n := len(v.Backpack); n > 0 {
		v.Cursor = min(max(g.cursor, 0), n-1)
	}

	for _, m := range g.Monsters() {
		v.Monsters = append(v.Monsters, render.MonsterView{
			UID:       m.UID(),
			Glyph:     m.Glyph(),
			Name:      m.Name(),
			Health:    m.Health(),
			MaxHealth: m.MaxHealth(),
		})
	}
	return v
}
