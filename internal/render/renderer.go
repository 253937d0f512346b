// Package render draws a game View onto a tcell screen.
package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Layout constants. The screen is split into a left column (stats and
// equipment) and a right column (backpack and monsters) above a message log.
const (
	leftX     = 1
	rightX    = 42
	panelTop  = 2
	hudHeight = 5
)

// Renderer draws frames onto one screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a Renderer for the given screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw renders a full frame and shows it.
func (r *Renderer) Draw(v View) {
	r.screen.Clear()
	_, h := r.screen.Size()

	r.drawText(leftX, 0, v.Title, styleTitle)

	y := r.drawStats(leftX, panelTop, v.Player)
	r.drawEquipment(leftX, y+1, v.Equipment)

	y = r.drawBackpack(rightX, panelTop, v.Backpack, v.Capacity, v.Cursor)
	r.drawMonsters(rightX, y+1, v.Monsters, h-hudHeight-1)

	r.DrawHUD(v.Messages, v.Help, v.Player.Dead)
	r.screen.Show()
}

func (r *Renderer) drawStats(x, y int, p PlayerView) int {
	name := p.Name
	if p.Glyph != "" {
		name = p.Glyph + " " + p.Name
	}
	r.drawText(x, y, name, styleHeader)
	y++
	y = r.drawMeter(x, y, "HP ", p.Health, p.MaxHealth)
	y = r.drawMeter(x, y, "Hun", p.Hunger, p.MaxHunger)
	y = r.drawMeter(x, y, "San", p.Sanity, p.MaxSanity)
	r.drawText(x, y, fmtStats(p.Attack, p.Defense), styleText)
	y++
	if p.Cooldown > 0 {
		r.drawText(x, y, fmtCooldown(p.Cooldown), styleDim)
	} else {
		r.drawText(x, y, "Ready to attack", styleText)
	}
	return y + 1
}

func (r *Renderer) drawMeter(x, y int, label string, cur, limit int) int {
	const width = 20
	col := r.drawText(x, y, label+" ", styleText)
	filled := 0
	if limit > 0 {
		filled = min(max(cur, 0)*width/limit, width)
	}
	fill := tcell.StyleDefault.Background(barColor(cur, limit))
	empty := tcell.StyleDefault.Background(tcell.ColorDarkSlateGray)
	for i := range width {
		st := empty
		if i < filled {
			st = fill
		}
		r.screen.SetContent(col+i, y, ' ', nil, st)
	}
	r.drawText(col+width+1, y, fmtRatio(cur, limit), styleText)
	return y + 1
}

func (r *Renderer) drawEquipment(x, y int, slots []SlotView) int {
	r.drawText(x, y, "Equipment", styleHeader)
	y++
	for i, s := range slots {
		col := r.drawText(x, y, fmtSlotKey(i+1, s.Slot), styleDim)
		if s.Name == "" {
			r.drawText(col, y, "-", styleDim)
		} else {
			col = r.putGlyph(col, y, s.Glyph, styleText)
			r.drawText(col+1, y, s.Name, styleText)
		}
		y++
	}
	return y
}

func (r *Renderer) drawBackpack(x, y int, stacks []StackView, capacity, cursor int) int {
	r.drawText(x, y, fmtBackpackHeader(len(stacks), capacity), styleHeader)
	y++
	if len(stacks) == 0 {
		r.drawText(x, y, "(empty)", styleDim)
		return y + 1
	}
	for i, s := range stacks {
		style := styleText
		if i == cursor {
			style = styleSelected
		}
		col := r.drawText(x, y, " ", style)
		col = r.putGlyph(col, y, s.Glyph, style)
		r.drawText(col+1, y, fmtStack(s), style)
		y++
	}
	return y
}

func (r *Renderer) drawMonsters(x, y int, monsters []MonsterView, maxY int) {
	r.drawText(x, y, "Monsters", styleHeader)
	y++
	if len(monsters) == 0 {
		r.drawText(x, y, "All quiet.", styleDim)
		return
	}
	for _, m := range monsters {
		if y >= maxY {
			return
		}
		col := r.putGlyph(x, y, m.Glyph, styleText)
		r.drawText(col+1, y, fmtMonster(m), styleText)
		y++
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at (x, y) and
// returns the column after it.
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) int {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return x
	}
	r.screen.SetContent(x, y, runes[0], runes[1:], style)
	w := runewidth.StringWidth(glyph)
	if w == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
	return x + max(w, 1)
}

// drawText writes text starting at column x and returns the column after
// the last cell written. Wide runes advance two columns.
func (r *Renderer) drawText(x, y int, text string, style tcell.Style) int {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col += max(runewidth.RuneWidth(ch), 1)
	}
	return col
}
