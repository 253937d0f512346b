package render

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

// DrawHUD renders the separator, the last messages and the key help line
// at the bottom of the screen.
func (r *Renderer) DrawHUD(messages []string, help string, dead bool) {
	_, screenH := r.screen.Size()
	hudY := screenH - hudHeight

	r.drawHLine(hudY, tcell.ColorGray)

	// Message log (last 3 messages).
	start := max(len(messages)-3, 0)
	for i, msg := range messages[start:] {
		r.drawText(0, hudY+1+i, msg, styleMessage)
	}

	if dead {
		r.drawText(0, screenH-1, "You died. Press q to leave.", styleDead)
		return
	}
	r.drawText(0, screenH-1, help, styleDim)
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

func fmtRatio(cur, limit int) string { return fmt.Sprintf("%d/%d", cur, limit) }

func fmtStats(atk, def int) string { return fmt.Sprintf("ATK %d  DEF %d", atk, def) }

func fmtCooldown(d time.Duration) string {
	return fmt.Sprintf("Attack in %.1fs", d.Seconds())
}

func fmtSlotKey(n int, slot string) string { return fmt.Sprintf("%d %-5s ", n, slot) }

func fmtBackpackHeader(used, capacity int) string {
	return fmt.Sprintf("Backpack %d/%d", used, capacity)
}

func fmtStack(s StackView) string {
	name := s.Name
	if s.Equip {
		name += " *"
	}
	if s.Count > 1 {
		return fmt.Sprintf("%s x%d", name, s.Count)
	}
	return name
}

func fmtMonster(m MonsterView) string {
	return fmt.Sprintf("%s #%d  %d/%d", m.Name, m.UID, m.Health, m.MaxHealth)
}
