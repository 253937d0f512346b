package render

import "github.com/gdamore/tcell/v2"

// Panel and bar styles. Emoji carry their own colours, so only text and
// frame elements are tinted.
var (
	styleText     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleHeader   = tcell.StyleDefault.Foreground(tcell.ColorLightCyan).Bold(true)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightYellow)
	styleMessage  = tcell.StyleDefault.Foreground(tcell.ColorLightYellow)
	styleDead     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// barColor picks a fill colour for a meter by how full it is.
func barColor(cur, limit int) tcell.Color {
	if limit <= 0 {
		return tcell.ColorGray
	}
	switch pct := cur * 100 / limit; {
	case pct > 60:
		return tcell.ColorGreen
	case pct > 25:
		return tcell.ColorYellow
	default:
		return tcell.ColorRed
	}
}
