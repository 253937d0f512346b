package render

import "time"

// View is a snapshot of everything one frame shows. The game builds it on
// the loop goroutine so drawing never touches live session state.
type View struct {
	Title     string
	Player    PlayerView
	Equipment []SlotView
	Backpack  []StackView
	Capacity  int
	Cursor    int
	Monsters  []MonsterView
	Messages  []string
	Help      string
}

type PlayerView struct {
	Name      string
	Glyph     string
	Health    int
	MaxHealth int
	Hunger    int
	MaxHunger int
	Sanity    int
	MaxSanity int
	Attack    int
	Defense   int
	Cooldown  time.Duration // remaining attack cooldown
	Dead      bool
}

type SlotView struct {
	Slot  string
	Glyph string
	Name  string // empty when the slot is free
}

type StackView struct {
	Glyph string
	Name  string
	Count int
	Equip bool
}

type MonsterView struct {
	UID       int
	Glyph     string
	Name      string
	Health    int
	MaxHealth int
}
