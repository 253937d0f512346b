package game

import (
	"campfire/internal/item"

	"github.com/gdamore/tcell/v2"
)

// Action represents a player-requested game action.
type Action uint8

const (
	ActionNone Action = iota
	ActionCursorUp
	ActionCursorDown
	ActionAttack
	ActionEquip
	ActionUse
	ActionUnequipHead
	ActionUnequipBody
	ActionUnequipHand
	ActionSpawn
	ActionQuit
)

const helpLine = "jk select  e equip  u use  1-3 unequip  a attack  s spawn  q quit"

// keyToAction maps a tcell key event to a game action.
func keyToAction(ev *tcell.EventKey) Action {
	// Named keys.
	switch ev.Key() {
	case tcell.KeyUp:
		return ActionCursorUp
	case tcell.KeyDown:
		return ActionCursorDown
	case tcell.KeyEnter:
		return ActionEquip
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	}

	// Rune keys.
	switch ev.Rune() {
	case 'k', 'K':
		return ActionCursorUp
	case 'j', 'J':
		return ActionCursorDown
	case 'a', 'A', ' ':
		return ActionAttack
	case 'e', 'E':
		return ActionEquip
	case 'u', 'U':
		return ActionUse
	case '1':
		return ActionUnequipHead
	case '2':
		return ActionUnequipBody
	case '3':
		return ActionUnequipHand
	case 's', 'S':
		return ActionSpawn
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}

// actionToSlot converts an unequip action to the slot it frees.
func actionToSlot(a Action) item.Slot {
	switch a {
	case ActionUnequipHead:
		return item.SlotHead
	case ActionUnequipBody:
		return item.SlotBody
	case ActionUnequipHand:
		return item.SlotHand
	}
	return item.SlotNone
}
