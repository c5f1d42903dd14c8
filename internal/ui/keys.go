package ui

import "golang.org/x/mobile/event/key"

const actionQuit = "quit"

// binding maps a key combination to an action name.
type binding struct {
	code   key.Code
	mods   key.Modifiers
	action string
}

const modMask = key.ModShift | key.ModControl | key.ModAlt | key.ModMeta

var bindings = []binding{
	{key.CodeZ, key.ModControl, "undo"},
	{key.CodeZ, key.ModControl | key.ModShift, "redo"},
	{key.CodeY, key.ModControl, "redo"},
	{key.CodeA, key.ModControl, "selectall"},
	{key.CodeC, key.ModControl, "copy"},
	{key.CodeC, key.ModControl | key.ModShift, "copyscene"},
	{key.CodeV, key.ModControl, "pastescene"},
	{key.CodeS, key.ModControl, "save"},
	{key.CodeQ, key.ModControl, actionQuit},
	{key.CodeDeleteForward, 0, "delete"},
	{key.CodeDeleteBackspace, 0, "delete"},
	{key.CodeEscape, 0, "tool:select"},
	{key.CodeV, 0, "tool:select"},
	{key.CodeA, 0, "tool:arrow"},
	{key.CodeR, 0, "tool:shape"},
	{key.CodeP, 0, "tool:ink"},
	{key.CodeM, 0, "tool:effect"},
	{key.CodeLeftSquareBracket, 0, "width:-1"},
	{key.CodeRightSquareBracket, 0, "width:+1"},
	{key.CodeLeftSquareBracket, key.ModShift, "step:brush:-1"},
	{key.CodeRightSquareBracket, key.ModShift, "step:brush:+1"},
	{key.CodeComma, 0, "step:strength:-1"},
	{key.CodeFullStop, 0, "step:strength:+1"},
	{key.CodeK, 0, "cycle:kind"},
	{key.CodeF, 0, "cycle:fill"},
	{key.CodeD, 0, "cycle:dashed"},
	{key.CodeE, 0, "cycle:effect"},
	{key.CodeB, 0, "cycle:mode"},
}

// actionFor returns the action bound to a key press.
func actionFor(e key.Event) (string, bool) {
	if e.Direction == key.DirRelease {
		return "", false
	}
	mods := e.Modifiers & modMask
	for _, b := range bindings {
		if b.code == e.Code && b.mods == mods {
			return b.action, true
		}
	}
	return "", false
}
