package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Key represents a key binding.
type Key struct {
	Keys    []string
	Help    string
	Enabled bool
}

func newKey(help string, keys ...string) Key {
	return Key{Keys: keys, Help: help, Enabled: true}
}

// Matches checks if a key message matches this key binding.
func (k Key) Matches(msg tea.KeyMsg) bool {
	if !k.Enabled {
		return false
	}

	keyStr := msg.String()
	for _, key := range k.Keys {
		if keyStr == key {
			return true
		}
	}
	return false
}

// MatchesAny checks if a key message matches any of the provided key bindings.
func MatchesAny(msg tea.KeyMsg, keys ...Key) bool {
	for _, k := range keys {
		if k.Matches(msg) {
			return true
		}
	}
	return false
}

// moduleKey binds a function key to a module.
type moduleKey struct {
	Key
	Module Module
}

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up       Key
	Down     Key
	PageUp   Key
	PageDown Key
	Home     Key

	Select Key
	Back   Key
	Quit   Key
	Search Key

	// Module actions. Each view reads only the ones it offers.
	Complete    Key
	Clone       Key
	CloseDoc    Key
	Recalculate Key
	Filter      Key
	Kind        Key
	TypeFilter  Key
	LowStock    Key

	Modules []moduleKey
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       newKey("up", "up"),
		Down:     newKey("down", "down"),
		PageUp:   newKey("page up", "pgup", "ctrl+u"),
		PageDown: newKey("page down", "pgdown", "ctrl+d"),
		Home:     newKey("top", "home", "g"),

		Select: newKey("select", "enter"),
		Back:   newKey("back", "esc"),
		Quit:   newKey("quit", "q", "ctrl+c"),
		Search: newKey("search", "/"),

		Complete:    newKey("complete order", "c"),
		Clone:       newKey("clone", "n"),
		CloseDoc:    newKey("close document", "x"),
		Recalculate: newKey("recalculate recipe", "r"),
		Filter:      newKey("status filter", "f"),
		Kind:        newKey("kind filter", "k"),
		TypeFilter:  newKey("type filter", "t"),
		LowStock:    newKey("low stock", "l"),

		Modules: []moduleKey{
			{newKey("Help", "f1", "?"), ModuleHelp},
			{newKey("Dashboard", "f2"), ModuleDashboard},
			{newKey("Recipes", "f3"), ModuleRecipes},
			{newKey("Orders", "f4"), ModuleOrders},
			{newKey("Inventory", "f5"), ModuleInventory},
			{newKey("Documents", "f6"), ModuleDocuments},
			{newKey("Settings", "f7"), ModuleSettings},
			{newKey("Quit", "f10"), ModuleQuit},
		},
	}
}

// IsQuit checks if the key message is a quit command.
func (km KeyMap) IsQuit(msg tea.KeyMsg) bool {
	if km.Quit.Matches(msg) {
		return true
	}
	m, ok := km.ModuleFor(msg)
	return ok && m == ModuleQuit
}

// ModuleFor returns the module bound to msg, if any.
func (km KeyMap) ModuleFor(msg tea.KeyMsg) (Module, bool) {
	for _, mk := range km.Modules {
		if mk.Matches(msg) {
			return mk.Module, true
		}
	}
	return 0, false
}

// StatusBarHelp returns the help text for the status bar.
func (km KeyMap) StatusBarHelp() string {
	return "[F1]Help [F2]Dash [F3]Recipes [F4]Orders [F5]Stock [F6]Docs [F7]Settings [F10]Quit"
}
