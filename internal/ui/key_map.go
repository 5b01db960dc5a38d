package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of every view. Each view shows its own subset as help.
type keyMap struct {
	enter   key.Binding
	sync    key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	cancel  key.Binding
	open    key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "browse mods")),
		sync:    key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("s", "sync with server")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start sync")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "back")),
		cancel:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "stop after current chunk")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open mod folder")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "profiles")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) profileHelp() []key.Binding {
	return []key.Binding{k.enter, k.quit}
}

func (k keyMap) modHelp() []key.Binding {
	return []key.Binding{k.sync, k.open, k.back, k.quit}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.yes, k.no}
}

// syncHelp is empty once a cancel is pending, since cancel is then disabled.
func (k keyMap) syncHelp() []key.Binding {
	return []key.Binding{k.cancel}
}

func (k keyMap) resultHelp() []key.Binding {
	return []key.Binding{k.restart, k.open, k.quit}
}
