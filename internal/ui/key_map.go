package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	newPost key.Binding
	refresh key.Binding
	focus   key.Binding
	save    key.Binding
	gallery key.Binding
	upload  key.Binding
	insert  key.Binding
	remove  key.Binding
	status  key.Binding
	logout  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		newPost: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new post")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		gallery: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "gallery")),
		upload:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "upload image")),
		insert:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "insert gallery")),
		remove:  key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		status:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "cycle status")),
		logout:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.newPost, k.refresh, k.focus},
		{k.save, k.gallery, k.upload, k.insert, k.remove, k.status},
		{k.logout, k.quit},
	}
}
