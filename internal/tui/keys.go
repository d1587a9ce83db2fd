package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Interact key.Binding
	Attack   key.Binding
	Cycle    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "w", "k"), key.WithHelp("↑/w", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "s", "j"), key.WithHelp("↓/s", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "a", "h"), key.WithHelp("←/a", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "d", "l"), key.WithHelp("→/d", "right")),
		Interact: key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "interact")),
		Attack:   key.NewBinding(key.WithKeys(" ", "f"), key.WithHelp("space", "attack")),
		Cycle:    key.NewBinding(key.WithKeys("tab", "q"), key.WithHelp("tab", "weapon")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Interact, k.Attack, k.Cycle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Interact, k.Attack, k.Cycle},
		{k.Help, k.Quit},
	}
}
