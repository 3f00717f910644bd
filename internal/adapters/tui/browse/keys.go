package browse

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev       key.Binding
	Next       key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	TogglePage key.Binding
	Apply      key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle row")),
		TogglePage: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "select/clear page")),
		Apply:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select first n")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Toggle, k.Apply, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Up, k.Down},
		{k.Toggle, k.TogglePage, k.Apply, k.Submit, k.Cancel},
		{k.Help, k.Quit},
	}
}
