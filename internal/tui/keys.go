package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the global bindings
type keyMap struct {
	Home       key.Binding
	Goals      key.Binding
	Parameters key.Binding
	Compare    key.Binding
	Optimize   key.Binding
	Results    key.Binding
	Undo       key.Binding
	Share      key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Home:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Goals:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "goals")),
		Parameters: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "parameters")),
		Compare:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
		Optimize:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "optimize")),
		Results:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "results")),
		Undo:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Share:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy share code")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the status bar
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.Goals, k.Parameters, k.Compare, k.Optimize, k.Results, k.Help, k.Quit}
}

// FullHelp is shown on the help screen
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.Goals, k.Parameters, k.Compare, k.Optimize, k.Results},
		{k.Undo, k.Share, k.Help, k.Back, k.Quit},
	}
}

