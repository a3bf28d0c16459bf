package session

import "charm.land/bubbles/v2/key"

// keyMap holds the bindings of the session screen. Option letters and
// numbers are matched separately, since their range depends on the question.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Next   key.Binding
	Prev   key.Binding
	Quit   key.Binding
	Help   key.Binding
	Yes    key.Binding
	No     key.Binding
	Force  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "choose")),
		Down:   key.NewBinding(key.WithKeys("down")),
		Submit: key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "submit")),
		Next:   key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next")),
		Prev:   key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "back")),
		Quit:   key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "end session")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "end session")),
		No:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "keep going")),
		Force:  key.NewBinding(key.WithKeys("ctrl+c")),
	}
}
