package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

// keyMap holds the dashboard bindings. It satisfies help.KeyMap.
type keyMap struct {
	Quit      key.Binding
	Refresh   key.Binding
	Prev      key.Binding
	Next      key.Binding
	Open      key.Binding
	OpenSlot  key.Binding
	Close     key.Binding
	Particles key.Binding
	Help      key.Binding
}

func newKeyMap(slots Slots) keyMap {
	var slotKeys []string
	for _, m := range threshold.All {
		if k := slots[m].Key; k != "" {
			slotKeys = append(slotKeys, k)
		}
	}
	slotHelp := "1-4"
	if len(slotKeys) > 0 {
		slotHelp = slotKeys[0]
		if len(slotKeys) > 1 {
			slotHelp += "-" + slotKeys[len(slotKeys)-1]
		}
	}

	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh now"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous card"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next card"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		OpenSlot: key.NewBinding(
			key.WithKeys(slotKeys...),
			key.WithHelp(slotHelp, "open metric"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Particles: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "particles"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Open, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Open, k.OpenSlot, k.Close},
		{k.Refresh, k.Particles, k.Help, k.Quit},
	}
}
