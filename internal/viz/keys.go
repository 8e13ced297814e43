package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause        key.Binding
	Forward      key.Binding
	Back         key.Binding
	First        key.Binding
	Last         key.Binding
	Faster       key.Binding
	Slower       key.Binding
	NewRun       key.Binding
	SimPause     key.Binding
	SimStep      key.Binding
	Wind         key.Binding
	WindLeft     key.Binding
	WindRight    key.Binding
	WindWeaker   key.Binding
	WindStronger key.Binding
	Thunder      key.Binding
	Charts       key.Binding
	Theme        key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Back, k.Forward, k.NewRun, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Back, k.Forward, k.First, k.Last, k.Faster, k.Slower},
		{k.NewRun, k.SimPause, k.SimStep},
		{k.Wind, k.WindLeft, k.WindRight, k.WindWeaker, k.WindStronger, k.Thunder},
		{k.Charts, k.Theme, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "play/pause"),
	),
	Forward: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next frame"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "previous frame"),
	),
	First: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home/g", "first frame"),
	),
	Last: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end/G", "last frame"),
	),
	Faster: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "faster"),
	),
	Slower: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "slower"),
	),
	NewRun: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new run"),
	),
	SimPause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause simulation"),
	),
	SimStep: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "step simulation"),
	),
	Wind: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "wind on/off"),
	),
	WindLeft: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "rotate wind left"),
	),
	WindRight: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "rotate wind right"),
	),
	WindWeaker: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "weaker wind"),
	),
	WindStronger: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stronger wind"),
	),
	Thunder: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "thunder on/off"),
	),
	Charts: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "charts"),
	),
	Theme: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "theme"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
