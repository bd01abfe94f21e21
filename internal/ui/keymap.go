package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyMap struct {
	Up       tea.Key
	Down     tea.Key
	PageUp   tea.Key
	PageDown tea.Key
	Top      tea.Key
	Bottom   tea.Key
	Confirm  tea.Key
	Cancel   tea.Key
	Quit     tea.Key
	Help     tea.Key
	AppLogs  tea.Key
	Export   tea.Key
	CopyKey  tea.Key
	// only in the posts frame, where typing does not edit a filter
	QuitPosts    tea.Key
	CopyCommands tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           tea.Key{Type: tea.KeyUp},
		Down:         tea.Key{Type: tea.KeyDown},
		PageUp:       tea.Key{Type: tea.KeyPgUp},
		PageDown:     tea.Key{Type: tea.KeyPgDown},
		Top:          tea.Key{Type: tea.KeyHome},
		Bottom:       tea.Key{Type: tea.KeyEnd},
		Confirm:      tea.Key{Type: tea.KeyEnter},
		Cancel:       tea.Key{Type: tea.KeyEsc},
		Quit:         tea.Key{Type: tea.KeyCtrlC},
		Help:         tea.Key{Type: tea.KeyF1},
		AppLogs:      tea.Key{Type: tea.KeyCtrlL},
		Export:       tea.Key{Type: tea.KeyCtrlE},
		CopyKey:      tea.Key{Type: tea.KeyCtrlY},
		QuitPosts:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
		CopyCommands: tea.Key{Type: tea.KeyRunes, Runes: []rune{'c'}},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}

// hintMap feeds the one-line hint under the frame.
type hintMap []key.Binding

func (h hintMap) ShortHelp() []key.Binding  { return h }
func (h hintMap) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

func binding(k tea.Key, desc string) key.Binding {
	label := keyLabel(k)
	return key.NewBinding(key.WithKeys(label), key.WithHelp(label, desc))
}

func (km KeyMap) listHints() hintMap {
	return hintMap{
		binding(km.Confirm, "open"),
		binding(km.Cancel, "back"),
		binding(km.Help, "help"),
		binding(km.Export, "export"),
		binding(km.Quit, "quit"),
	}
}

func (km KeyMap) postsHints() hintMap {
	return hintMap{
		binding(km.Cancel, "back"),
		binding(km.CopyCommands, "copy image commands"),
		binding(km.Help, "help"),
		binding(km.QuitPosts, "quit"),
	}
}
