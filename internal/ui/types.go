package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dvach/internal/config"
	"dvach/internal/nav"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalLogs
)

type Model struct {
	ctx context.Context
	cfg *config.Config
	nav *nav.Dispatcher

	// shown is the frame the widgets were last loaded from; a different
	// stack top means the widgets must be rebuilt.
	shown nav.Frame

	// UI
	input      textinput.Model
	tbl        table.Model
	posts      viewport.Model
	help       help.Model
	styles     Styles
	keymap     KeyMap
	termWidth  int
	termHeight int

	// status
	lastMsg string
	// err ends the session; Run returns it once the terminal is restored.
	err error

	// Modal popup
	modalActive bool
	modalKind   modalKind
	modalVP     viewport.Model
	modalTitle  string
	modalBody   string

	// Help menu state
	helpItems []helpItem
	helpSel   int
}

type helpItem struct {
	group string
	text  string
	key   tea.Key
}

func keyCmd(k tea.Key) tea.Cmd {
	return func() tea.Msg {
		if k.Type == tea.KeyRunes {
			return tea.KeyMsg{Type: k.Type, Runes: k.Runes}
		}
		return tea.KeyMsg{Type: k.Type}
	}
}

func keyLabel(k tea.Key) string {
	switch k.Type {
	case tea.KeyRunes:
		if len(k.Runes) == 1 {
			r := k.Runes[0]
			if r == ' ' {
				return "space"
			}
			return string(r)
		}
		return strings.ToLower(string(k.Runes))
	case tea.KeyEnter:
		return "enter"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyUp:
		return "↑"
	case tea.KeyDown:
		return "↓"
	case tea.KeyPgUp:
		return "pgup"
	case tea.KeyPgDown:
		return "pgdown"
	default:
		return strings.ToLower(k.String())
	}
}
