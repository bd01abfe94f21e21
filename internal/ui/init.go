package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dvach/internal/config"
	"dvach/internal/nav"
	"dvach/internal/util/logx"
)

func initialModel(ctx context.Context, cfg *config.Config, d *nav.Dispatcher) *Model {
	m := &Model{
		ctx:        ctx,
		cfg:        cfg,
		nav:        d,
		help:       help.New(),
		styles:     NewStyles(cfg.Theme == config.ThemeDark),
		keymap:     DefaultKeyMap(),
		input:      textinput.New(),
		termWidth:  80,
		termHeight: 24,
	}
	m.input.Placeholder = "filter... (text, /regex/ or =expression)"
	m.input.CharLimit = 256
	m.input.Prompt = "> "
	m.input.Focus()
	m.posts = viewport.New(80, 20)

	m.tbl = table.New(table.WithHeight(20))
	ts := table.DefaultStyles()
	ts.Header = m.styles.TableStyles.Header
	ts.Cell = m.styles.TableStyles.Cell
	ts.Selected = m.styles.TableStyles.Selected
	m.tbl.SetStyles(ts)
	m.sync()
	return m
}

// Run owns the terminal for the interactive session. A fetch failure inside
// the session ends it; the error is returned after the screen is restored.
func Run(ctx context.Context, cfg *config.Config, d *nav.Dispatcher) error {
	m := initialModel(ctx, cfg, d)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			logx.Infof("session interrupted: %v", ctx.Err())
			return nil
		}
		return err
	}
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}
