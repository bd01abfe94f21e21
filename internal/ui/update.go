package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"dvach/internal/export"
	"dvach/internal/filterlist"
	"dvach/internal/nav"
	"dvach/internal/render"
	"dvach/internal/util/logx"
)

func (m *Model) buildHelpItems() []helpItem {
	km := m.keymap
	items := []helpItem{
		{group: "Navigation", text: "Previous row", key: km.Up},
		{group: "Navigation", text: "Next row", key: km.Down},
		{group: "Navigation", text: "Page up", key: km.PageUp},
		{group: "Navigation", text: "Page down", key: km.PageDown},
		{group: "Navigation", text: "Go to top", key: km.Top},
		{group: "Navigation", text: "Go to bottom", key: km.Bottom},
		{group: "Navigation", text: "Open highlighted entry", key: km.Confirm},
		{group: "Navigation", text: "Back (exit at the board list)", key: km.Cancel},

		{group: "Actions", text: "Copy highlighted id", key: km.CopyKey},
		{group: "Actions", text: "Copy image commands (thread view)", key: km.CopyCommands},
		{group: "Actions", text: "Export current view", key: km.Export},

		{group: "Views", text: "Application logs", key: km.AppLogs},
		{group: "Views", text: "Help", key: km.Help},

		{group: "Control", text: "Quit", key: km.Quit},
		{group: "Control", text: "Quit (thread view)", key: km.QuitPosts},
	}
	return items
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		m.layout()
		if m.modalActive {
			m.resizeModal()
		}
		return m, nil
	case tea.KeyMsg:
		if m.modalActive {
			return m.updateModal(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if keyMatches(msg, m.keymap.Quit) {
		return m.dispatch(nav.Quit{})
	}
	if m.modalKind == modalHelp {
		switch msg.Type {
		case tea.KeyUp:
			if m.helpSel > 0 {
				m.helpSel--
				m.modalVP.SetContent(m.renderHelp())
			}
			return m, nil
		case tea.KeyDown:
			if m.helpSel+1 < len(m.helpItems) {
				m.helpSel++
				m.modalVP.SetContent(m.renderHelp())
			}
			return m, nil
		case tea.KeyEnter:
			m.modalActive = false
			if len(m.helpItems) > 0 {
				return m, keyCmd(m.helpItems[m.helpSel].key)
			}
			return m, nil
		case tea.KeyEsc, tea.KeyF1:
			m.modalActive = false
			return m, nil
		}
		// ignore other keys in help modal
		return m, nil
	}
	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || keyMatches(msg, m.keymap.AppLogs) {
		m.modalActive = false
		return m, nil
	}
	if msg.Type == tea.KeyRunes && msg.String() == "c" {
		m.copy(m.modalBody, "logs")
		return m, nil
	}
	// Otherwise, scroll modal viewport
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	switch {
	case keyMatches(msg, km.Quit):
		return m.dispatch(nav.Quit{})
	case keyMatches(msg, km.Cancel):
		return m.dispatch(nav.Cancel{})
	case keyMatches(msg, km.Help):
		m.openHelpModal()
		return m, nil
	case keyMatches(msg, km.AppLogs):
		m.openAppLogsModal()
		return m, nil
	case keyMatches(msg, km.Export):
		m.exportFrame()
		return m, nil
	case keyMatches(msg, km.CopyKey):
		m.copyHighlighted()
		return m, nil
	}

	switch top := m.nav.Top().(type) {
	case nav.ListFrame:
		return m.updateList(top, msg)
	case *nav.PostsFrame:
		return m.updatePosts(top, msg)
	}
	return m, nil
}

func (m *Model) updateList(lf nav.ListFrame, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	page := m.tbl.Height()
	if page < 1 {
		page = 1
	}
	switch {
	case keyMatches(msg, km.Up):
		return m.dispatch(nav.Highlight{Index: lf.Cursor() - 1})
	case keyMatches(msg, km.Down):
		return m.dispatch(nav.Highlight{Index: lf.Cursor() + 1})
	case keyMatches(msg, km.PageUp):
		return m.dispatch(nav.Highlight{Index: lf.Cursor() - page})
	case keyMatches(msg, km.PageDown):
		return m.dispatch(nav.Highlight{Index: lf.Cursor() + page})
	case keyMatches(msg, km.Top):
		return m.dispatch(nav.Highlight{Index: 0})
	case keyMatches(msg, km.Bottom):
		return m.dispatch(nav.Highlight{Index: lf.Len() - 1})
	case keyMatches(msg, km.Confirm):
		if lf.Len() == 0 {
			m.lastMsg = "nothing matches the filter"
			return m, nil
		}
		m.lastMsg = ""
		return m.dispatch(nav.Confirm{Index: lf.Cursor()})
	}

	// everything else edits the filter
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != lf.Filter() {
		next, dcmd := m.dispatch(nav.EditFilter{Text: v})
		return next, tea.Batch(cmd, dcmd)
	}
	return m, cmd
}

func (m *Model) updatePosts(pf *nav.PostsFrame, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	switch {
	case keyMatches(msg, km.QuitPosts):
		return m.dispatch(nav.Quit{})
	case keyMatches(msg, km.CopyCommands):
		cmds := render.Commands(pf.Blocks)
		if len(cmds) == 0 {
			m.lastMsg = "no images in this thread"
			return m, nil
		}
		m.copy(strings.Join(cmds, "\n"), fmt.Sprintf("%d image commands", len(cmds)))
		return m, nil
	case keyMatches(msg, km.Top):
		m.posts.GotoTop()
		return m, nil
	case keyMatches(msg, km.Bottom):
		m.posts.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.posts, cmd = m.posts.Update(msg)
	return m, cmd
}

// dispatch hands ev to the navigation stack and reloads the widgets from
// the new top frame. A fetch failure ends the session.
func (m *Model) dispatch(ev nav.Event) (tea.Model, tea.Cmd) {
	out, err := m.nav.Dispatch(m.ctx, ev)
	if err != nil {
		if errors.Is(err, filterlist.ErrSelectionOutOfRange) {
			logx.Errorf("ui: %v", err)
			m.lastMsg = "internal error: " + err.Error()
			m.sync()
			return m, nil
		}
		logx.Errorf("ui: %v", err)
		m.err = err
		return m, tea.Quit
	}
	logx.Debugf("ui: %T -> %s", ev, out)
	if out == nav.Exit {
		return m, tea.Quit
	}
	m.sync()
	return m, nil
}

// exportFrame writes the rows of the top frame using the configured format.
func (m *Model) exportFrame() {
	rows := nav.Rows(m.nav.Top())
	if len(rows) == 0 {
		m.lastMsg = "nothing to export"
		return
	}
	format := m.cfg.ExportFormat
	if format == "" {
		format = "csv"
	}
	path := m.cfg.ExportOut
	if path == "" {
		path = exportName(m.nav.Top()) + export.Ext(format)
	}
	if err := export.Write(format, path, rows); err != nil {
		logx.Errorf("ui: export: %v", err)
		m.lastMsg = "export failed: " + err.Error()
		return
	}
	abs, _ := filepath.Abs(path)
	logx.Infof("ui: exported %d rows to %s", len(rows), abs)
	m.lastMsg = fmt.Sprintf("exported %d rows to %s", len(rows), path)
}

func exportName(f nav.Frame) string {
	switch f := f.(type) {
	case *nav.ThreadsFrame:
		return "dvach-" + f.Board
	case *nav.PostsFrame:
		return "dvach-" + f.Board + "-" + f.Thread
	default:
		return "dvach-boards"
	}
}

func (m *Model) copyHighlighted() {
	lf, ok := m.nav.Top().(nav.ListFrame)
	if !ok {
		pf := m.nav.Top().(*nav.PostsFrame)
		m.copy(pf.Thread, "thread id")
		return
	}
	k, err := lf.Key(lf.Cursor())
	if err != nil {
		m.lastMsg = "nothing highlighted"
		return
	}
	m.copy(k, k)
}

func (m *Model) copy(s, what string) {
	if err := writeClipboard(s); err != nil {
		logx.Warnf("ui: clipboard: %v", err)
		m.lastMsg = "copy failed: " + err.Error()
		return
	}
	m.lastMsg = "copied " + what
}
