package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"dvach/internal/nav"
	"dvach/internal/render"
	"dvach/internal/util/logx"
)

func (m *Model) View() string {
	v := m.renderFrame()
	if m.modalActive {
		// Dim the background content while keeping it visible
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) renderFrame() string {
	top := m.nav.Top()
	lines := []string{m.renderTitle(top)}
	switch top.(type) {
	case nav.ListFrame:
		lines = append(lines, m.input.View(), m.tbl.View(), m.help.ShortHelpView(m.keymap.listHints()))
	case *nav.PostsFrame:
		lines = append(lines, m.posts.View(), m.help.ShortHelpView(m.keymap.postsHints()))
	}
	lines = append(lines, m.renderStatus(top))
	return strings.Join(lines, "\n")
}

func (m *Model) renderTitle(top nav.Frame) string {
	title := m.styles.Title.Render(top.Title())
	switch f := top.(type) {
	case nav.ListFrame:
		title += " " + m.styles.Count.Render(fmt.Sprintf("%d/%d", f.Len(), f.Total()))
	case *nav.PostsFrame:
		title += " " + m.styles.Count.Render(fmt.Sprintf("%d posts  %3.f%%", len(f.Blocks), m.posts.ScrollPercent()*100))
	}
	return title
}

func (m *Model) renderStatus(top nav.Frame) string {
	if lf, ok := top.(nav.ListFrame); ok && lf.FilterErr() != nil {
		return m.styles.Error.Render("filter: " + lf.FilterErr().Error())
	}
	return m.styles.Status.Render(m.lastMsg)
}

// sync reloads the widgets from the top frame. A new top frame resets the
// filter input to that frame's own filter text, which is how a popped-to
// parent gets its input back exactly as left.
func (m *Model) sync() {
	top := m.nav.Top()
	changed := top != m.shown
	m.shown = top
	switch f := top.(type) {
	case nav.ListFrame:
		if changed {
			m.input.SetValue(f.Filter())
			m.input.CursorEnd()
			m.tbl.SetRows(nil)
			m.tbl.SetColumns(m.columns(top))
		}
		m.tbl.SetRows(m.rows(top))
		m.tbl.SetCursor(f.Cursor())
	case *nav.PostsFrame:
		if changed {
			m.posts.SetContent(m.renderPosts(f.Blocks))
			m.posts.GotoTop()
		}
	}
	if changed {
		m.layout()
	}
}

// layout fits the widgets to the terminal: title, input, table, hint and
// status for lists; title, viewport, hint and status for posts.
func (m *Model) layout() {
	h := m.termHeight - 4
	if h < 2 {
		h = 2
	}
	m.tbl.SetHeight(h)
	m.tbl.SetWidth(m.termWidth)
	m.input.Width = m.termWidth - len(m.input.Prompt) - 1
	if cols := m.columns(m.nav.Top()); cols != nil {
		m.tbl.SetColumns(cols)
	}
	m.posts.Width = m.termWidth
	m.posts.Height = m.termHeight - 3
	if m.posts.Height < 1 {
		m.posts.Height = 1
	}
	m.help.Width = m.termWidth
}

func (m *Model) columns(top nav.Frame) []table.Column {
	// each column pads one cell on the right
	rest := func(used ...int) int {
		w := m.termWidth - len(used)
		for _, u := range used {
			w -= u
		}
		if w < 10 {
			w = 10
		}
		return w - 1
	}
	switch f := top.(type) {
	case *nav.BoardsFrame:
		idW, catW := 4, 8
		for _, e := range f.All() {
			idW = max(idW, runewidth.StringWidth(e.ID))
			catW = max(catW, runewidth.StringWidth(e.Category))
		}
		catW = min(catW, 24)
		return []table.Column{
			{Title: "id", Width: idW},
			{Title: "category", Width: catW},
			{Title: "name", Width: rest(idW, catW)},
		}
	case *nav.ThreadsFrame:
		idW := 6
		for _, e := range f.All() {
			idW = max(idW, runewidth.StringWidth(e.ID))
		}
		return []table.Column{
			{Title: "#", Width: idW},
			{Title: "thread", Width: rest(idW)},
		}
	}
	return nil
}

func (m *Model) rows(top nav.Frame) []table.Row {
	var rows []table.Row
	switch f := top.(type) {
	case *nav.BoardsFrame:
		for _, e := range f.Visible() {
			rows = append(rows, table.Row{e.ID, e.Category, e.Name})
		}
	case *nav.ThreadsFrame:
		for _, e := range f.Visible() {
			rows = append(rows, table.Row{e.ID, e.Teaser})
		}
	}
	return rows
}

func (m *Model) renderPosts(blocks []render.Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.styles.PostID.Render(fmt.Sprint(b.ID)))
		sb.WriteByte(' ')
		sb.WriteString(m.styles.PostDate.Render(b.Date))
		for _, h := range b.Hints {
			sb.WriteString("\n" + render.DefaultIndent + m.styles.FileName.Render(h.FullName))
			sb.WriteString("\n" + render.DefaultIndent + m.styles.Command.Render(h.Command))
		}
		if b.Body != "" {
			sb.WriteString("\n" + b.Body)
		}
	}
	return sb.String()
}

func (m *Model) renderHelp() string {
	// Build an organized, navigable help menu
	if len(m.helpItems) == 0 {
		m.helpItems = m.buildHelpItems()
	}
	// Ensure selection is in range
	if m.helpSel < 0 {
		m.helpSel = 0
	}
	if m.helpSel >= len(m.helpItems) {
		m.helpSel = len(m.helpItems) - 1
	}
	lines := []string{"Shortcuts:"}
	currentGroup := ""
	lineIndexOfSel := 0
	for i, it := range m.helpItems {
		if it.group != currentGroup {
			currentGroup = it.group
			lines = append(lines, "")
			lines = append(lines, currentGroup+":")
		}
		prefix := "  "
		if i == m.helpSel {
			prefix = "> "
			lineIndexOfSel = len(lines)
		}
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, keyLabel(it.key), it.text))
	}
	lines = append(lines, "", "Filter: plain text matches anywhere (case-insensitive),",
		"/regex/ matches the label, =expression is evaluated over the",
		"entry fields (id, name, category, subject, teaser, num).")
	// Adjust viewport to keep selection visible
	if m.modalVP.Height > 0 {
		top := m.modalVP.YOffset
		bottom := top + m.modalVP.Height - 1
		if lineIndexOfSel <= top {
			m.modalVP.YOffset = max(lineIndexOfSel-1, 0)
		} else if lineIndexOfSel >= bottom {
			m.modalVP.YOffset = max(lineIndexOfSel-m.modalVP.Height+2, 0)
		}
	}
	return m.styles.Help.Render(strings.Join(lines, "\n"))
}

func (m *Model) openHelpModal() {
	m.modalActive = true
	m.modalKind = modalHelp
	m.modalTitle = "Help"
	m.helpItems = m.buildHelpItems()
	m.helpSel = 0
	m.modalBody = m.renderHelp()
	m.resizeModal()
}

func (m *Model) openAppLogsModal() {
	m.modalActive = true
	m.modalKind = modalLogs
	m.modalTitle = "Application Logs"
	m.modalBody = logx.Dump()
	m.resizeModal()
	m.modalVP.GotoBottom()
}

func breadcrumb(s *nav.Stack) string {
	frames := s.Frames()
	titles := make([]string, 0, len(frames))
	for _, f := range frames {
		titles = append(titles, f.Title())
	}
	return strings.Join(titles, " > ")
}

func (m *Model) resizeModal() {
	w := m.termWidth - 6
	h := m.termHeight - 6
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.modalVP = viewport.New(w-4, h-4)
	m.modalVP.SetContent(m.modalBody)
}

func (m *Model) renderModal() string {
	content := ""
	switch m.modalKind {
	case modalHelp:
		// Update content dynamically for help menu
		m.modalVP.SetContent(m.renderHelp())
		content = m.modalVP.View() + "\n[esc]=close  [enter]=run"
	case modalLogs:
		// Fixed status header above navigable application log viewport
		header := []string{
			"Status:",
			fmt.Sprintf("frame: %s (%s)  depth: %d", m.nav.Top().Title(), m.nav.Top().Kind(), m.nav.Depth()),
			"path: " + breadcrumb(m.nav.Stack()),
			fmt.Sprintf("base: %s  config: %s", m.cfg.BaseURL, m.cfg.ConfigPath),
		}
		h := m.styles.Help.Render(strings.Join(header, "\n"))
		content = h + "\n" + m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	default:
		content = m.modalVP.View() + "\n[esc/enter]=close"
	}
	boxW := m.termWidth - 6
	if boxW < 20 {
		boxW = 20
	}
	title := m.styles.PopupTitle.Render(m.modalTitle)
	body := m.styles.PopupBox.Width(boxW).Render(title + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}
