package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvach/internal/config"
	"dvach/internal/model"
	"dvach/internal/nav"
	"dvach/internal/util/logx"
)

type stubSource struct {
	threadErr error
}

func (s *stubSource) FetchBoards(context.Context) ([]model.Board, error) {
	return []model.Board{
		{ID: "b", Category: "Разное", Name: "Бред"},
		{ID: "pr", Category: "Техника", Name: "Программирование"},
	}, nil
}

func (s *stubSource) FetchThreads(context.Context, string) ([]model.Thread, error) {
	if s.threadErr != nil {
		return nil, s.threadErr
	}
	return []model.Thread{
		{ID: "20", Comment: "second"},
		{ID: "10", Comment: "first<br>more"},
	}, nil
}

func (s *stubSource) FetchPosts(_ context.Context, board, thread string) ([]model.Post, error) {
	return []model.Post{
		{ID: 10, Date: "today", Comment: "hello", Images: []model.Image{{Name: "1.png", FullName: "cat.png", Path: "/" + board + "/src/" + thread + "/1.png"}}},
		{ID: 11, Date: "today", Comment: "reply"},
	}, nil
}

func newTestModel(t *testing.T, src nav.Source, cfg *config.Config) *Model {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Theme: config.ThemeDark, BaseURL: "https://2ch.hk"}
	}
	d, err := nav.NewDispatcher(context.Background(), src)
	require.NoError(t, err)
	m := initialModel(context.Background(), cfg, d)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func press(m *Model, msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTypingFiltersTheBoardList(t *testing.T) {
	m := newTestModel(t, &stubSource{}, nil)
	assert.Len(t, m.tbl.Rows(), 2)

	typeText(m, "pr")
	root := m.nav.Top().(*nav.BoardsFrame)
	assert.Equal(t, "pr", root.Filter())
	require.Len(t, m.tbl.Rows(), 1)
	assert.Equal(t, "pr", m.tbl.Rows()[0][0])
	assert.Contains(t, m.View(), "1/2")

	press(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "", root.Filter())
	assert.Len(t, m.tbl.Rows(), 2)
}

func TestOpenAndCancelRestoresInput(t *testing.T) {
	m := newTestModel(t, &stubSource{}, nil)
	typeText(m, "pr")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	threads, ok := m.nav.Top().(*nav.ThreadsFrame)
	require.True(t, ok)
	assert.Equal(t, "pr", threads.Board)
	assert.Equal(t, "", m.input.Value())
	require.Len(t, m.tbl.Rows(), 2)
	assert.Equal(t, "10", m.tbl.Rows()[0][0])
	assert.Equal(t, "first", m.tbl.Rows()[0][1])
	assert.Contains(t, m.View(), "/pr/")

	typeText(m, "sec")
	assert.Len(t, m.tbl.Rows(), 1)

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, isQuit(cmd))
	_, ok = m.nav.Top().(*nav.BoardsFrame)
	require.True(t, ok)
	assert.Equal(t, "pr", m.input.Value())
	assert.Len(t, m.tbl.Rows(), 1)

	assert.True(t, isQuit(press(m, tea.KeyMsg{Type: tea.KeyEsc})))
}

func TestCursorMovement(t *testing.T) {
	m := newTestModel(t, &stubSource{}, nil)
	root := m.nav.Top().(*nav.BoardsFrame)

	press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, root.Cursor())
	assert.Equal(t, 1, m.tbl.Cursor())
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, root.Cursor())
	press(m, tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, root.Cursor())
	press(m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 1, root.Cursor())

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	threads := m.nav.Top().(*nav.ThreadsFrame)
	assert.Equal(t, "pr", threads.Board)
}

func TestEnterOnEmptyListDoesNothing(t *testing.T) {
	m := newTestModel(t, &stubSource{}, nil)
	typeText(m, "zzz")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, isQuit(cmd))
	assert.Equal(t, 1, m.nav.Depth())
	assert.Equal(t, "nothing matches the filter", m.lastMsg)
}

func TestFetchFailureEndsSession(t *testing.T) {
	boom := errors.New("fetch failed: boom")
	m := newTestModel(t, &stubSource{threadErr: boom}, nil)
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))
	assert.ErrorIs(t, m.err, boom)
	assert.Equal(t, 1, m.nav.Depth())
}

func TestPostsFrame(t *testing.T) {
	var copied []string
	old := writeClipboard
	writeClipboard = func(s string) error { copied = append(copied, s); return nil }
	t.Cleanup(func() { writeClipboard = old })

	m := newTestModel(t, &stubSource{}, nil)
	typeText(m, "pr")
	press(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter})

	posts, ok := m.nav.Top().(*nav.PostsFrame)
	require.True(t, ok)
	assert.Equal(t, "10", posts.Thread)
	view := m.View()
	assert.Contains(t, view, "/pr/ #10")
	assert.Contains(t, view, "cat.png")
	assert.Contains(t, view, "dvach --download /pr/src/10/1.png > 1.png && xdg-open 1.png")

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.Len(t, copied, 1)
	assert.Equal(t, "dvach --download /pr/src/10/1.png > 1.png && xdg-open 1.png", copied[0])
	assert.Equal(t, 3, m.nav.Depth())

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 2, m.nav.Depth())
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})))
}

func TestCtrlCQuitsFromAList(t *testing.T) {
	m := newTestModel(t, &stubSource{}, nil)
	typeText(m, "q")
	assert.Equal(t, "q", m.input.Value())
	assert.True(t, isQuit(press(m, tea.KeyMsg{Type: tea.KeyCtrlC})))
}

func TestExportCurrentView(t *testing.T) {
	out := filepath.Join(t.TempDir(), "boards.csv")
	cfg := &config.Config{Theme: config.ThemeLight, ExportFormat: "csv", ExportOut: out}
	m := newTestModel(t, &stubSource{}, cfg)
	typeText(m, "бред")
	press(m, tea.KeyMsg{Type: tea.KeyCtrlE})

	assert.Contains(t, m.lastMsg, "exported 1 rows")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "b,b Бред,Разное", lines[1])
}

func TestCopyHighlightedKey(t *testing.T) {
	var copied string
	old := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = old })

	m := newTestModel(t, &stubSource{}, nil)
	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "pr", copied)
	assert.Equal(t, "copied pr", m.lastMsg)
}

func TestModals(t *testing.T) {
	m := newTestModel(t, &stubSource{}, nil)
	press(m, tea.KeyMsg{Type: tea.KeyF1})
	require.True(t, m.modalActive)
	assert.Contains(t, m.View(), "Shortcuts:")

	// typing does not reach the filter while a modal is open
	typeText(m, "x")
	assert.Equal(t, "", m.input.Value())
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.modalActive)
	assert.Equal(t, 1, m.nav.Depth())

	press(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, m.modalActive)
	assert.Contains(t, m.View(), "Application Logs")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.modalActive)
}

func TestLogsModalShowsNavigationPath(t *testing.T) {
	logx.SetLevel(logx.Debug)
	t.Cleanup(func() { logx.SetLevel(logx.Info) })
	m := newTestModel(t, &stubSource{}, nil)
	typeText(m, "pr")
	press(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, m.modalActive)

	view := m.View()
	assert.Contains(t, view, "frame: /pr/ (threads)  depth: 2")
	assert.Contains(t, view, "path: boards > /pr/")
	assert.Contains(t, view, "nav.Confirm -> continue")
}

func TestFilterErrorIsShown(t *testing.T) {
	m := newTestModel(t, &stubSource{}, nil)
	typeText(m, "/(/")
	assert.Empty(t, m.tbl.Rows())
	assert.Contains(t, m.View(), "filter:")
	assert.Contains(t, m.View(), "0/2")
}

func TestOverlayKeepsBaseWhereOverlayIsBlank(t *testing.T) {
	got := overlay("a\nb\nc", "  \nX")
	assert.Equal(t, "a\nX\nc", got)
}
