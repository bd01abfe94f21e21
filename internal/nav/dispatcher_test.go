package nav

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"pgregory.net/rapid"

	"dvach/internal/filter"
	"dvach/internal/filterlist"
	"dvach/internal/model"
	"dvach/internal/render"
)

type fakeSource struct {
	boards  []model.Board
	threads map[string][]model.Thread
	posts   map[string][]model.Post
	err     error

	boardCalls, threadCalls, postCalls int
}

func (f *fakeSource) FetchBoards(context.Context) ([]model.Board, error) {
	f.boardCalls++
	return f.boards, f.err
}

func (f *fakeSource) FetchThreads(_ context.Context, board string) ([]model.Thread, error) {
	f.threadCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.threads[board], nil
}

func (f *fakeSource) FetchPosts(_ context.Context, board, thread string) ([]model.Post, error) {
	f.postCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.posts[board+"/"+thread], nil
}

func newFake() *fakeSource {
	return &fakeSource{
		boards: []model.Board{
			{ID: "b", Category: "Разное", Name: "Бред"},
			{ID: "pr", Category: "Техника", Name: "Программирование"},
			{ID: "hw", Category: "Техника", Name: "Железо"},
		},
		threads: map[string][]model.Thread{
			"pr": {
				{ID: "300", Comment: "<b>Go</b> thread"},
				{ID: "99", Comment: "Rust<br>second line"},
				{ID: "100", Comment: "Zig"},
			},
		},
		posts: map[string][]model.Post{
			"pr/99": {
				{ID: 99, Comment: "op", Date: "d1", Images: []model.Image{{Name: "1.png", FullName: "a.png", Path: "/pr/src/99/1.png"}}},
				{ID: 101, Comment: "reply", Date: "d2"},
			},
		},
	}
}

func labels(f ListFrame) []string {
	var out []string
	switch f := f.(type) {
	case *BoardsFrame:
		for _, e := range f.Visible() {
			out = append(out, e.Label())
		}
	case *ThreadsFrame:
		for _, e := range f.Visible() {
			out = append(out, e.Label())
		}
	}
	return out
}

func dispatch(t *testing.T, d *Dispatcher, ev Event) Outcome {
	t.Helper()
	out, err := d.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	return out
}

func TestPushThreadsThenCancelRestoresBoards(t *testing.T) {
	src := newFake()
	d, err := NewDispatcher(context.Background(), src)
	require.NoError(t, err)

	dispatch(t, d, EditFilter{Text: "р"})
	root := d.Top().(*BoardsFrame)
	before := labels(root)
	require.Equal(t, []string{"b Бред", "pr Программирование"}, before)
	dispatch(t, d, Highlight{Index: 1})

	assert.Equal(t, Continue, dispatch(t, d, Confirm{Index: 1}))
	require.Equal(t, 2, d.Depth())
	threads, ok := d.Top().(*ThreadsFrame)
	require.True(t, ok)
	assert.Equal(t, "pr", threads.Board)
	assert.Equal(t, "/pr/", threads.Title())

	assert.Equal(t, Continue, dispatch(t, d, Cancel{}))
	require.Equal(t, 1, d.Depth())
	assert.Same(t, root, d.Top())
	assert.Equal(t, "р", root.Filter())
	assert.Equal(t, before, labels(root))
	assert.Equal(t, 1, root.Cursor())
	assert.Equal(t, 1, src.boardCalls)
	assert.Equal(t, 1, src.threadCalls)

	// going forward again re-fetches
	dispatch(t, d, Confirm{Index: 1})
	assert.Equal(t, 2, src.threadCalls)
}

func TestThreadsAreSortedByID(t *testing.T) {
	d, err := NewDispatcher(context.Background(), newFake())
	require.NoError(t, err)
	dispatch(t, d, EditFilter{Text: "pr"})
	dispatch(t, d, Confirm{Index: 0})

	threads := d.Top().(*ThreadsFrame)
	assert.Equal(t, []string{"100 Zig", "300 Go", "99 Rust"}, labels(threads))
}

func TestOpenThreadRendersPosts(t *testing.T) {
	d, err := NewDispatcher(context.Background(), newFake(), WithRenderOptions(render.Options{Width: 40}))
	require.NoError(t, err)
	dispatch(t, d, EditFilter{Text: "pr"})
	dispatch(t, d, Confirm{Index: 0})
	dispatch(t, d, EditFilter{Text: "rust"})
	dispatch(t, d, Confirm{Index: 0})

	require.Equal(t, 3, d.Depth())
	posts, ok := d.Top().(*PostsFrame)
	require.True(t, ok)
	assert.Equal(t, "/pr/ #99", posts.Title())
	require.Len(t, posts.Blocks, 2)
	assert.Equal(t, 99, posts.Blocks[0].ID)
	assert.Equal(t, 101, posts.Blocks[1].ID)
	assert.Equal(t, "  op", posts.Blocks[0].Body)
	require.Len(t, posts.Blocks[0].Hints, 1)
	assert.Equal(t, "a.png", posts.Blocks[0].Hints[0].FullName)

	// editing has no effect on a posts frame
	assert.Equal(t, Continue, dispatch(t, d, EditFilter{Text: "x"}))
	assert.Equal(t, 3, d.Depth())

	dispatch(t, d, Cancel{})
	threads := d.Top().(*ThreadsFrame)
	assert.Equal(t, "rust", threads.Filter())
	assert.Equal(t, []string{"99 Rust"}, labels(threads))
}

func TestCancelAtRootExits(t *testing.T) {
	d, err := NewDispatcher(context.Background(), newFake())
	require.NoError(t, err)
	assert.Equal(t, Exit, dispatch(t, d, Cancel{}))
	assert.Equal(t, 1, d.Depth())
}

func TestQuitFromAnyDepth(t *testing.T) {
	d, err := NewDispatcher(context.Background(), newFake())
	require.NoError(t, err)
	dispatch(t, d, EditFilter{Text: "pr"})
	dispatch(t, d, Confirm{Index: 0})
	assert.Equal(t, Exit, dispatch(t, d, Quit{}))
}

func TestConfirmOutOfRange(t *testing.T) {
	src := newFake()
	d, err := NewDispatcher(context.Background(), src)
	require.NoError(t, err)
	dispatch(t, d, EditFilter{Text: "zzz"})

	_, err = d.Dispatch(context.Background(), Confirm{Index: 0})
	assert.True(t, errors.Is(err, filterlist.ErrSelectionOutOfRange))
	assert.Equal(t, 1, d.Depth())
	assert.Equal(t, 0, src.threadCalls)
}

func TestFetchErrorLeavesStackUnchanged(t *testing.T) {
	src := newFake()
	d, err := NewDispatcher(context.Background(), src)
	require.NoError(t, err)
	src.err = errors.New("boom")

	_, err = d.Dispatch(context.Background(), Confirm{Index: 0})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, d.Depth())
}

func TestBoardsFetchErrorIsReturned(t *testing.T) {
	src := newFake()
	src.err = errors.New("offline")
	_, err := NewDispatcher(context.Background(), src)
	assert.EqualError(t, err, "offline")
}

func TestCursorIsClampedWhenFilterShrinks(t *testing.T) {
	d, err := NewDispatcher(context.Background(), newFake())
	require.NoError(t, err)
	dispatch(t, d, Highlight{Index: 2})
	root := d.Top().(*BoardsFrame)
	assert.Equal(t, 2, root.Cursor())

	dispatch(t, d, EditFilter{Text: "pr"})
	assert.Equal(t, 0, root.Cursor())
	dispatch(t, d, Highlight{Index: 10})
	assert.Equal(t, 0, root.Cursor())
}

func TestExpressionFilter(t *testing.T) {
	compile := func(q string) (filter.Matcher, error) { return filter.Compile(q) }
	d, err := NewDispatcher(context.Background(), newFake(), WithCompiler(compile))
	require.NoError(t, err)
	dispatch(t, d, EditFilter{Text: "=category == 'Техника'"})
	assert.Equal(t, []string{"pr Программирование", "hw Железо"}, labels(d.Top().(*BoardsFrame)))

	dispatch(t, d, EditFilter{Text: "pr"})
	dispatch(t, d, Confirm{Index: 0})
	dispatch(t, d, EditFilter{Text: "=num >= 100"})
	assert.Equal(t, []string{"100 Zig", "300 Go"}, labels(d.Top().(*ThreadsFrame)))

	dispatch(t, d, EditFilter{Text: "/^(9/"})
	threads := d.Top().(*ThreadsFrame)
	assert.Error(t, threads.FilterErr())
	assert.Equal(t, 0, threads.Len())
}

func TestBrokenQueryMatchesAsPlainText(t *testing.T) {
	src := newFake()
	src.boards = []model.Board{
		{ID: "b", Name: "x/(/y"},
		{ID: "pr", Name: "Prog"},
	}
	d, err := NewDispatcher(context.Background(), src)
	require.NoError(t, err)

	dispatch(t, d, EditFilter{Text: "/(/"})
	root := d.Top().(*BoardsFrame)
	assert.Error(t, root.FilterErr())
	assert.Equal(t, []string{"b x/(/y"}, labels(root))

	dispatch(t, d, EditFilter{Text: "/[/"})
	assert.Error(t, root.FilterErr())
	assert.Empty(t, labels(root))
}

func TestDefaultFilterKeepsOnlyContainingLabels(t *testing.T) {
	fold := func(s string) string { return cases.Fold().String(s) }
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[ab/(Жж ]{0,8}`), 0, 20).Draw(t, "names")
		src := &fakeSource{}
		for i, n := range names {
			src.boards = append(src.boards, model.Board{ID: fmt.Sprintf("%c", 'c'+i%20), Name: n})
		}
		// plain text, or a regex that does not compile
		needle := rapid.OneOf(
			rapid.StringMatching(`[ab(Жж][ab/(Жж]{0,2}`),
			rapid.StringMatching(`/\([ab(Жж]{0,2}/`),
		).Draw(t, "needle")

		d, err := NewDispatcher(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Dispatch(context.Background(), EditFilter{Text: needle}); err != nil {
			t.Fatal(err)
		}
		root := d.Top().(*BoardsFrame)
		want := 0
		for _, e := range root.All() {
			if strings.Contains(fold(e.Label()), fold(needle)) {
				want++
			}
		}
		for _, e := range root.Visible() {
			if !strings.Contains(fold(e.Label()), fold(needle)) {
				t.Fatalf("%q does not contain %q", e.Label(), needle)
			}
		}
		if root.Len() != want {
			t.Fatalf("%d visible, %d contain %q", root.Len(), want, needle)
		}
	})
}

func TestSortThreadsMixedIDs(t *testing.T) {
	threads := []model.Thread{{ID: "99"}, {ID: "100"}, {ID: "2"}, {ID: "10"}, {ID: "1a"}}
	f := NewThreadsFrame("pr", threads, nil)
	var ids []string
	for _, e := range f.Visible() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"10", "100", "1a", "2", "99"}, ids)
}
