// Package nav is the navigation state machine of the interactive session:
// a stack of frames (boards, threads of a board, posts of a thread) and a
// dispatcher that applies input events to the top frame.
package nav

import (
	"fmt"
	"strconv"

	"dvach/internal/filterlist"
	"dvach/internal/model"
	"dvach/internal/render"
)

type Kind int

const (
	KindBoards Kind = iota
	KindThreads
	KindPosts
)

func (k Kind) String() string {
	switch k {
	case KindBoards:
		return "boards"
	case KindThreads:
		return "threads"
	case KindPosts:
		return "posts"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Frame is one level of the navigation stack.
type Frame interface {
	Kind() Kind
	Title() string
}

// ListFrame is a frame backed by a filterable list. Cursor is the
// highlighted row of the visible subset and survives while the frame is
// covered by a child.
type ListFrame interface {
	Frame
	Filter() string
	FilterErr() error
	Len() int
	Total() int
	Cursor() int
	Key(index int) (string, error)

	setFilter(needle string)
	setCursor(index int)
}

type listFrame[T filterlist.Item] struct {
	list   *filterlist.List[T]
	cursor int
}

func newListFrame[T filterlist.Item](entries []T, compile filterlist.Compiler) listFrame[T] {
	var opts []filterlist.Option[T]
	if compile != nil {
		opts = append(opts, filterlist.WithCompiler[T](compile))
	}
	return listFrame[T]{list: filterlist.New(entries, opts...)}
}

func (f *listFrame[T]) Filter() string   { return f.list.Filter() }
func (f *listFrame[T]) FilterErr() error { return f.list.Err() }
func (f *listFrame[T]) Len() int         { return f.list.Len() }
func (f *listFrame[T]) Total() int       { return f.list.Total() }
func (f *listFrame[T]) Cursor() int      { return f.cursor }

// Visible returns the entries matching the current filter.
func (f *listFrame[T]) Visible() []T { return f.list.Visible() }

// All returns every entry of the frame regardless of the filter.
func (f *listFrame[T]) All() []T { return f.list.All() }

func (f *listFrame[T]) Key(index int) (string, error) { return f.list.Select(index) }

func (f *listFrame[T]) setFilter(needle string) {
	f.list.SetFilter(needle)
	f.setCursor(f.cursor)
}

func (f *listFrame[T]) setCursor(index int) {
	switch {
	case f.list.Len() == 0 || index < 0:
		f.cursor = 0
	case index >= f.list.Len():
		f.cursor = f.list.Len() - 1
	default:
		f.cursor = index
	}
}

// BoardEntry is a board as shown in the root list: "{id} {name}".
type BoardEntry struct {
	model.Board
}

func (e BoardEntry) Label() string { return e.ID + " " + e.Name }
func (e BoardEntry) Key() string   { return e.ID }

func (e BoardEntry) Fields() map[string]any {
	return map[string]any{
		"id":       e.ID,
		"category": e.Category,
		"name":     e.Name,
	}
}

// ThreadEntry is a catalog thread as shown in a board list:
// "{id} {teaser}".
type ThreadEntry struct {
	model.Thread
	Teaser string
}

func NewThreadEntry(t model.Thread) ThreadEntry {
	return ThreadEntry{Thread: t, Teaser: render.Teaser(t.Comment)}
}

func (e ThreadEntry) Label() string { return e.ID + " " + e.Teaser }
func (e ThreadEntry) Key() string   { return e.ID }

func (e ThreadEntry) Fields() map[string]any {
	fields := map[string]any{
		"id":      e.ID,
		"subject": e.Subject,
		"teaser":  e.Teaser,
	}
	// numeric comparisons like "=num > 1000" need a number
	if n, err := strconv.ParseFloat(e.ID, 64); err == nil {
		fields["num"] = n
	}
	return fields
}

type BoardsFrame struct {
	listFrame[BoardEntry]
}

func NewBoardsFrame(boards []model.Board, compile filterlist.Compiler) *BoardsFrame {
	entries := make([]BoardEntry, 0, len(boards))
	for _, b := range boards {
		entries = append(entries, BoardEntry{Board: b})
	}
	return &BoardsFrame{listFrame: newListFrame(entries, compile)}
}

func (*BoardsFrame) Kind() Kind    { return KindBoards }
func (*BoardsFrame) Title() string { return "boards" }

type ThreadsFrame struct {
	Board string
	listFrame[ThreadEntry]
}

// NewThreadsFrame builds the list of a board's threads. The backing
// collection is sorted by thread id.
func NewThreadsFrame(board string, threads []model.Thread, compile filterlist.Compiler) *ThreadsFrame {
	entries := make([]ThreadEntry, 0, len(threads))
	for _, t := range threads {
		entries = append(entries, NewThreadEntry(t))
	}
	SortThreads(entries)
	return &ThreadsFrame{Board: board, listFrame: newListFrame(entries, compile)}
}

func (*ThreadsFrame) Kind() Kind      { return KindThreads }
func (f *ThreadsFrame) Title() string { return "/" + f.Board + "/" }

// PostsFrame is a rendered thread. It has no filter.
type PostsFrame struct {
	Board  string
	Thread string
	Blocks []render.Block
}

func (*PostsFrame) Kind() Kind      { return KindPosts }
func (f *PostsFrame) Title() string { return "/" + f.Board + "/ #" + f.Thread }
