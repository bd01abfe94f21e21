package nav

import (
	"context"
	"fmt"

	"dvach/internal/filter"
	"dvach/internal/filterlist"
	"dvach/internal/model"
	"dvach/internal/render"
	"dvach/internal/util/logx"
)

// Source provides the data behind the frames. api.Client implements it.
type Source interface {
	FetchBoards(ctx context.Context) ([]model.Board, error)
	FetchThreads(ctx context.Context, board string) ([]model.Thread, error)
	FetchPosts(ctx context.Context, board, thread string) ([]model.Post, error)
}

// Event is an input the dispatcher applies to the top frame.
type Event interface {
	event()
}

// EditFilter replaces the filter text of the top list frame.
type EditFilter struct{ Text string }

// Highlight moves the cursor of the top list frame.
type Highlight struct{ Index int }

// Confirm selects the visible entry at Index and opens it.
type Confirm struct{ Index int }

// Cancel closes the top frame, or ends the session at the root.
type Cancel struct{}

// Quit ends the session from any frame.
type Quit struct{}

func (EditFilter) event() {}
func (Highlight) event()  {}
func (Confirm) event()    {}
func (Cancel) event()     {}
func (Quit) event()       {}

type Outcome int

const (
	Continue Outcome = iota
	Exit
)

func (o Outcome) String() string {
	if o == Exit {
		return "exit"
	}
	return "continue"
}

type Option func(*Dispatcher)

// WithRenderOptions sets how posts are rendered when a thread is opened.
func WithRenderOptions(o render.Options) Option {
	return func(d *Dispatcher) { d.render = o }
}

func compileQuery(q string) (filter.Matcher, error) {
	return filter.Compile(q)
}

// WithCompiler replaces the filter compiler of every list frame. The
// default understands plain text, /regex/ and =expression queries.
func WithCompiler(c filterlist.Compiler) Option {
	return func(d *Dispatcher) { d.compile = c }
}

// Dispatcher owns the navigation stack. Events are applied one at a time;
// the frame an event acts on is always the top of the stack.
type Dispatcher struct {
	src     Source
	render  render.Options
	compile filterlist.Compiler
	stack   *Stack
}

// NewDispatcher fetches the board list and opens the root frame.
func NewDispatcher(ctx context.Context, src Source, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{src: src, compile: compileQuery}
	for _, o := range opts {
		o(d)
	}
	boards, err := src.FetchBoards(ctx)
	if err != nil {
		return nil, err
	}
	d.stack = NewStack(NewBoardsFrame(boards, d.compile))
	logx.Infof("nav: root frame with %d boards", len(boards))
	return d, nil
}

func (d *Dispatcher) Top() Frame    { return d.stack.Top() }
func (d *Dispatcher) Depth() int    { return d.stack.Depth() }
func (d *Dispatcher) Stack() *Stack { return d.stack }

// Dispatch applies ev to the top frame. Errors from the source are returned
// as is and leave the stack unchanged; the caller decides to end the
// session. A Confirm outside the visible subset returns
// filterlist.ErrSelectionOutOfRange.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	switch ev := ev.(type) {
	case EditFilter:
		if lf, ok := d.stack.Top().(ListFrame); ok {
			lf.setFilter(ev.Text)
			if err := lf.FilterErr(); err != nil {
				logx.Debugf("nav: filter %q: %v", ev.Text, err)
			}
		}
		return Continue, nil
	case Highlight:
		if lf, ok := d.stack.Top().(ListFrame); ok {
			lf.setCursor(ev.Index)
		}
		return Continue, nil
	case Confirm:
		return Continue, d.confirm(ctx, ev.Index)
	case Cancel:
		popped, ok := d.stack.Pop()
		if !ok {
			logx.Infof("nav: cancel at root")
			return Exit, nil
		}
		logx.Debugf("nav: closed %s, back to %s", popped.Title(), d.stack.Top().Title())
		return Continue, nil
	case Quit:
		return Exit, nil
	default:
		return Continue, fmt.Errorf("nav: unknown event %T", ev)
	}
}

func (d *Dispatcher) confirm(ctx context.Context, index int) error {
	switch f := d.stack.Top().(type) {
	case *BoardsFrame:
		board, err := f.Key(index)
		if err != nil {
			return err
		}
		f.setCursor(index)
		threads, err := d.src.FetchThreads(ctx, board)
		if err != nil {
			return err
		}
		d.stack.Push(NewThreadsFrame(board, threads, d.compile))
		logx.Infof("nav: opened /%s/ with %d threads", board, len(threads))
	case *ThreadsFrame:
		thread, err := f.Key(index)
		if err != nil {
			return err
		}
		f.setCursor(index)
		posts, err := d.src.FetchPosts(ctx, f.Board, thread)
		if err != nil {
			return err
		}
		d.stack.Push(&PostsFrame{
			Board:  f.Board,
			Thread: thread,
			Blocks: render.RenderPosts(posts, d.render),
		})
		logx.Infof("nav: opened /%s/%s with %d posts", f.Board, thread, len(posts))
	}
	return nil
}
