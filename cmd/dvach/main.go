package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"dvach/internal/api"
	"dvach/internal/config"
	"dvach/internal/export"
	"dvach/internal/model"
	"dvach/internal/nav"
	"dvach/internal/render"
	"dvach/internal/ui"
	"dvach/internal/util/logx"
	"dvach/internal/version"
)

func main() {
	logx.SetLevelFromEnv()
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Println("dvach", version.String())
		return
	}

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	// a closed stdout then fails the write with EPIPE instead of killing us
	signal.Ignore(syscall.SIGPIPE)

	logx.Infof("starting dvach %s: %s", version.String(), cfg.String())
	if err := run(ctx, cfg); err != nil {
		if brokenPipe(err) {
			return
		}
		logx.Errorf("dvach exited with error: %v", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	client, err := api.NewClient(api.Settings{
		BaseURL:         cfg.BaseURL,
		UserAgent:       userAgent,
		Timeout:         cfg.Timeout(),
		RequestInterval: cfg.RequestInterval(),
	})
	if err != nil {
		return err
	}
	defer client.Close()

	opts := render.Options{Width: cfg.CommentWidth, Indent: render.DefaultIndent, Program: cfg.Program()}

	switch {
	case cfg.Download != "":
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("refusing to write binary data to a terminal, redirect stdout to a file")
		}
		out := bufio.NewWriter(os.Stdout)
		if err := client.Download(ctx, out, cfg.Download); err != nil {
			return err
		}
		return out.Flush()
	case cfg.Plain && cfg.Board == "":
		boards, err := client.FetchBoards(ctx)
		if err != nil {
			return err
		}
		if cfg.ExportFormat != "" {
			return exportRows(cfg, nav.Rows(nav.NewBoardsFrame(boards, nil)))
		}
		return printTo(os.Stdout, func(w io.Writer) error { return render.PrintBoards(w, boards) })
	case cfg.Board != "" && cfg.Thread == "":
		threads, err := client.FetchThreads(ctx, cfg.Board)
		if err != nil {
			return err
		}
		if cfg.ExportFormat != "" {
			return exportRows(cfg, nav.Rows(nav.NewThreadsFrame(cfg.Board, threads, nil)))
		}
		return printTo(os.Stdout, func(w io.Writer) error { return render.PrintThreads(w, threads, cfg.CommentWidth) })
	case cfg.Board != "":
		posts, err := client.FetchPosts(ctx, cfg.Board, cfg.Thread)
		if err != nil {
			return err
		}
		if cfg.ExportFormat != "" {
			return exportRows(cfg, postRows(cfg, posts, opts))
		}
		return printTo(os.Stdout, func(w io.Writer) error { return render.PrintPosts(w, posts, opts) })
	}

	d, err := nav.NewDispatcher(ctx, client, nav.WithRenderOptions(opts))
	if err != nil {
		return err
	}
	return ui.Run(ctx, cfg, d)
}

func postRows(cfg *config.Config, posts []model.Post, opts render.Options) []export.Row {
	return nav.Rows(&nav.PostsFrame{Board: cfg.Board, Thread: cfg.Thread, Blocks: render.RenderPosts(posts, opts)})
}

func exportRows(cfg *config.Config, rows []export.Row) error {
	if err := export.Write(cfg.ExportFormat, cfg.ExportOut, rows); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logx.Infof("exported %d rows to %s", len(rows), cfg.ExportOut)
	fmt.Fprintf(os.Stderr, "exported %d rows to %s\n", len(rows), cfg.ExportOut)
	return nil
}

func printTo(dst io.Writer, write func(w io.Writer) error) error {
	out := bufio.NewWriter(dst)
	if err := write(out); err != nil {
		return err
	}
	return out.Flush()
}

// brokenPipe reports output cut short by e.g. `| head`, which is not an
// error.
func brokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
