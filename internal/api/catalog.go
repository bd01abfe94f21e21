package api

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"dvach/internal/model"
	"dvach/internal/util/logx"
)

// flexString accepts both "123" and 123; the service is not consistent
// about numeric identifiers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(s))
	if err != nil {
		return fmt.Errorf("not an integer id: %q", string(s))
	}
	*f = flexInt(n)
	return nil
}

type boardDTO struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

type threadDTO struct {
	Num     flexString `json:"num"`
	Subject string     `json:"subject"`
	Comment string     `json:"comment"`
}

type fileDTO struct {
	Name     string `json:"name"`
	FullName string `json:"fullname"`
	Path     string `json:"path"`
}

type postDTO struct {
	Num     flexInt   `json:"num"`
	Comment string    `json:"comment"`
	Date    string    `json:"date"`
	Files   []fileDTO `json:"files"`
}

func (c *Client) getJSON(ctx context.Context, reqURL string, v any) error {
	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, reqURL, err)
	}
	return nil
}

// FetchBoards returns every board of the service sorted by id. The board
// list comes from the mobile endpoint, which groups boards by category.
func (c *Client) FetchBoards(ctx context.Context) ([]model.Board, error) {
	var byCategory map[string][]boardDTO
	if err := c.getJSON(ctx, c.resolve("/makaba/mobile.fcgi?task=get_boards"), &byCategory); err != nil {
		return nil, fmt.Errorf("cannot get boards: %w", err)
	}
	var boards []model.Board
	for _, group := range byCategory {
		for _, b := range group {
			boards = append(boards, model.Board{ID: b.ID, Category: b.Category, Name: b.Name})
		}
	}
	sort.SliceStable(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })
	logx.Infof("api: %d boards in %d categories", len(boards), len(byCategory))
	return boards, nil
}

// FetchThreads returns the catalog of a board in service order.
func (c *Client) FetchThreads(ctx context.Context, board string) ([]model.Thread, error) {
	var payload struct {
		Threads []threadDTO `json:"threads"`
	}
	u := c.resolve("/" + url.PathEscape(board) + "/catalog.json")
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("cannot get threads for %s: %w", board, err)
	}
	threads := make([]model.Thread, 0, len(payload.Threads))
	for _, t := range payload.Threads {
		threads = append(threads, model.Thread{ID: string(t.Num), Subject: t.Subject, Comment: t.Comment})
	}
	logx.Infof("api: /%s/ has %d threads", board, len(threads))
	return threads, nil
}

// FetchPosts returns the posts of a thread in service order. The payload
// wraps posts in a list of threads; the first wrapper must exist.
func (c *Client) FetchPosts(ctx context.Context, board, thread string) ([]model.Post, error) {
	var payload struct {
		Threads []struct {
			Posts []postDTO `json:"posts"`
		} `json:"threads"`
	}
	u := c.resolve("/" + url.PathEscape(board) + "/res/" + url.PathEscape(thread) + ".json")
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("cannot get thread %s/%s: %w", board, thread, err)
	}
	if len(payload.Threads) == 0 {
		return nil, fmt.Errorf("thread %s/%s: %w: response has no thread wrapper", board, thread, ErrInvariant)
	}
	dtos := payload.Threads[0].Posts
	posts := make([]model.Post, 0, len(dtos))
	for _, p := range dtos {
		post := model.Post{ID: int(p.Num), Comment: p.Comment, Date: p.Date}
		for _, f := range p.Files {
			post.Images = append(post.Images, model.Image{Name: f.Name, FullName: f.FullName, Path: f.Path})
		}
		posts = append(posts, post)
	}
	logx.Infof("api: /%s/%s has %d posts", board, thread, len(posts))
	return posts, nil
}
