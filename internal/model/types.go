package model

import "fmt"

// Board is a top-level section of the service, identified by a short code
// like "pr" or "b".
type Board struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// Thread is a catalog entry of a board. Comment is the markup of the
// opening post.
type Thread struct {
	ID      string `json:"num"`
	Subject string `json:"subject"`
	Comment string `json:"comment"`
}

type Post struct {
	ID      int     `json:"num"`
	Comment string  `json:"comment"`
	Date    string  `json:"date"`
	Images  []Image `json:"files"`
}

// Image references a downloadable file attached to a post. Path is relative
// to the service base URL.
type Image struct {
	Name     string `json:"name"`
	FullName string `json:"fullname"`
	Path     string `json:"path"`
}

// ListEntry is the plain (label, key) pair shown in a filterable list.
type ListEntry struct {
	Text string
	ID   string
}

func (e ListEntry) Label() string { return e.Text }
func (e ListEntry) Key() string   { return e.ID }

func (e ListEntry) String() string { return fmt.Sprintf("%s (%s)", e.Text, e.ID) }
