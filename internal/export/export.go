package export

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	_ "modernc.org/sqlite"
)

// Row is one exported line of a frame: a list entry, or a rendered post.
type Row struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Body  string `json:"body,omitempty"`
}

// Write exports rows to path in the given format: csv, json (one object
// per line) or sqlite.
func Write(format, path string, rows []Row) error {
	switch format {
	case "csv":
		return ToCSV(path, rows)
	case "json":
		return ToNDJSON(path, rows)
	case "sqlite":
		return ToSQLite(path, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Ext is the file extension conventionally used for format.
func Ext(format string) string {
	switch format {
	case "json":
		return ".ndjson"
	case "sqlite":
		return ".sqlite3"
	default:
		return "." + format
	}
}

func ToCSV(path string, rows []Row) error {
	if len(rows) == 0 {
		return errors.New("no entries")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"key", "label", "body"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Key, r.Label, r.Body}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func ToNDJSON(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

const schema = `CREATE TABLE entries (
	position INTEGER PRIMARY KEY,
	key      TEXT NOT NULL,
	label    TEXT NOT NULL,
	body     TEXT NOT NULL DEFAULT ''
)`

// ToSQLite writes rows into a fresh database with a single entries table.
// An existing file at path is replaced.
func ToSQLite(path string, rows []Row) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO entries (position, key, label, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, r := range rows {
		if _, err := stmt.Exec(i, r.Key, r.Label, r.Body); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return db.Close()
}
