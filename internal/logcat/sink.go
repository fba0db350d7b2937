package logcat

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// Sink receives every entry a monitor consumes, independent of the
// in-memory ring's eviction. Write is called from the monitor's read
// goroutine only; implementations need not be concurrency safe.
type Sink interface {
	Write(e Entry) error
	Close() error
}

// FileSink appends raw log lines to a file.
type FileSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// NewFileSink creates or truncates path.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	return &FileSink{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Write(e Entry) error {
	_, err := s.w.WriteString(e.Raw + "\n")
	return err
}

func (s *FileSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// SQLiteSink stores parsed entries in a local database, keeping
// structured fields queryable after the monitor ends.
type SQLiteSink struct {
	db   *sql.DB
	stmt *sql.Stmt
}

const sinkSchema = `
CREATE TABLE IF NOT EXISTS entries (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT,
	pid       INTEGER,
	tid       INTEGER,
	priority  TEXT,
	tag       TEXT,
	message   TEXT NOT NULL,
	unparsed  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_entries_tag ON entries(tag);
CREATE INDEX IF NOT EXISTS idx_entries_priority ON entries(priority);
`

// NewSQLiteSink opens or creates the database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open log database: %w", err)
	}
	if _, err := db.Exec(sinkSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init log database: %w", err)
	}
	stmt, err := db.Prepare(
		`INSERT INTO entries (timestamp, pid, tid, priority, tag, message, unparsed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &SQLiteSink{db: db, stmt: stmt}, nil
}

func (s *SQLiteSink) Write(e Entry) error {
	unparsed := 0
	if e.Unparsed {
		unparsed = 1
	}
	_, err := s.stmt.Exec(e.Timestamp, e.PID, e.TID, e.Priority, e.Tag, e.Message, unparsed)
	return err
}

func (s *SQLiteSink) Close() error {
	s.stmt.Close()
	return s.db.Close()
}
