package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nhle/mailstat/internal/model"
)

// ParseError indicates the snapshot file exists but its content does
// not deserialize. Callers treat it like an absent file and start from
// an empty snapshot.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"parsing snapshot %s line %d: %v", e.Path, e.Line, e.Err,
	)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err (or any error in its chain) is a
// ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsNotFound reports whether err means the snapshot file is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Store reads and writes the snapshot file: one JSON object per line,
// the sole durable state of the program.
type Store struct {
	path string
}

// New creates a Store for the snapshot file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the full snapshot. An absent file reports fs.ErrNotExist
// and malformed content reports a ParseError; both mean "start from an
// empty snapshot". Any other failure is reported as-is, since starting
// empty over a file that exists but cannot be read would clobber it on
// the next save.
func (s *Store) Load() ([]model.Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", s.path, err)
	}
	defer f.Close()

	var entries []model.Entry

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var entry model.Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, &ParseError{Path: s.path, Line: line, Err: err}
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", s.path, err)
	}

	return entries, nil
}

// Save serializes the full snapshot and replaces the file atomically:
// entries are written to a temporary file in the same directory, which
// is then renamed over the target, so no reader observes a half-written
// snapshot.
func (s *Store) Save(entries []model.Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeEntries(tmp, entries); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing snapshot %s: %w", s.path, err)
	}

	return nil
}

// writeEntries writes one JSON object per line.
func writeEntries(w io.Writer, entries []model.Entry) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf(
				"encoding entry %s: %w", entry.MessageID, err,
			)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}
