// Package journal reads and writes the clipboard log: an append-only UTF-8
// text file of "[YYYY-MM-DD HH:MM:SS] <text>" records.
package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DefaultFileName = "clipboard_log.txt"
)

var markerPattern = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\] `)

// Entry is one clipboard capture. Text is stored verbatim, so an entry may
// span several physical lines in the file.
type Entry struct {
	Time time.Time
	Text string
}

func NewEntry(text string, now time.Time) Entry {
	return Entry{Time: now.Truncate(time.Second), Text: text}
}

func (e Entry) Timestamp() string {
	return e.Time.Format(TimestampLayout)
}

// Line renders the entry exactly as it is appended to the file.
func (e Entry) Line() string {
	return fmt.Sprintf("[%s] %s\n", e.Timestamp(), e.Text)
}

// Append opens path for appending (creating it if absent), writes the entry
// and closes the file again. No handle outlives the call.
func Append(path string, e Entry) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close journal: %w", cerr)
		}
	}()

	if _, err := io.WriteString(f, e.Line()); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Read parses every entry in r. Lines before the first timestamp marker
// are ignored; lines without a marker belong to the preceding entry.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	err := Scan(r, func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, err
}

// Scan calls fn for each entry in order until fn returns false. Physical
// lines have no length limit, and only the "\n" terminator is removed so
// text copied with "\r\n" line endings reads back unchanged.
func Scan(r io.Reader, fn func(Entry) bool) error {
	reader := bufio.NewReader(r)

	var (
		current *Entry
		lines   []string
	)

	flush := func() bool {
		if current == nil {
			return true
		}
		current.Text = strings.Join(lines, "\n")
		ok := fn(*current)
		current = nil
		lines = nil
		return ok
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("scan journal: %w", err)
		}
		if err == io.EOF && line == "" {
			break
		}
		line = strings.TrimSuffix(line, "\n")

		if ts, rest, ok := ParseMarker(line); ok {
			if !flush() {
				return nil
			}
			current = &Entry{Time: ts}
			lines = []string{rest}
		} else if current != nil {
			lines = append(lines, line)
		}

		if err == io.EOF {
			break
		}
	}
	flush()
	return nil
}

// ParseMarker splits a physical line that starts a new record.
func ParseMarker(line string) (time.Time, string, bool) {
	m := markerPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return time.Time{}, "", false
	}
	ts, err := time.ParseInLocation(TimestampLayout, line[m[2]:m[3]], time.Local)
	if err != nil {
		return time.Time{}, "", false
	}
	return ts, line[m[1]:], true
}

// Tail returns the last n entries of the file at path.
func Tail(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if n <= 0 {
		return Read(f)
	}

	ring := make([]Entry, 0, n)
	err = Scan(f, func(e Entry) bool {
		if len(ring) == n {
			ring = append(ring[1:], e)
		} else {
			ring = append(ring, e)
		}
		return true
	})
	return ring, err
}

// DefaultPath places the journal in dir under DefaultFileName.
func DefaultPath(dir string) string {
	return filepath.Join(dir, DefaultFileName)
}
