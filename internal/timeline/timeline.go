// Package timeline parses the video description file: one scene per line,
// "H:MM:SS <seconds> <description...>".
package timeline

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedLine is wrapped by every parse failure.
var ErrMalformedLine = errors.New("malformed timeline line")

// Entry is one described scene of the video.
type Entry struct {
	Index           int
	StartSeconds    int
	DurationSeconds int
	Description     string
}

// Timeline is a description file that is re-read on every iteration.
type Timeline struct {
	path string
}

// Open checks that path is readable and returns its Timeline.
func Open(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timeline: %w", err)
	}
	f.Close()
	return &Timeline{path: path}, nil
}

// Path returns the description file path.
func (t *Timeline) Path() string {
	return t.path
}

// Entries yields entries in file order. Each range re-opens the file, so the
// sequence can be walked again from the start. Iteration stops after the
// first error is yielded.
func (t *Timeline) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		f, err := os.Open(t.path)
		if err != nil {
			yield(Entry{}, fmt.Errorf("open timeline: %w", err))
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lineNo := 0
		index := 0
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}

			e, err := ParseLine(line, index)
			if err != nil {
				yield(Entry{}, fmt.Errorf("line %d: %w", lineNo, err))
				return
			}
			index++

			if !yield(e, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(Entry{}, fmt.Errorf("read timeline: %w", err))
		}
	}
}

// Validate walks the whole file and returns the entry count or the first error.
func (t *Timeline) Validate() (int, error) {
	n := 0
	for _, err := range t.Entries() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Load parses the whole file at path.
func Load(path string) ([]Entry, error) {
	t, err := Open(path)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for e, err := range t.Entries() {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseLine parses a single non-blank line. Runs of whitespace separate
// fields; the description keeps single spaces between its words.
func ParseLine(line string, index int) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Entry{}, fmt.Errorf("%w: want timestamp and duration, got %q", ErrMalformedLine, line)
	}

	start, err := ParseTimestamp(fields[0])
	if err != nil {
		return Entry{}, err
	}

	duration, err := strconv.Atoi(fields[1])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: duration %q is not an integer", ErrMalformedLine, fields[1])
	}
	if duration < 0 {
		return Entry{}, fmt.Errorf("%w: duration %d is negative", ErrMalformedLine, duration)
	}

	return Entry{
		Index:           index,
		StartSeconds:    start,
		DurationSeconds: duration,
		Description:     strings.Join(fields[2:], " "),
	}, nil
}

// ParseTimestamp converts "H:MM:SS" to whole seconds.
func ParseTimestamp(ts string) (int, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: timestamp %q is not H:MM:SS", ErrMalformedLine, ts)
	}

	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || strings.HasPrefix(p, "+") {
			return 0, fmt.Errorf("%w: timestamp %q is not H:MM:SS", ErrMalformedLine, ts)
		}
		v[i] = n
	}

	return v[0]*3600 + v[1]*60 + v[2], nil
}
