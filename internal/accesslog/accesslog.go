// Package accesslog reads the source addresses out of access logs.
//
// A log is a restartable sequence: every call to Each is an independent pass over the same
// items, so several consumers can count the same input without sharing state.
package accesslog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// DefaultField is the JSON field holding the client address in the access logs we read.
const DefaultField = "remote_addr"

const maxLineBytes = 1 << 20

// Stats describes the last completed pass over a File.
type Stats struct {
	Lines   int // lines read, including blank ones
	Items   int // items passed to the callback
	Skipped int // non-blank lines without a usable address
}

// File is an access log on disk. With a Field set, every line is a JSON object and the item is
// the string value of that field; lines that aren't valid JSON, or lack the field, are skipped.
// With an empty Field every non-blank line is an item, for files holding one address per line.
type File struct {
	Path  string
	Field string

	// Progress draws a progress bar on stderr while the file is read.
	Progress bool

	stats Stats
}

// NewFile returns a File reading the DefaultField of JSON lines at path.
func NewFile(path string) *File {
	return &File{Path: path, Field: DefaultField}
}

// Each opens the file and calls fn for every item in order. The item slice is only valid during
// the call. Each stops at the first error returned by fn and returns it.
func (f *File) Each(fn func(item []byte) error) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open access log: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if f.Progress {
		fi, err := file.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat access log: %w", err)
		}
		bar := progressbar.DefaultBytes(fi.Size(), "reading "+f.Path)
		defer bar.Close()
		r = io.TeeReader(file, bar)
	}

	stats, err := scan(r, f.Field, fn)
	f.stats = stats
	return err
}

// Stats returns the counters of the last pass.
func (f *File) Stats() Stats {
	return f.stats
}

func scan(r io.Reader, field string, fn func(item []byte) error) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		stats.Lines++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		item := line
		if field != "" {
			var ok bool
			if item, ok = extract(line, field); !ok {
				stats.Skipped++
				continue
			}
		}

		stats.Items++
		if err := fn(item); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read access log: %w", err)
	}
	return stats, nil
}

// extract returns the non-empty string value of field in the JSON object line.
func extract(line []byte, field string) ([]byte, bool) {
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil, false
	}
	raw, ok := entry[field]
	if !ok {
		return nil, false
	}
	var addr string
	if err := json.Unmarshal(raw, &addr); err != nil || addr == "" {
		return nil, false
	}
	return []byte(addr), true
}

// Slice is an in-memory sequence of items.
type Slice []string

func (s Slice) Each(fn func(item []byte) error) error {
	for _, item := range s {
		if err := fn([]byte(item)); err != nil {
			return err
		}
	}
	return nil
}
