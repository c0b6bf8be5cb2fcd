package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownOption reports keys that no component reads.
var ErrUnknownOption = errors.New("unknown option")

// Points per unit for length values.
var units = map[string]float64{
	"":   1,
	"pt": 1,
	"in": 72,
	"cm": 28.35,
	"mm": 2.835,
	"pc": 12,
}

// File is a set of "key: value" typesetting options. Loading several
// sources in turn lets later ones override earlier ones.
type File struct {
	values map[string]string
}

func NewFile() *File {
	return &File{values: make(map[string]string)}
}

// Load reads options from r. Lines starting with '#' and lines without a
// colon are ignored.
func (f *File) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		f.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// LoadPath reads options from a file. A missing file is not an error.
func (f *File) LoadPath(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	if err := f.Load(file); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Clone returns an independent copy, so per-request overrides leave a
// shared base untouched.
func (f *File) Clone() *File {
	c := NewFile()
	for k, v := range f.values {
		c.values[k] = v
	}
	return c
}

// Set overrides a single option.
func (f *File) Set(key, value string) {
	f.values[key] = value
}

// Has reports whether key was given.
func (f *File) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Text returns the raw value for key, or fallback.
func (f *File) Text(key, fallback string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return fallback
}

// CheckKeys returns ErrUnknownOption listing any keys that are not
// typesetting options.
func (f *File) CheckKeys() error {
	var unknown []string
	for key := range f.values {
		if !knownKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownOption, strings.Join(unknown, ", "))
}

// ParseLength parses a number with an optional unit suffix (pt, in, cm, mm,
// pc) into points.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '-' && end == 0 || s[end] == '.' || s[end] >= '0' && s[end] <= '9') {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	unit := strings.ToLower(strings.TrimSpace(s[end:]))
	scale, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("invalid length %q: unknown unit %q", s, unit)
	}
	return n * scale, nil
}
