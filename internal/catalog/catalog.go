// Package catalog holds the immutable set of item names the scanner can recognize.
package catalog

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

//go:embed items.txt
var defaultItems string

var (
	// ErrEmpty is returned when a catalog would contain no names.
	ErrEmpty = errors.New("catalog is empty")

	// ErrEmptyEntry is returned for a blank name in an explicit name list.
	ErrEmptyEntry = errors.New("catalog entry is empty")

	// ErrDuplicateEntry is returned when two names differ only by case.
	ErrDuplicateEntry = errors.New("duplicate catalog entry")
)

// Catalog is an ordered, case-insensitively unique set of item names.
// It is read-only after construction and safe for concurrent use.
type Catalog struct {
	names []string
	index map[string]int
}

// New builds a catalog from names, preserving their order. Names are trimmed.
func New(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyEntry)
		}
		key := strings.ToLower(name)
		if prev, ok := c.index[key]; ok {
			return nil, fmt.Errorf("%q duplicates %q: %w", name, c.names[prev], ErrDuplicateEntry)
		}
		c.index[key] = len(c.names)
		c.names = append(c.names, name)
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(strings.NewReader(defaultItems))
}

// Load reads one name per line. Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader) (*Catalog, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return New(names)
}

// LoadFile loads a catalog from disk. Files ending in ".json" must hold a JSON
// array of strings; anything else is read as one name per line.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var names []string
		if err := json.NewDecoder(f).Decode(&names); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
		return New(names)
	}
	return Load(f)
}

// Names returns a copy of the names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of names.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Lookup returns the canonical spelling of name if it is in the catalog,
// compared case-insensitively.
func (c *Catalog) Lookup(name string) (string, bool) {
	i, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return c.names[i], true
}

// Each calls fn for every name in catalog order.
func (c *Catalog) Each(fn func(name string)) {
	for _, name := range c.names {
		fn(name)
	}
}
