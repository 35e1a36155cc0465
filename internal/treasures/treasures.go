// internal/treasures/treasures.go
//
// Treasure catalog management for the game engine.
//
// Responsibilities:
//   - Parse treasure definitions from a file or the embedded default list.
//   - Validate the catalog (unique, non-empty ids; minimum size).
//   - Expose a read-only, ordered view: All, Count, Lookup, Contains.
//
// File format (one treasure per line):
//   id|name|color|emoji
// Blank lines and lines starting with '#' are ignored.
//
// Initialization behavior (Load):
//   1. If path is set (TREASURES_FILE), read the catalog from that file.
//   2. Otherwise fall back to assets/treasures.txt (embedded).
//
// The catalog is built once at startup and never mutated afterwards.

package treasures

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/tidal-recall/assets"
)

// MinItems is the smallest catalog a game can be played on.
const MinItems = 2

var (
	ErrTooSmall    = errors.New("treasures: catalog too small")
	ErrDuplicateID = errors.New("treasures: duplicate id")
	ErrEmptyID     = errors.New("treasures: empty id")
	ErrBadLine     = errors.New("treasures: malformed line")
)

// Item is a single treasure. Values are immutable once the catalog is built.
type Item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"` // opaque styling tag for the client
	Emoji string `json:"emoji"`
}

// Catalog is an ordered, read-only set of treasures.
type Catalog struct {
	items []Item
	index map[string]int // id -> position in items
}

// New validates items and builds a Catalog. The slice is copied.
func New(items []Item) (*Catalog, error) {
	if len(items) < MinItems {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrTooSmall, len(items), MinItems)
	}
	c := &Catalog{
		items: make([]Item, len(items)),
		index: make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i, it := range c.items {
		if it.ID == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyID, i)
		}
		if _, dup := c.index[it.ID]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateID, it.ID)
		}
		c.index[it.ID] = i
	}
	return c, nil
}

// All returns the treasures in catalog order. The caller owns the copy.
func (c *Catalog) All() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the fixed catalog size N.
func (c *Catalog) Count() int { return len(c.items) }

// Lookup returns the treasure with the given id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Contains reports whether id is part of the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Load builds a catalog from path, or from the embedded defaults when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	c, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		f, err := assets.Treasures()
		if err != nil {
			defaultErr = err
			return
		}
		defer f.Close()
		defaultCat, defaultErr = parse(f)
	})
	return defaultCat, defaultErr
}

// parse turns "id|name|color|emoji" lines into a validated Catalog.
// Errors name the 1-based line in the input.
func parse(r io.Reader) (*Catalog, error) {
	var items []Item
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w %d: %q", ErrBadLine, n, line)
		}
		items = append(items, Item{
			ID:    strings.ToLower(strings.TrimSpace(parts[0])),
			Name:  strings.TrimSpace(parts[1]),
			Color: strings.TrimSpace(parts[2]),
			Emoji: strings.TrimSpace(parts[3]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(items)
}
