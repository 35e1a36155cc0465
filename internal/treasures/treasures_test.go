package treasures

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Count() != 24 {
		t.Fatalf("Count = %d, want 24", c.Count())
	}
	seen := map[string]bool{}
	for _, it := range c.All() {
		if seen[it.ID] {
			t.Fatalf("duplicate id %q", it.ID)
		}
		seen[it.ID] = true
		if it.Name == "" || it.Emoji == "" || it.Color == "" {
			t.Errorf("incomplete item %+v", it)
		}
	}
	if got, ok := c.Lookup("anchor"); !ok || got.Emoji != "⚓" {
		t.Fatalf("Lookup(anchor) = %+v, %v", got, ok)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c, err := New([]Item{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})
	if err != nil {
		t.Fatal(err)
	}
	all := c.All()
	all[0].Name = "changed"
	if it, _ := c.Lookup("a"); it.Name != "A" {
		t.Fatalf("catalog mutated through All(): %+v", it)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  error
	}{
		{"empty", nil, ErrTooSmall},
		{"single", []Item{{ID: "a"}}, ErrTooSmall},
		{"duplicate", []Item{{ID: "a"}, {ID: "a"}}, ErrDuplicateID},
		{"blank id", []Item{{ID: "a"}, {ID: ""}}, ErrEmptyID},
		{"ok", []Item{{ID: "a"}, {ID: "b"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.txt")
	body := "# test\n\nRUBY|Ruby|red|💍\nopal | Opal | white | 🔮\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Count() != 2 || !c.Contains("ruby") || !c.Contains("opal") {
		t.Fatalf("unexpected catalog: %+v", c.All())
	}
	if it, _ := c.Lookup("opal"); it.Name != "Opal" || it.Color != "white" {
		t.Fatalf("fields not trimmed: %+v", it)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("a|b|c\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrBadLine) {
		t.Fatalf("err = %v, want ErrBadLine", err)
	}

	// Line numbers count blanks and comments.
	body := "# header\n\nshell|Shell|pink|🐚\npearl|Pearl\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrBadLine) || !strings.Contains(err.Error(), "line 4:") {
		t.Fatalf("err = %v, want bad line 4", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	d, _ := Default()
	if c != d {
		t.Fatal("Load(\"\") did not return the embedded catalog")
	}
}
