package technique

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmbeddedTechniques(t *testing.T) {
	set := NewSet()

	for _, name := range []string{"unlit", "clear", "blit"} {
		src, err := set.Source(name)
		if err != nil {
			t.Fatalf("source %q: %v", name, err)
		}

		if !strings.Contains(src, "fs_main") {
			t.Fatalf("technique %q has no fragment entry point", name)
		}
	}
}

func TestUnknownTechnique(t *testing.T) {
	set := NewSet()

	_, err := set.Source("volumetric_fog")
	if !errors.Is(err, ErrUnknownTechnique) {
		t.Fatalf("error %v, want ErrUnknownTechnique", err)
	}
}

func TestDirectoryOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()

	custom := "@fragment fn fs_main() {}"
	if err := os.WriteFile(filepath.Join(dir, "unlit.wgsl"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	set := NewSetWithDir(dir)

	src, err := set.Source("unlit")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if src != custom {
		t.Fatalf("override not served")
	}

	// names merge both sources
	names := set.Names()
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["unlit"] || !found["blit"] {
		t.Fatalf("names %v missing expected techniques", names)
	}

	// embedded fallback still works for techniques not in the directory
	if _, err := set.Source("clear"); err != nil {
		t.Fatalf("embedded fallback: %v", err)
	}
}

func TestWatchReportsChangedTechnique(t *testing.T) {
	dir := t.TempDir()
	set := NewSetWithDir(dir)

	changed := make(chan string, 4)

	w, err := set.Watch(func(name string) { changed <- name })
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "unlit.wgsl"), []byte("// v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-changed:
		if name != "unlit" {
			t.Fatalf("changed %q, want unlit", name)
		}

	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification")
	}
}

func TestWatchRequiresDirectory(t *testing.T) {
	if _, err := NewSet().Watch(func(string) {}); err == nil {
		t.Fatalf("expected error watching a set without directory")
	}
}
