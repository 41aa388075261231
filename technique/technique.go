// Package technique manages named WGSL shader techniques. A set serves
// the embedded defaults and can overlay a directory on disk, with
// change notifications for hot reloading.
package technique

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/lumengine/lumen/logx"
)

//go:embed shaders/*.wgsl
var embedded embed.FS

var ErrUnknownTechnique = errors.New("unknown technique")

// Set resolves technique names to WGSL source. Lookup prefers the
// override directory when one is configured, falling back to the
// embedded defaults.
type Set struct {
	mu  sync.RWMutex
	dir string
}

// NewSet returns a set serving only the embedded techniques.
func NewSet() *Set {
	return &Set{}
}

// NewSetWithDir returns a set that overlays dir on the embedded
// techniques. Files are looked up as <dir>/<name>.wgsl.
func NewSetWithDir(dir string) *Set {
	return &Set{dir: dir}
}

// Source returns the WGSL source of the named technique.
func (s *Set) Source(name string) (string, error) {
	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()

	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name+".wgsl"))
		if err == nil {
			return string(data), nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("read technique %q: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("shaders/" + name + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTechnique, name)
	}

	return string(data), nil
}

// Names lists the available techniques, embedded and overlaid, sorted.
func (s *Set) Names() []string {
	seen := map[string]struct{}{}

	entries, _ := embedded.ReadDir("shaders")
	for _, e := range entries {
		seen[strings.TrimSuffix(e.Name(), ".wgsl")] = struct{}{}
	}

	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()

	if dir != "" {
		files, _ := os.ReadDir(dir)
		for _, f := range files {
			if strings.HasSuffix(f.Name(), ".wgsl") {
				seen[strings.TrimSuffix(f.Name(), ".wgsl")] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Watcher reports changes to techniques in the override directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching the set's override directory and invokes
// onChange with the technique name whenever a .wgsl file is written or
// created. It fails when the set has no directory configured.
func (s *Set) Watch(onChange func(name string)) (*Watcher, error) {
	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()

	if dir == "" {
		return nil, errors.New("technique set has no override directory to watch")
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create technique watcher: %w", err)
	}

	if err := fsWatch.Add(dir); err != nil {
		fsWatch.Close()

		return nil, fmt.Errorf("watch technique dir %q: %w", dir, err)
	}

	w := &Watcher{watcher: fsWatch, done: make(chan struct{})}

	go w.run(onChange)

	logx.L().Info("watching techniques", "dir", dir)

	return w, nil
}

func (w *Watcher) run(onChange func(name string)) {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if !strings.HasSuffix(event.Name, ".wgsl") {
				continue
			}

			name := strings.TrimSuffix(filepath.Base(event.Name), ".wgsl")

			logx.L().Info("technique changed", "technique", name)

			onChange(name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			logx.L().Warn("technique watcher error", "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)

	return w.watcher.Close()
}
