package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change
// before re-resolving.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives the freshly resolved rule set after a change.
type ReloadFunc func(rs *RuleSet, warnings []error, err error)

// Watcher re-resolves the layered configuration whenever a permissions file
// in one of the search locations is written, created or removed.
type Watcher struct {
	resolver   *Resolver
	projectDir string
	toolHint   string
	onReload   ReloadFunc
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	dirs       []string
}

// NewWatcher watches every existing search directory for projectDir.
// Directories that do not exist yet are skipped; the project directory
// itself is watched so that a new .settings directory is noticed on the
// next change inside it.
func NewWatcher(r *Resolver, projectDir, toolHint string, onReload ReloadFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		resolver:   r,
		projectDir: projectDir,
		toolHint:   toolHint,
		onReload:   onReload,
		debounce:   DefaultDebounce,
		watcher:    fw,
	}
	dirs := []string{projectDir}
	for _, c := range r.Candidates(projectDir, toolHint) {
		dirs = append(dirs, c.Dir)
	}
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %q: %w", dir, err)
		}
		w.dirs = append(w.dirs, dir)
	}
	return w, nil
}

// Dirs lists the directories being watched.
func (w *Watcher) Dirs() []string {
	return w.dirs
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is cancelled. Errors from the underlying watcher are
// delivered to onReload as a resolve error with a nil rule set.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			rs, warnings, err := w.resolver.Resolve(w.projectDir, w.toolHint)
			w.onReload(rs, warnings, err)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.onReload(nil, nil, fmt.Errorf("file watcher: %w", err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	for _, n := range ConfigNames {
		if name == n {
			return true
		}
	}
	// A search directory appearing inside the project.
	if filepath.Dir(event.Name) == w.projectDir && event.Has(fsnotify.Create) && w.isSearchDir(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
			w.dirs = append(w.dirs, event.Name)
			return true
		}
	}
	return false
}

func (w *Watcher) isSearchDir(path string) bool {
	for _, c := range w.resolver.Candidates(w.projectDir, w.toolHint) {
		if c.Dir == path {
			return true
		}
	}
	return false
}
