package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce on save
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a set of files. It watches their parent
// directories so files replaced by rename keep being tracked.
type Watcher struct {
	w        *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
}

// NewWatcher starts watching files. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration, files ...string) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &Watcher{w: w, files: make(map[string]bool), debounce: debounce}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, err
		}
		fw.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return fw, nil
}

// Run calls onChange with the last changed file once events have been quiet
// for the debounce interval. It returns when ctx is done or the watcher fails.
func (fw *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	var timer *time.Timer
	var fire <-chan time.Time
	var changed string
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(ev) {
				continue
			}
			changed = ev.Name
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(changed)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher: %w", err)
		}
	}
}

func (fw *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && fw.files[abs]
}

// Close stops watching
func (fw *Watcher) Close() error {
	return fw.w.Close()
}
