package locator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccwio/ccw/internal/cwlog"
)

// MutationEvent reports an out-of-band change to a session file, detected
// outside of ccw's own store writes (e.g. a user editing a file directly,
// or another process sharing the same state root).
type MutationEvent struct {
	Path      string // absolute path to the changed file
	EventType string // "created", "modified", or "removed"
}

// Watcher monitors a project's state root for filesystem mutations made
// outside the Session Store's own write path.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	mu      sync.Mutex
}

// Watch starts recursively watching stateRoot. Events are delivered on the
// returned channel, which is closed when ctx is canceled.
func Watch(ctx context.Context, stateRoot string) (<-chan MutationEvent, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: stateRoot, watcher: fw}
	w.addRecursive(stateRoot)

	events := make(chan MutationEvent, 64)
	go w.loop(ctx, events)
	return events, nil
}

func (w *Watcher) addRecursive(root string) {
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			cwlog.Log.Warn("locator: watch add failed", "dir", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, events chan<- MutationEvent) {
	defer close(events)
	defer w.watcher.Close()

	// Debounce rapid successive writes to the same path.
	pending := make(map[string]*time.Timer)
	const debounce = 300 * time.Millisecond

	emit := func(path, eventType string) {
		select {
		case events <- MutationEvent{Path: path, EventType: eventType}:
		default:
			cwlog.Log.Warn("locator: mutation event dropped, channel full", "path", path)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			for _, t := range pending {
				t.Stop()
			}
			w.mu.Unlock()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if ev.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addRecursive(ev.Name)
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".json") && !strings.HasSuffix(ev.Name, ".md") {
				continue
			}

			var eventType string
			switch {
			case ev.Op&fsnotify.Remove == fsnotify.Remove:
				eventType = "removed"
			case ev.Op&fsnotify.Create == fsnotify.Create:
				eventType = "created"
			case ev.Op&fsnotify.Write == fsnotify.Write:
				eventType = "modified"
			default:
				continue
			}

			w.mu.Lock()
			if t, ok := pending[ev.Name]; ok {
				t.Stop()
			}
			path, kind := ev.Name, eventType
			pending[ev.Name] = time.AfterFunc(debounce, func() { emit(path, kind) })
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			cwlog.Log.Warn("locator: watcher error", "error", err)
		}
	}
}
