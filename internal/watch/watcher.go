// Package watch reports material exports as they land in a directory.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/lightship/internal/logging"
)

// Operation is the kind of change seen for a file
type Operation string

const (
	Created  Operation = "created"
	Modified Operation = "modified"
	Deleted  Operation = "deleted"
)

// DefaultExtensions are the export formats the parser has adapters for
var DefaultExtensions = []string{".txt", ".csv", ".tsv", ".html", ".htm"}

// DefaultDebounce coalesces the burst of writes editors and copy tools emit
const DefaultDebounce = 500 * time.Millisecond

// FileEvent is one settled change to a watched export
type FileEvent struct {
	Path      string
	Operation Operation
}

// Watcher wraps fsnotify with an extension filter and per-file debounce
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	debounce   time.Duration
	log        *logging.Logger
}

// NewWatcher creates a watcher. Empty extensions means DefaultExtensions;
// a zero debounce emits every event immediately.
func NewWatcher(extensions []string, debounce time.Duration, log *logging.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	return &Watcher{
		watcher:    w,
		extensions: exts,
		debounce:   debounce,
		log:        logging.OrNop(log),
	}, nil
}

// Watch starts monitoring dir. The channel closes when ctx is done or the
// watcher is stopped.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan FileEvent, 100)
	pending := newDebouncer(w.debounce)

	go func() {
		defer close(events)
		defer pending.stop()

		emit := func(ev FileEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-pending.ready:
				if !emit(ev) {
					return
				}
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.IsWatched(event.Name) {
					continue
				}

				var op Operation
				switch {
				case event.Op&fsnotify.Create == fsnotify.Create:
					op = Created
				case event.Op&fsnotify.Write == fsnotify.Write:
					op = Modified
				case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					op = Deleted
				default:
					continue
				}

				ev := FileEvent{Path: event.Name, Operation: op}
				if w.debounce <= 0 || op == Deleted {
					pending.cancel(event.Name)
					if !emit(ev) {
						return
					}
					continue
				}
				pending.add(ev)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn("watch error", "dir", dir, "error", err)
			}
		}
	}()

	return events, nil
}

// Stop closes the underlying watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// IsWatched checks the file extension against the filter
func (w *Watcher) IsWatched(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// debouncer holds the latest event per path until it has been quiet for
// the debounce interval. A create followed by writes stays a create.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	events map[string]FileEvent
	ready  chan FileEvent
	done   chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		events: make(map[string]FileEvent),
		ready:  make(chan FileEvent, 100),
		done:   make(chan struct{}),
	}
}

func (d *debouncer) add(ev FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.events[ev.Path]; ok && prev.Operation == Created {
		ev.Operation = Created
	}
	d.events[ev.Path] = ev

	if t, ok := d.timers[ev.Path]; ok {
		t.Stop()
	}
	path := ev.Path
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		settled, ok := d.events[path]
		delete(d.events, path)
		delete(d.timers, path)
		d.mu.Unlock()
		if !ok {
			return
		}
		select {
		case d.ready <- settled:
		case <-d.done:
		}
	})
}

func (d *debouncer) cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
		delete(d.timers, path)
	}
	delete(d.events, path)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
	close(d.done)
}
