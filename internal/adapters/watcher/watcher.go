// Package watcher implements the native event source on top of fsnotify.
//
// The watcher registers every directory of the tree at start and keeps the
// registration current as directories appear. Subtrees whose registration
// fails are reported back to the caller so a polling source can cover them
// instead.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/zerr"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

var _ ports.EventSource = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher is the fsnotify-backed event source.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	filter    *domain.Filter
	logger    ports.Logger

	roots []string

	events   chan ports.RawEvent
	stopOnce sync.Once
	stopErr  error
}

// NewWatcher creates a watcher. A construction error means the OS facility
// is unavailable; callers fall back to the polling source.
func NewWatcher(filter *domain.Filter, log ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatchSetup.Error())
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		filter:    filter,
		logger:    log,
		events:    make(chan ports.RawEvent, eventChannelBuffer),
	}, nil
}

// Start registers watches over every directory below the given roots and
// begins converting notifications. Directories whose registration failed
// are returned so the caller can route them to a fallback source.
func (w *Watcher) Start(ctx context.Context, roots ...string) ([]string, error) {
	w.roots = make([]string, 0, len(roots))
	for _, root := range roots {
		w.roots = append(w.roots, filepath.Clean(root))
	}

	var uncovered []string
	for _, root := range w.roots {
		uncovered = append(uncovered, w.addTree(root, false)...)
	}

	go w.processEvents(ctx)

	return uncovered, nil
}

// Stop closes the underlying watcher. Safe to call more than once; the
// event channel closes once the processing goroutine drains.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		w.stopErr = w.fsWatcher.Close()
	})
	return w.stopErr
}

// Events returns an iterator of raw events. It terminates when the watcher
// is stopped or its context is canceled.
func (w *Watcher) Events() iter.Seq[ports.RawEvent] {
	return func(yield func(ports.RawEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// addTree walks a subtree and registers a watch on every directory that the
// filter admits. Registration failures land in the returned slice instead of
// aborting the walk, so one unreadable directory does not lose the rest of
// the tree. When emit is set, every admitted entry is also published as an
// add event; runtime directory creation needs this because entries created
// before the watch existed produce no notification of their own.
func (w *Watcher) addTree(root string, emit bool) []string {
	var uncovered []string

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				uncovered = append(uncovered, root)
				return filepath.SkipAll
			}
			return nil //nolint:nilerr // unreadable entries are skipped, not fatal
		}

		if rel, ok := w.relativize(path); !ok || w.filter.Excluded(rel) {
			if d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if addErr := w.fsWatcher.Add(path); addErr != nil {
				uncovered = append(uncovered, path)
				return fs.SkipDir
			}
		}

		if emit && path != root {
			w.publish(ports.RawEvent{Path: path, Op: ports.OpAdd, Time: time.Now()})
		}

		return nil
	})

	return uncovered
}

// processEvents converts fsnotify notifications into raw events.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watch error: " + err.Error())
		}
	}
}

// handleEvent filters, converts and publishes one fsnotify event.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	rel, ok := w.relativize(event.Name)
	if !ok || w.filter.Excluded(rel) {
		return
	}

	raw, ok := w.convertEvent(event)
	if !ok {
		return
	}

	select {
	case w.events <- raw:
	case <-ctx.Done():
		return
	}

	// A freshly created directory needs its own watch, and any entries that
	// raced in before the watch existed need synthetic add events.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			for _, dir := range w.addTree(event.Name, true) {
				w.logger.Debug("could not watch new directory " + dir)
			}
		}
	}
}

// convertEvent maps an fsnotify operation onto a raw event. Chmod is
// dropped: permission flips change no content and arrive in bursts on some
// platforms.
func (w *Watcher) convertEvent(event fsnotify.Event) (ports.RawEvent, bool) {
	raw := ports.RawEvent{Path: event.Name, Time: time.Now()}

	switch {
	case event.Op.Has(fsnotify.Create):
		raw.Op = ports.OpAdd
	case event.Op.Has(fsnotify.Write):
		raw.Op = ports.OpWrite
	case event.Op.Has(fsnotify.Remove):
		raw.Op = ports.OpRemove
	case event.Op.Has(fsnotify.Rename):
		raw.Op = ports.OpRenameAway
	default:
		return ports.RawEvent{}, false
	}

	return raw, true
}

// publish sends a synthetic event without blocking shutdown.
func (w *Watcher) publish(event ports.RawEvent) {
	select {
	case w.events <- event:
	default:
		w.logger.Warn("dropped synthetic add event for " + event.Path)
	}
}

// relativize maps an absolute event path onto a slash-separated path
// relative to the root that contains it.
func (w *Watcher) relativize(path string) (string, bool) {
	path = filepath.Clean(path)
	for _, root := range w.roots {
		if path == root {
			return ".", true
		}
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return "", false
			}
			return filepath.ToSlash(rel), true
		}
	}
	return "", false
}
