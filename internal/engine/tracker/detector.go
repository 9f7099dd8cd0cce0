package tracker

import (
	"time"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

// recentRemove remembers a disappearance and the metadata the index held
// for the path, so a matching appearance inside the window can be
// reclassified as a rename.
type recentRemove struct {
	meta domain.FileMeta
	at   time.Time
}

// ChangeDetector reconciles raw source notifications into semantic events
// and submits them to the debouncer. It runs only on the consumer
// goroutine, which also owns the index it reads.
//
// Rename detection is a heuristic: a removal followed inside the window by
// an appearance elsewhere with identical kind, size and mtime is treated
// as a move. Unrelated pairs that happen to match are misclassified as
// renames; that is accepted, not a correctness bug.
type ChangeDetector struct {
	scanner   ports.Scanner
	index     *domain.PathIndex
	debouncer *Debouncer
	logger    ports.Logger
	window    time.Duration

	removes map[string]recentRemove
}

// NewChangeDetector creates a detector feeding the given debouncer.
func NewChangeDetector(scanner ports.Scanner, index *domain.PathIndex, debouncer *Debouncer, window time.Duration, log ports.Logger) *ChangeDetector {
	return &ChangeDetector{
		scanner:   scanner,
		index:     index,
		debouncer: debouncer,
		logger:    log,
		window:    window,
		removes:   make(map[string]recentRemove),
	}
}

// Reconcile classifies one raw event and submits the semantic result.
func (c *ChangeDetector) Reconcile(raw ports.RawEvent) {
	c.purge(raw.Time)

	switch raw.Op {
	case ports.OpAdd:
		c.handleAdd(raw)
	case ports.OpWrite:
		c.handleWrite(raw)
	case ports.OpRemove, ports.OpRenameAway:
		c.handleRemove(raw.Path, raw.Time)
	}
}

func (c *ChangeDetector) handleAdd(raw ports.RawEvent) {
	meta, ok := c.scanner.StatEntry(raw.Path)
	if !ok {
		// Gone before it could be examined; if it was ever real, the
		// matching removal event carries the cleanup.
		c.logger.Debug(domain.ErrTransientIO.Error() + ", skipping appearance of " + raw.Path)
		return
	}

	if oldPath, found := c.matchRemove(raw.Path, meta, raw.Time); found {
		c.debouncer.Discard(oldPath)
		delete(c.removes, oldPath)
		c.debouncer.Submit(domain.Event{
			Path:    raw.Path,
			OldPath: oldPath,
			Kind:    domain.EventRenamed,
			Meta:    meta,
			Time:    raw.Time,
		})
		return
	}

	kind := domain.EventCreated
	if _, known := c.index.Meta(raw.Path); known {
		// The path already exists in the tree: an appearance on top of it
		// is a replacement, the way editors save by rename.
		kind = domain.EventModified
	}
	c.debouncer.Submit(domain.Event{Path: raw.Path, Kind: kind, Meta: meta, Time: raw.Time})
}

func (c *ChangeDetector) handleWrite(raw ports.RawEvent) {
	meta, ok := c.scanner.StatEntry(raw.Path)
	if !ok {
		// Unreadable or already deleted mid-flight: degrade to a removal
		// rather than halting on the path.
		c.logger.Debug(domain.ErrTransientIO.Error() + ", treating " + raw.Path + " as deleted")
		c.handleRemove(raw.Path, raw.Time)
		return
	}
	c.debouncer.Submit(domain.Event{Path: raw.Path, Kind: domain.EventModified, Meta: meta, Time: raw.Time})
}

func (c *ChangeDetector) handleRemove(path string, at time.Time) {
	if meta, ok := c.index.Meta(path); ok {
		c.removes[path] = recentRemove{meta: meta, at: at}
	}
	c.debouncer.Submit(domain.Event{Path: path, Kind: domain.EventDeleted, Time: at})
}

// matchRemove finds the most recent removal whose metadata matches the
// appeared entry. Same-path matches are recreations, not renames.
func (c *ChangeDetector) matchRemove(path string, meta domain.FileMeta, at time.Time) (string, bool) {
	var (
		bestPath string
		bestAt   time.Time
		found    bool
	)
	for oldPath, rem := range c.removes {
		if oldPath == path || at.Sub(rem.at) > c.window {
			continue
		}
		if !rem.meta.SameContent(meta) {
			continue
		}
		if !found || rem.at.After(bestAt) {
			bestPath, bestAt, found = oldPath, rem.at, true
		}
	}
	return bestPath, found
}

// purge drops removal candidates older than the window.
func (c *ChangeDetector) purge(now time.Time) {
	for path, rem := range c.removes {
		if now.Sub(rem.at) > c.window {
			delete(c.removes, path)
		}
	}
}
