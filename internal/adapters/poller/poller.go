// Package poller implements the portable event source: a periodic rescan
// of the tree, diffed against the previous listing. It is the fallback
// when OS-level watching is unavailable or leaves subtrees uncovered.
package poller

import (
	"context"
	"iter"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

var _ ports.EventSource = (*Poller)(nil)

const eventChannelBuffer = 100

// Poller rescans its roots on a fixed interval and emits the difference
// between successive listings as raw events.
type Poller struct {
	scanner  ports.Scanner
	filter   *domain.Filter
	logger   ports.Logger
	tracer   ports.Tracer
	interval time.Duration

	roots []string
	known map[string]domain.FileMeta

	events   chan ports.RawEvent
	stop     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller that rescans every interval.
func NewPoller(scanner ports.Scanner, filter *domain.Filter, interval time.Duration, log ports.Logger, tracer ports.Tracer) *Poller {
	return &Poller{
		scanner:  scanner,
		filter:   filter,
		logger:   log,
		tracer:   tracer,
		interval: interval,
		known:    make(map[string]domain.FileMeta),
		events:   make(chan ports.RawEvent, eventChannelBuffer),
		stop:     make(chan struct{}),
	}
}

// Seed installs the baseline listing the first rescan diffs against.
// Without a seed, Start performs a silent scan of its own. Entries outside
// the roots later passed to Start are ignored there.
func (p *Poller) Seed(entries []domain.ScanEntry) {
	for _, entry := range entries {
		p.known[filepath.Clean(entry.Path)] = entry.Meta
	}
}

// Start begins the rescan loop over the given roots. The poller covers
// everything a directory walk can reach, so the uncovered list is always
// empty.
func (p *Poller) Start(ctx context.Context, roots ...string) ([]string, error) {
	p.roots = make([]string, 0, len(roots))
	for _, root := range roots {
		p.roots = append(p.roots, filepath.Clean(root))
	}

	// Keep only baseline entries this poller is responsible for; stale
	// outsiders would read as deletions on the first diff.
	maps.DeleteFunc(p.known, func(path string, _ domain.FileMeta) bool {
		return !p.covers(path)
	})

	if len(p.known) == 0 {
		p.seedFromScan(ctx)
	}

	go p.loop(ctx)

	return nil, nil
}

// Stop ends the rescan loop. Safe to call more than once; the event
// channel closes once the loop drains.
func (p *Poller) Stop() error {
	p.stopOnce.Do(func() { close(p.stop) })
	return nil
}

// Events returns an iterator of raw events. It terminates when the poller
// is stopped or its context is canceled.
func (p *Poller) Events() iter.Seq[ports.RawEvent] {
	return func(yield func(ports.RawEvent) bool) {
		for event := range p.events {
			if !yield(event) {
				return
			}
		}
	}
}

// seedFromScan builds the baseline without emitting events.
func (p *Poller) seedFromScan(ctx context.Context) {
	for _, root := range p.roots {
		entries, err := p.scanner.Scan(ctx, root, p.filter)
		if err != nil {
			// Transient: the baseline stays empty and the next rescan
			// reports the subtree as new.
			p.logger.Warn("baseline scan failed for " + root + ": " + err.Error())
			continue
		}
		p.Seed(entries)
	}
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.events)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			if !p.rescan(ctx) {
				return
			}
		}
	}
}

// rescan walks every root, diffs the merged listing against the previous
// one and emits the difference. Roots whose scan fails are carried over
// unchanged so a transient failure does not read as a mass deletion.
// Returns false when shutdown interrupted an emit.
func (p *Poller) rescan(ctx context.Context) bool {
	ctx, span := p.tracer.Start(ctx, "rescan")
	defer span.End()

	emitted := 0
	send := func(event ports.RawEvent) bool {
		if !p.emit(ctx, event) {
			return false
		}
		emitted++
		return true
	}

	current := make(map[string]domain.FileMeta, len(p.known))
	failed := make(map[string]struct{})

	for _, root := range p.roots {
		entries, err := p.scanner.Scan(ctx, root, p.filter)
		if err != nil {
			failed[root] = struct{}{}
			p.logger.Warn("rescan failed for " + root + ": " + err.Error())
			continue
		}
		for _, entry := range entries {
			current[filepath.Clean(entry.Path)] = entry.Meta
		}
	}

	now := time.Now()

	// Removals go out before additions so a rename observed as one
	// disappearance plus one appearance arrives in matchable order.
	for _, path := range slices.Sorted(maps.Keys(p.known)) {
		if _, ok := current[path]; ok {
			continue
		}
		if p.underFailedRoot(path, failed) {
			current[path] = p.known[path]
			continue
		}
		if !send(ports.RawEvent{Path: path, Op: ports.OpRemove, Time: now}) {
			return false
		}
	}

	for _, path := range slices.Sorted(maps.Keys(current)) {
		meta := current[path]
		old, existed := p.known[path]

		switch {
		case !existed:
			if !send(ports.RawEvent{Path: path, Op: ports.OpAdd, Time: now}) {
				return false
			}
		case old.Kind != meta.Kind:
			// The path was replaced by a different kind of entry.
			if !send(ports.RawEvent{Path: path, Op: ports.OpRemove, Time: now}) {
				return false
			}
			if !send(ports.RawEvent{Path: path, Op: ports.OpAdd, Time: now}) {
				return false
			}
		case meta.Kind == domain.KindFile && !old.SameContent(meta):
			if !send(ports.RawEvent{Path: path, Op: ports.OpWrite, Time: now}) {
				return false
			}
		}
	}

	p.known = current
	span.SetAttribute("events", emitted)
	return true
}

func (p *Poller) emit(ctx context.Context, event ports.RawEvent) bool {
	select {
	case p.events <- event:
		return true
	case <-ctx.Done():
		return false
	case <-p.stop:
		return false
	}
}

func (p *Poller) covers(path string) bool {
	return p.rootOf(path) != ""
}

func (p *Poller) underFailedRoot(path string, failed map[string]struct{}) bool {
	root := p.rootOf(path)
	if root == "" {
		return false
	}
	_, ok := failed[root]
	return ok
}

func (p *Poller) rootOf(path string) string {
	for _, root := range p.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}
