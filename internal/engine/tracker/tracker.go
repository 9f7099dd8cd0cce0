// Package tracker runs the activity-tracking pipeline: raw notifications
// from the event sources pass through a bounded queue into one consumer
// goroutine, which reconciles them into semantic events, debounces them
// per path, applies the settled result to the path index and the activity
// ledger, and publishes an immutable tree snapshot on every render tick.
//
// The index and the ledger are owned by the consumer goroutine alone;
// nothing else reads or writes them while the tracker runs.
package tracker

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

// Tracker wires the pipeline together and owns its mutable state.
type Tracker struct {
	settings domain.Settings
	filter   *domain.Filter
	scanner  ports.Scanner
	renderer ports.Renderer
	logger   ports.Logger
	tracer   ports.Tracer

	index     *domain.PathIndex
	ledger    *domain.ActivityLedger
	queue     *Queue
	debouncer *Debouncer
	detector  *ChangeDetector
	stats     *eventStats
}

// NewTracker assembles a pipeline for the given settings.
func NewTracker(
	settings domain.Settings,
	filter *domain.Filter,
	scanner ports.Scanner,
	renderer ports.Renderer,
	logger ports.Logger,
	tracer ports.Tracer,
) *Tracker {
	t := &Tracker{
		settings:  settings,
		filter:    filter,
		scanner:   scanner,
		renderer:  renderer,
		logger:    logger,
		tracer:    tracer,
		index:     domain.NewPathIndex(),
		ledger:    domain.NewActivityLedger(settings.Thresholds),
		queue:     NewQueue(settings.QueueSize, settings.Overflow),
		debouncer: NewDebouncer(settings.DebounceWindow, settings.QueueSize),
		stats:     newEventStats(domain.DefaultStatsWindow),
	}
	t.detector = NewChangeDetector(scanner, t.index, t.debouncer, settings.DebounceWindow, logger)
	return t
}

// Initialize scans the watch root and seeds the index from the listing.
// The listing is returned so a polling source can diff against the same
// baseline. A scan failure here is fatal to the session.
func (t *Tracker) Initialize(ctx context.Context) ([]domain.ScanEntry, error) {
	ctx, span := t.tracer.Start(ctx, "scan")
	defer span.End()

	entries, err := t.scanner.Scan(ctx, t.settings.Root, t.filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("entries", len(entries))

	t.index.Initialize(t.settings.Root, entries)
	t.logger.Debug("tracking " + strconv.Itoa(len(entries)) + " paths under " + t.settings.Root)
	return entries, nil
}

// Run consumes the sources until ctx is canceled, then shuts the pipeline
// down: sources stopped, queued raw events reconciled, pending debounce
// state applied, one final snapshot published. Initialize must have
// succeeded first.
//
// Run owns the sources from here on; it stops every one of them on exit.
func (t *Tracker) Run(ctx context.Context, sources ...ports.EventSource) error {
	var pumps sync.WaitGroup
	for _, source := range sources {
		pumps.Add(1)
		go func() {
			defer pumps.Done()
			t.pump(source)
		}()
	}

	// When every source dries up while the session is still live, the
	// tracker is watching nothing; surface that instead of idling.
	sourcesGone := make(chan struct{})
	go func() {
		pumps.Wait()
		close(sourcesGone)
	}()

	renderTicker := time.NewTicker(t.settings.RenderTick)
	defer renderTicker.Stop()

	t.publishSnapshot(time.Now())

	for {
		select {
		case <-ctx.Done():
			t.shutdown(sources, &pumps)
			return nil

		case <-sourcesGone:
			t.shutdown(sources, &pumps)
			return domain.ErrWatchFailed

		case <-t.queue.Ready():
			t.reconcileBatch()

		case ev := <-t.debouncer.Settled():
			t.apply(ev)

		case <-renderTicker.C:
			t.publishSnapshot(time.Now())
		}
	}
}

// pump feeds one source's events into the queue.
func (t *Tracker) pump(source ports.EventSource) {
	overflowed := 0
	defer func() {
		if overflowed > 0 {
			t.logger.Debug("event queue coalesced " + strconv.Itoa(overflowed) + " raw events in total")
		}
	}()

	for raw := range source.Events() {
		err := t.queue.Push(raw)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrQueueOverflow):
			if overflowed == 0 {
				t.logger.Warn(domain.ErrQueueOverflow.Error() + ", coalescing oldest entries")
			}
			overflowed++
		default:
			return
		}
	}
}

// reconcileBatch drains the queue through the detector.
func (t *Tracker) reconcileBatch() {
	for _, raw := range t.queue.PopAll() {
		t.detector.Reconcile(raw)
	}
}

// apply commits one settled event to the index and the ledger, and hands
// it to the renderer.
func (t *Tracker) apply(ev domain.Event) {
	if ev.OldPath != "" {
		moved := t.index.ApplyRename(ev.OldPath, ev.Path, ev.Meta)
		oldKey := domain.KeyFor(ev.OldPath)
		if moved {
			t.ledger.Drop(oldKey)
		} else {
			// Degraded to delete+create: the old path needs a deletion
			// record so its tombstone expires like any other.
			t.ledger.Record(oldKey, domain.EventDeleted, ev.Time)
		}
	}

	key := domain.KeyFor(ev.Path)
	switch ev.Kind {
	case domain.EventCreated:
		t.index.ApplyCreate(ev.Path, ev.Meta)
		t.ledger.Record(key, domain.EventCreated, ev.Time)
	case domain.EventModified:
		t.index.ApplyCreate(ev.Path, ev.Meta)
		t.ledger.Record(key, domain.EventModified, ev.Time)
	case domain.EventDeleted:
		t.index.ApplyDelete(ev.Path)
		t.ledger.Record(key, domain.EventDeleted, ev.Time)
	case domain.EventRenamed:
		// The move itself was applied above; the new name shows as edited.
		t.ledger.Record(key, domain.EventModified, ev.Time)
	}

	t.stats.record(ev.Kind, ev.Time)
	t.renderer.OnEvent(ev)
}

// publishSnapshot builds and delivers the render tree for now.
func (t *Tracker) publishSnapshot(now time.Time) {
	snap := domain.BuildSnapshot(t.index, t.ledger, now, t.stats.counts(now))
	t.renderer.OnSnapshot(snap)
}

// shutdown runs the ordered teardown: stop the sources, release and drain
// the queue, settle the debouncer, publish a final snapshot.
func (t *Tracker) shutdown(sources []ports.EventSource, pumps *sync.WaitGroup) {
	for _, source := range sources {
		if err := source.Stop(); err != nil {
			t.logger.Warn("event source stop: " + err.Error())
		}
	}
	t.queue.Close()
	pumps.Wait()

	t.reconcileBatch()
	for _, ev := range t.debouncer.Flush() {
		t.apply(ev)
	}
	for {
		select {
		case ev := <-t.debouncer.Settled():
			t.apply(ev)
			continue
		default:
		}
		break
	}

	t.publishSnapshot(time.Now())
}
