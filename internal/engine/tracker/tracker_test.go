package tracker_test

import (
	"context"
	"iter"
	"slices"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/foglomon/FSAR/internal/adapters/telemetry"
	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
	"github.com/foglomon/FSAR/internal/core/ports/mocks"
	"github.com/foglomon/FSAR/internal/engine/tracker"
)

// fakeSource is a scripted event source feeding the tracker from tests.
type fakeSource struct {
	ch       chan ports.RawEvent
	stopOnce sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan ports.RawEvent, 64)}
}

func (s *fakeSource) Start(context.Context, ...string) ([]string, error) { return nil, nil }

func (s *fakeSource) Events() iter.Seq[ports.RawEvent] {
	return func(yield func(ports.RawEvent) bool) {
		for ev := range s.ch {
			if !yield(ev) {
				return
			}
		}
	}
}

func (s *fakeSource) Stop() error {
	s.stopOnce.Do(func() { close(s.ch) })
	return nil
}

func (s *fakeSource) emit(path string, op ports.RawOp) {
	s.ch <- ports.RawEvent{Path: path, Op: op, Time: time.Now()}
}

// recorder captures everything the tracker hands the renderer.
type recorder struct {
	mu        sync.Mutex
	snapshots []*domain.TreeSnapshot
	events    []domain.Event
}

func (r *recorder) Start(context.Context) error { return nil }

func (r *recorder) Stop() error { return nil }

func (r *recorder) Wait() error { return nil }

func (r *recorder) OnSnapshot(snap *domain.TreeSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
}

func (r *recorder) OnEvent(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) last(t *testing.T) *domain.TreeSnapshot {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.snapshots)
	return r.snapshots[len(r.snapshots)-1]
}

func (r *recorder) seen() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// findNode walks a snapshot tree for the node at path.
func findNode(node *domain.SnapshotNode, path string) *domain.SnapshotNode {
	if node == nil {
		return nil
	}
	if node.Path == path {
		return node
	}
	for _, c := range node.Children {
		if found := findNode(c, path); found != nil {
			return found
		}
	}
	return nil
}

type trackerFixture struct {
	tr       *tracker.Tracker
	scanner  *mocks.MockScanner
	source   *fakeSource
	renderer *recorder
}

func newTrackerFixture(t *testing.T, listing []domain.ScanEntry) *trackerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	scanner := mocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "/proj", gomock.Any()).Return(listing, nil)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	settings := domain.DefaultSettings("/proj")
	filter, err := domain.NewFilter(settings)
	require.NoError(t, err)

	renderer := &recorder{}
	return &trackerFixture{
		tr:       tracker.NewTracker(settings, filter, scanner, renderer, logger, telemetry.NewNoOpTracer()),
		scanner:  scanner,
		source:   newFakeSource(),
		renderer: renderer,
	}
}

// start seeds the index from the scripted listing and runs the pipeline
// against the fake source.
func (f *trackerFixture) start(ctx context.Context, t *testing.T) <-chan error {
	t.Helper()
	_, err := f.tr.Initialize(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- f.tr.Run(ctx, f.source) }()
	return done
}

func TestTracker_InitializeSeedsIndex(t *testing.T) {
	now := time.Now()
	listing := []domain.ScanEntry{
		{Path: "/proj/src", Meta: metaDir(now)},
		{Path: "/proj/src/a.go", Meta: metaFile(10, now)},
	}
	f := newTrackerFixture(t, listing)

	entries, err := f.tr.Initialize(t.Context())
	require.NoError(t, err)
	assert.Equal(t, listing, entries)
}

func TestTracker_InitializeScanFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	scanner := mocks.NewMockScanner(ctrl)
	scanner.EXPECT().Scan(gomock.Any(), "/proj", gomock.Any()).Return(nil, domain.ErrScanFailed)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	settings := domain.DefaultSettings("/proj")
	filter, err := domain.NewFilter(settings)
	require.NoError(t, err)

	tr := tracker.NewTracker(settings, filter, scanner, &recorder{}, logger, telemetry.NewNoOpTracer())
	_, err = tr.Initialize(t.Context())
	require.ErrorIs(t, err, domain.ErrScanFailed)
}

func TestTracker_CreateDecayTimeline(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newTrackerFixture(t, nil)
		ctx, cancel := context.WithCancel(t.Context())
		done := f.start(ctx, t)

		f.scanner.EXPECT().StatEntry("/proj/a.go").Return(metaFile(12, time.Now()), true)
		f.source.emit("/proj/a.go", ports.OpAdd)

		time.Sleep(1100 * time.Millisecond)
		synctest.Wait()
		node := findNode(f.renderer.last(t).Root, "/proj/a.go")
		require.NotNil(t, node)
		assert.Equal(t, domain.BucketBrightNew, node.Bucket)
		assert.True(t, node.IsNew)

		time.Sleep(5 * time.Second)
		synctest.Wait()
		node = findNode(f.renderer.last(t).Root, "/proj/a.go")
		require.NotNil(t, node)
		assert.Equal(t, domain.BucketNew, node.Bucket)
		assert.True(t, node.IsNew)

		time.Sleep(5 * time.Second)
		synctest.Wait()
		node = findNode(f.renderer.last(t).Root, "/proj/a.go")
		require.NotNil(t, node, "a faded path stays in the tree, just inactive")
		assert.Equal(t, domain.BucketInactive, node.Bucket)
		assert.False(t, node.IsNew)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestTracker_DeleteTombstoneLifecycle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newTrackerFixture(t, []domain.ScanEntry{
			{Path: "/proj/a.go", Meta: metaFile(10, time.Now())},
		})
		ctx, cancel := context.WithCancel(t.Context())
		done := f.start(ctx, t)

		f.source.emit("/proj/a.go", ports.OpRemove)

		time.Sleep(600 * time.Millisecond)
		synctest.Wait()
		node := findNode(f.renderer.last(t).Root, "/proj/a.go")
		require.NotNil(t, node, "a deleted path keeps a tombstone")
		assert.Equal(t, domain.BucketTombstone, node.Bucket)
		assert.True(t, node.IsDeleted)

		// The hold window runs from the event time, not the settle time.
		time.Sleep(29200 * time.Millisecond)
		synctest.Wait()
		node = findNode(f.renderer.last(t).Root, "/proj/a.go")
		require.NotNil(t, node)
		assert.Equal(t, domain.BucketTombstone, node.Bucket)

		// The first tick at or past the boundary prunes the node.
		time.Sleep(300 * time.Millisecond)
		synctest.Wait()
		assert.Nil(t, findNode(f.renderer.last(t).Root, "/proj/a.go"))

		cancel()
		require.NoError(t, <-done)
	})
}

func TestTracker_RenameMovesWithoutTombstone(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mtime := time.Now().Add(-time.Hour)
		f := newTrackerFixture(t, []domain.ScanEntry{
			{Path: "/proj/a.txt", Meta: metaFile(10, mtime)},
		})
		ctx, cancel := context.WithCancel(t.Context())
		done := f.start(ctx, t)

		f.scanner.EXPECT().StatEntry("/proj/b.txt").Return(metaFile(10, mtime), true)
		f.source.emit("/proj/a.txt", ports.OpRenameAway)
		f.source.emit("/proj/b.txt", ports.OpAdd)

		time.Sleep(600 * time.Millisecond)
		synctest.Wait()

		snap := f.renderer.last(t)
		moved := findNode(snap.Root, "/proj/b.txt")
		require.NotNil(t, moved)
		assert.Equal(t, domain.BucketBrightEdit, moved.Bucket)
		assert.True(t, moved.IsEdited)
		assert.Nil(t, findNode(snap.Root, "/proj/a.txt"), "a true move leaves nothing behind")

		events := f.renderer.seen()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventRenamed, events[0].Kind)
		assert.Equal(t, "/proj/a.txt", events[0].OldPath)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestTracker_ShutdownFlushesPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newTrackerFixture(t, nil)
		ctx, cancel := context.WithCancel(t.Context())
		done := f.start(ctx, t)

		f.scanner.EXPECT().StatEntry("/proj/late.go").Return(metaFile(5, time.Now()), true)
		f.source.emit("/proj/late.go", ports.OpAdd)

		// Cancel while the event is still inside the debounce window.
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		cancel()
		require.NoError(t, <-done)

		events := f.renderer.seen()
		require.Len(t, events, 1, "pending debounce state settles on shutdown")
		assert.Equal(t, domain.EventCreated, events[0].Kind)
		assert.Equal(t, "/proj/late.go", events[0].Path)

		snap := f.renderer.last(t)
		assert.NotNil(t, findNode(snap.Root, "/proj/late.go"), "the final snapshot carries the flushed create")
	})
}

func TestTracker_AllSourcesGoneFails(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newTrackerFixture(t, nil)
		done := f.start(t.Context(), t)

		require.NoError(t, f.source.Stop())
		synctest.Wait()
		require.ErrorIs(t, <-done, domain.ErrWatchFailed)
	})
}

func TestTracker_SnapshotCarriesEventStats(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		now := time.Now()
		f := newTrackerFixture(t, []domain.ScanEntry{
			{Path: "/proj/b.go", Meta: metaFile(10, now.Add(-time.Hour))},
		})
		ctx, cancel := context.WithCancel(t.Context())
		done := f.start(ctx, t)

		f.scanner.EXPECT().StatEntry("/proj/a.go").Return(metaFile(5, now), true)
		f.scanner.EXPECT().StatEntry("/proj/b.go").Return(metaFile(12, now), true)
		f.source.emit("/proj/a.go", ports.OpAdd)
		f.source.emit("/proj/b.go", ports.OpWrite)

		time.Sleep(600 * time.Millisecond)
		synctest.Wait()

		stats := f.renderer.last(t).Stats
		assert.Equal(t, 1, stats.Created)
		assert.Equal(t, 1, stats.Modified)
		assert.Equal(t, 0, stats.Deleted)

		cancel()
		require.NoError(t, <-done)
	})
}
