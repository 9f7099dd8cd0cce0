package tracker_test

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
	"github.com/foglomon/FSAR/internal/engine/tracker"
)

func rawAdd(path string) ports.RawEvent {
	return ports.RawEvent{Path: path, Op: ports.OpAdd, Time: time.Now()}
}

func popPaths(q *tracker.Queue) []string {
	events := q.PopAll()
	paths := make([]string, len(events))
	for i, ev := range events {
		paths[i] = ev.Path
	}
	return paths
}

func TestQueue_PushPopOrder(t *testing.T) {
	q := tracker.NewQueue(8, domain.OverflowCoalesce)

	require.NoError(t, q.Push(rawAdd("/proj/a")))
	require.NoError(t, q.Push(rawAdd("/proj/b")))
	require.NoError(t, q.Push(rawAdd("/proj/c")))
	assert.Equal(t, 3, q.Len())

	assert.Equal(t, []string{"/proj/a", "/proj/b", "/proj/c"}, popPaths(q))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PopAllEmpty(t *testing.T) {
	q := tracker.NewQueue(4, domain.OverflowCoalesce)
	assert.Nil(t, q.PopAll())
}

func TestQueue_RingWrapsAround(t *testing.T) {
	q := tracker.NewQueue(4, domain.OverflowCoalesce)

	require.NoError(t, q.Push(rawAdd("/proj/1")))
	require.NoError(t, q.Push(rawAdd("/proj/2")))
	require.NoError(t, q.Push(rawAdd("/proj/3")))
	assert.Equal(t, []string{"/proj/1", "/proj/2", "/proj/3"}, popPaths(q))

	require.NoError(t, q.Push(rawAdd("/proj/4")))
	require.NoError(t, q.Push(rawAdd("/proj/5")))
	require.NoError(t, q.Push(rawAdd("/proj/6")))
	assert.Equal(t, []string{"/proj/4", "/proj/5", "/proj/6"}, popPaths(q))
}

func TestQueue_CoalesceEvictsOldest(t *testing.T) {
	q := tracker.NewQueue(3, domain.OverflowCoalesce)

	require.NoError(t, q.Push(rawAdd("/proj/1")))
	require.NoError(t, q.Push(rawAdd("/proj/2")))
	require.NoError(t, q.Push(rawAdd("/proj/3")))

	require.ErrorIs(t, q.Push(rawAdd("/proj/4")), domain.ErrQueueOverflow)
	require.ErrorIs(t, q.Push(rawAdd("/proj/5")), domain.ErrQueueOverflow)

	assert.Equal(t, []string{"/proj/3", "/proj/4", "/proj/5"}, popPaths(q))
}

func TestQueue_BlockPolicyWaitsForSpace(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := tracker.NewQueue(1, domain.OverflowBlock)

		require.NoError(t, q.Push(rawAdd("/proj/first")))

		pushed := make(chan error, 1)
		go func() {
			pushed <- q.Push(rawAdd("/proj/second"))
		}()

		synctest.Wait()
		select {
		case <-pushed:
			t.Fatal("push into a full blocking queue must wait")
		default:
		}

		assert.Equal(t, []string{"/proj/first"}, popPaths(q))

		synctest.Wait()
		require.NoError(t, <-pushed)
		assert.Equal(t, []string{"/proj/second"}, popPaths(q))
	})
}

func TestQueue_CloseReleasesBlockedProducer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := tracker.NewQueue(1, domain.OverflowBlock)
		require.NoError(t, q.Push(rawAdd("/proj/first")))

		pushed := make(chan error, 1)
		go func() {
			pushed <- q.Push(rawAdd("/proj/second"))
		}()

		synctest.Wait()
		q.Close()

		require.ErrorIs(t, <-pushed, domain.ErrWatchStopped)
	})
}

func TestQueue_PushAfterCloseRejected(t *testing.T) {
	q := tracker.NewQueue(4, domain.OverflowCoalesce)
	q.Close()
	require.ErrorIs(t, q.Push(rawAdd("/proj/a")), domain.ErrWatchStopped)
}

func TestQueue_CloseIdempotent(t *testing.T) {
	q := tracker.NewQueue(4, domain.OverflowCoalesce)
	q.Close()
	q.Close()
}

func TestQueue_DrainsAfterClose(t *testing.T) {
	q := tracker.NewQueue(4, domain.OverflowCoalesce)
	require.NoError(t, q.Push(rawAdd("/proj/a")))
	require.NoError(t, q.Push(rawAdd("/proj/b")))

	q.Close()

	assert.Equal(t, []string{"/proj/a", "/proj/b"}, popPaths(q))
}

func TestQueue_ReadySignalCoalesces(t *testing.T) {
	q := tracker.NewQueue(8, domain.OverflowCoalesce)

	require.NoError(t, q.Push(rawAdd("/proj/a")))
	require.NoError(t, q.Push(rawAdd("/proj/b")))

	select {
	case <-q.Ready():
	default:
		t.Fatal("expected a ready signal after pushes")
	}

	// One wakeup drains everything that accumulated behind it.
	assert.Len(t, q.PopAll(), 2)

	select {
	case <-q.Ready():
		// A second buffered signal may remain; after draining it the
		// queue must be empty.
		assert.Empty(t, q.PopAll())
	default:
	}
}
