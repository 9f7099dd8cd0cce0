package treeview_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foglomon/FSAR/internal/adapters/treeview"
	"github.com/foglomon/FSAR/internal/core/domain"
)

var frameTime = time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

func TestRender_ActivityTree(t *testing.T) {
	idx := domain.NewPathIndex()
	idx.Initialize("/proj", []domain.ScanEntry{
		{Path: "/proj/src", Meta: domain.FileMeta{Kind: domain.KindDir}},
		{Path: "/proj/src/app.go", Meta: domain.FileMeta{Kind: domain.KindFile, Size: 10}},
		{Path: "/proj/src/util.go", Meta: domain.FileMeta{Kind: domain.KindFile, Size: 20}},
		{Path: "/proj/README.md", Meta: domain.FileMeta{Kind: domain.KindFile, Size: 30}},
	})
	idx.ApplyDelete("/proj/b.txt")

	ledger := domain.NewActivityLedger(domain.DefaultThresholds())
	ledger.Record(domain.KeyFor("/proj/src/app.go"), domain.EventModified, frameTime.Add(-time.Second))
	ledger.Record(domain.KeyFor("/proj/README.md"), domain.EventCreated, frameTime.Add(-5*time.Second))
	ledger.Record(domain.KeyFor("/proj/b.txt"), domain.EventDeleted, frameTime.Add(-10*time.Second))

	snap := domain.BuildSnapshot(idx, ledger, frameTime, domain.SnapshotStats{Created: 1, Modified: 1, Deleted: 1})

	g := goldie.New(t)
	g.Assert(t, "tree_activity", []byte(treeview.Render(snap)))
}

func TestRender_EmptyTree(t *testing.T) {
	idx := domain.NewPathIndex()
	idx.Initialize("/proj", nil)
	ledger := domain.NewActivityLedger(domain.DefaultThresholds())

	snap := domain.BuildSnapshot(idx, ledger, frameTime, domain.SnapshotStats{})

	g := goldie.New(t)
	g.Assert(t, "tree_empty", []byte(treeview.Render(snap)))
}

func TestRender_RootMissing(t *testing.T) {
	idx := domain.NewPathIndex()
	idx.Initialize("/proj", []domain.ScanEntry{
		{Path: "/proj/a.go", Meta: domain.FileMeta{Kind: domain.KindFile, Size: 10}},
	})
	idx.ApplyDelete("/proj")
	ledger := domain.NewActivityLedger(domain.DefaultThresholds())

	snap := domain.BuildSnapshot(idx, ledger, frameTime, domain.SnapshotStats{Deleted: 1})
	require.True(t, snap.RootMissing)

	g := goldie.New(t)
	g.Assert(t, "tree_root_missing", []byte(treeview.Render(snap)))
}

func TestRenderer_ReprintsOnlyOnChange(t *testing.T) {
	idx := domain.NewPathIndex()
	idx.Initialize("/proj", nil)
	ledger := domain.NewActivityLedger(domain.DefaultThresholds())

	buf := &bytes.Buffer{}
	r := treeview.NewRenderer(buf)
	require.NoError(t, r.Start(t.Context()))

	r.OnSnapshot(domain.BuildSnapshot(idx, ledger, frameTime, domain.SnapshotStats{}))
	printed := buf.Len()
	require.Positive(t, printed)

	// Same tree one tick later: identical frame, nothing new printed.
	r.OnSnapshot(domain.BuildSnapshot(idx, ledger, frameTime.Add(250*time.Millisecond), domain.SnapshotStats{}))
	assert.Equal(t, printed, buf.Len())

	idx.ApplyCreate("/proj/a.go", domain.FileMeta{Kind: domain.KindFile})
	r.OnSnapshot(domain.BuildSnapshot(idx, ledger, frameTime.Add(500*time.Millisecond), domain.SnapshotStats{}))
	assert.Greater(t, buf.Len(), printed)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())
}
