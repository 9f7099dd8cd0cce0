package domain

import "time"

// SnapshotNode is one rendered node of a tree snapshot. The display state
// (Bucket and the three flags) is resolved at build time; renderers decide
// how to present it.
type SnapshotNode struct {
	Name       string
	Path       string
	Kind       NodeKind
	Size       int64
	ModTime    time.Time
	Bucket     Bucket
	IsNew      bool
	IsEdited   bool
	IsDeleted  bool
	EventCount int
	Children   []*SnapshotNode
}

// SnapshotStats are rolling counts of settled events inside the stats
// window, carried on every snapshot for status display.
type SnapshotStats struct {
	Created  int
	Modified int
	Deleted  int
}

// TreeSnapshot is an immutable, fully materialized copy of the tracked
// tree at one render tick. Snapshots are never patched; the next tick's
// snapshot supersedes this one.
type TreeSnapshot struct {
	TakenAt     time.Time
	Root        *SnapshotNode
	RootMissing bool
	Stats       SnapshotStats
}

// BuildSnapshot produces the render-ready tree for `now`. It first sweeps
// expired activity records and prunes the tombstones whose deleted records
// just expired, so a tombstone appears in every snapshot before its hold
// boundary and in none after. Then it walks the index in traversal order,
// classifying each node against the ledger. The result shares no memory
// with the live structures.
func BuildSnapshot(idx *PathIndex, ledger *ActivityLedger, now time.Time, stats SnapshotStats) *TreeSnapshot {
	for _, key := range ledger.Sweep(now) {
		idx.Prune(key)
	}
	return &TreeSnapshot{
		TakenAt:     now,
		Root:        buildNode(idx, idx.RootKey(), ledger, now),
		RootMissing: !idx.RootPresent(),
		Stats:       stats,
	}
}

func buildNode(idx *PathIndex, key PathKey, ledger *ActivityLedger, now time.Time) *SnapshotNode {
	node, ok := idx.nodes[key]
	if !ok {
		return nil
	}

	bucket := BucketTombstone
	if node.present {
		bucket = ledger.Classify(key, now)
	}
	count := 0
	if rec, ok := ledger.Get(key); ok {
		count = rec.Count
	}

	snap := &SnapshotNode{
		Name:       node.name,
		Path:       key.String(),
		Kind:       node.meta.Kind,
		Size:       node.meta.Size,
		ModTime:    node.meta.ModTime,
		Bucket:     bucket,
		IsNew:      bucket == BucketBrightNew || bucket == BucketNew,
		IsEdited:   bucket == BucketBrightEdit || bucket == BucketEdit,
		IsDeleted:  !node.present,
		EventCount: count,
	}
	if len(node.children) > 0 {
		snap.Children = make([]*SnapshotNode, 0, len(node.children))
		for _, c := range node.children {
			if child := buildNode(idx, c, ledger, now); child != nil {
				snap.Children = append(snap.Children, child)
			}
		}
	}
	return snap
}
