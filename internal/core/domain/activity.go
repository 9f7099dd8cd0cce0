package domain

import (
	"slices"
	"strings"
	"time"
)

// Bucket is a discrete display-state category derived from an event kind
// and its age. Buckets are what renderers consume; mapping a bucket to an
// actual color or glyph is entirely the renderer's business.
type Bucket uint8

const (
	// BucketInactive is a path with no live activity record.
	BucketInactive Bucket = iota
	// BucketBrightNew is a freshly created path.
	BucketBrightNew
	// BucketNew is a recently created path past the bright phase.
	BucketNew
	// BucketBrightEdit is a freshly modified path.
	BucketBrightEdit
	// BucketEdit is a recently modified path past the bright phase.
	BucketEdit
	// BucketTombstone is a deleted path still inside its hold window.
	BucketTombstone
)

// String returns the bucket name used by renderers and logs.
func (b Bucket) String() string {
	switch b {
	case BucketBrightNew:
		return "bright-new"
	case BucketNew:
		return "new"
	case BucketBrightEdit:
		return "bright-edit"
	case BucketEdit:
		return "edit"
	case BucketTombstone:
		return "tombstone"
	default:
		return "inactive"
	}
}

// Thresholds are the decay horizons for activity classification. A created
// record is bright until CreatedBright, visible until CreatedFade, then
// eviction-eligible; modified records follow the same shape. Deleted
// records hold their tombstone for exactly DeletedHold.
type Thresholds struct {
	CreatedBright  time.Duration
	CreatedFade    time.Duration
	ModifiedBright time.Duration
	ModifiedFade   time.Duration
	DeletedHold    time.Duration
}

// DefaultThresholds returns the stock decay policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CreatedBright:  2 * time.Second,
		CreatedFade:    10 * time.Second,
		ModifiedBright: 2 * time.Second,
		ModifiedFade:   30 * time.Second,
		DeletedHold:    30 * time.Second,
	}
}

// Validate checks that every horizon is positive and each bright phase fits
// inside its fade horizon.
func (t Thresholds) Validate() error {
	for _, d := range []time.Duration{t.CreatedBright, t.CreatedFade, t.ModifiedBright, t.ModifiedFade, t.DeletedHold} {
		if d <= 0 {
			return ErrInvalidConfig
		}
	}
	if t.CreatedBright > t.CreatedFade || t.ModifiedBright > t.ModifiedFade {
		return ErrInvalidConfig
	}
	return nil
}

// ActivityRecord tracks the most recent event for one path. Count is the
// number of consecutive events of the current kind.
type ActivityRecord struct {
	Kind  EventKind
	Time  time.Time
	Count int
}

// ClassifyRecord maps a record's age at `now` to a display bucket. It is a
// pure function of its arguments so decay behavior can be tested against a
// fixed clock. Records whose age passed their horizon classify as inactive,
// which also marks them eviction-eligible.
func ClassifyRecord(rec ActivityRecord, th Thresholds, now time.Time) Bucket {
	age := now.Sub(rec.Time)
	switch rec.Kind {
	case EventCreated:
		switch {
		case age < th.CreatedBright:
			return BucketBrightNew
		case age < th.CreatedFade:
			return BucketNew
		}
	case EventModified:
		switch {
		case age < th.ModifiedBright:
			return BucketBrightEdit
		case age < th.ModifiedFade:
			return BucketEdit
		}
	case EventDeleted:
		if age < th.DeletedHold {
			return BucketTombstone
		}
	}
	return BucketInactive
}

// ActivityLedger owns one activity record per path. It is mutated only by
// the tracker's consumer loop and carries no locking of its own.
type ActivityLedger struct {
	thresholds Thresholds
	records    map[PathKey]ActivityRecord
}

// NewActivityLedger creates an empty ledger with the given decay policy.
func NewActivityLedger(th Thresholds) *ActivityLedger {
	return &ActivityLedger{
		thresholds: th,
		records:    make(map[PathKey]ActivityRecord),
	}
}

// Record upserts the record for path. Last writer wins: a later event
// overwrites kind and timestamp entirely, with no blending between kinds.
// Count continues across events of the same kind and restarts on a change.
func (l *ActivityLedger) Record(path PathKey, kind EventKind, t time.Time) {
	rec, ok := l.records[path]
	if ok && rec.Kind == kind {
		rec.Count++
	} else {
		rec.Count = 1
	}
	rec.Kind = kind
	rec.Time = t
	l.records[path] = rec
}

// Drop removes the record for path, if any. Used when a rename supersedes
// the activity recorded under the old name.
func (l *ActivityLedger) Drop(path PathKey) {
	delete(l.records, path)
}

// Get returns the record for path.
func (l *ActivityLedger) Get(path PathKey) (ActivityRecord, bool) {
	rec, ok := l.records[path]
	return rec, ok
}

// Classify returns the bucket for path at `now`. Paths without a record are
// inactive.
func (l *ActivityLedger) Classify(path PathKey, now time.Time) Bucket {
	rec, ok := l.records[path]
	if !ok {
		return BucketInactive
	}
	return ClassifyRecord(rec, l.thresholds, now)
}

// Thresholds returns the ledger's decay policy.
func (l *ActivityLedger) Thresholds() Thresholds {
	return l.thresholds
}

// Len returns the number of live records.
func (l *ActivityLedger) Len() int {
	return len(l.records)
}

// Sweep evicts every record whose age passed its horizon and returns the
// paths whose deleted records expired, sorted, so the caller can prune the
// matching tombstone nodes in the same pass. Eviction is lazy: Sweep runs
// once per snapshot tick, there are no background timers.
func (l *ActivityLedger) Sweep(now time.Time) []PathKey {
	var expired []PathKey
	for path, rec := range l.records {
		if ClassifyRecord(rec, l.thresholds, now) != BucketInactive {
			continue
		}
		delete(l.records, path)
		if rec.Kind == EventDeleted {
			expired = append(expired, path)
		}
	}
	slices.SortFunc(expired, func(a, b PathKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return expired
}
