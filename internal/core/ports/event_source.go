// Package ports defines the interfaces between the core and its adapters.
package ports

import (
	"context"
	"iter"
	"time"
)

//go:generate mockgen -source=event_source.go -destination=mocks/mock_event_source.go -package=mocks

// RawOp identifies a low-level notification from an event source, before
// semantic detection and debouncing.
type RawOp uint8

const (
	// OpAdd means a path appeared.
	OpAdd RawOp = iota
	// OpWrite means a path's content changed.
	OpWrite
	// OpRemove means a path disappeared.
	OpRemove
	// OpRenameAway means a path stopped existing under its current name;
	// the new name, if still inside the tree, arrives as a separate OpAdd.
	OpRenameAway
)

// String returns a short name for the operation.
func (op RawOp) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRenameAway:
		return "rename-away"
	default:
		return "unknown"
	}
}

// RawEvent is one low-level filesystem notification.
type RawEvent struct {
	Path string
	Op   RawOp
	Time time.Time
}

// EventSource is the capability interface over a filesystem notification
// backend. The native implementation wraps OS-level watches; the portable
// fallback rescans periodically and diffs. Which one runs is decided by
// capability detection at startup, never by platform branching in the
// core.
type EventSource interface {
	// Start begins producing events for the given roots. It returns the
	// subtrees the source could not cover (watch registration failed);
	// callers route those to a fallback source. A non-nil error means the
	// source is unusable as a whole.
	Start(ctx context.Context, roots ...string) (uncovered []string, err error)

	// Events returns the raw event stream. The iterator terminates when
	// the source is stopped or its context is canceled.
	Events() iter.Seq[RawEvent]

	// Stop ends watching and releases every OS resource the source holds.
	// Safe to call more than once.
	Stop() error
}
