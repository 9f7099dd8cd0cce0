package domain

import "time"

// EventKind identifies a semantic filesystem event, after raw notifications
// have been reconciled and debounced.
type EventKind uint8

const (
	// EventCreated means a path started existing.
	EventCreated EventKind = iota
	// EventModified means the content or metadata of an existing path changed.
	EventModified
	// EventDeleted means a path stopped existing.
	EventDeleted
	// EventRenamed means a path moved; Event.OldPath carries the previous name.
	EventRenamed
)

// String returns the lowercase name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// NodeKind identifies what a path points at.
type NodeKind uint8

const (
	// KindFile is a regular file (or anything that is not a directory).
	KindFile NodeKind = iota
	// KindDir is a directory.
	KindDir
)

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// FileMeta carries the stat-derived fields tracked per node. Sum is an
// xxhash fingerprint of the file content, 0 when the file was not hashed
// (directories, large files, unreadable files).
type FileMeta struct {
	Kind    NodeKind
	Size    int64
	ModTime time.Time
	Sum     uint64
}

// SameContent reports whether two metadata values plausibly describe the
// same file content: equal size and mtime, corroborated by the content
// fingerprint when both sides carry one. Used by the rename heuristic; a
// coincidental match is possible and accepted.
func (m FileMeta) SameContent(other FileMeta) bool {
	if m.Kind != other.Kind || m.Size != other.Size || !m.ModTime.Equal(other.ModTime) {
		return false
	}
	if m.Sum != 0 && other.Sum != 0 {
		return m.Sum == other.Sum
	}
	return true
}

// Event is a settled semantic event for a single path. Meta is populated
// for created/modified/renamed events and zero for deleted ones.
type Event struct {
	Path    string
	OldPath string // renames only
	Kind    EventKind
	Meta    FileMeta
	Time    time.Time
}

// ScanEntry is one filesystem entry observed during a recursive scan.
type ScanEntry struct {
	Path string
	Meta FileMeta
}
