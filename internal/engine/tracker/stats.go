package tracker

import (
	"time"

	"github.com/foglomon/FSAR/internal/core/domain"
)

type statEntry struct {
	kind domain.EventKind
	at   time.Time
}

// eventStats keeps the settled events of the rolling stats window, for the
// per-kind counts carried on snapshots. Consumer-goroutine only.
type eventStats struct {
	window  time.Duration
	entries []statEntry
}

func newEventStats(window time.Duration) *eventStats {
	return &eventStats{window: window}
}

func (s *eventStats) record(kind domain.EventKind, at time.Time) {
	s.entries = append(s.entries, statEntry{kind: kind, at: at})
}

// counts prunes entries that left the window and tallies the rest.
// Renames count as modifications, matching how they are recorded.
func (s *eventStats) counts(now time.Time) domain.SnapshotStats {
	cutoff := now.Add(-s.window)
	kept := s.entries[:0]
	var stats domain.SnapshotStats
	for _, e := range s.entries {
		if e.at.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
		switch e.kind {
		case domain.EventCreated:
			stats.Created++
		case domain.EventModified, domain.EventRenamed:
			stats.Modified++
		case domain.EventDeleted:
			stats.Deleted++
		}
	}
	s.entries = kept
	return stats
}
