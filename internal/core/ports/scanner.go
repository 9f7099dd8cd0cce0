package ports

import (
	"context"

	"github.com/foglomon/FSAR/internal/core/domain"
)

//go:generate mockgen -source=scanner.go -destination=mocks/mock_scanner.go -package=mocks

// Scanner lists the tracked entries below a root in one pass. It feeds
// the initial index population and every polling rescan.
type Scanner interface {
	// Scan walks root and returns its tracked entries, excluding the root
	// itself. Unreadable entries inside the tree are skipped; an unusable
	// root fails the whole scan.
	Scan(ctx context.Context, root string, filter *domain.Filter) ([]domain.ScanEntry, error)

	// StatEntry stats one path. The boolean is false when the path is
	// gone or unreadable.
	StatEntry(path string) (domain.FileMeta, bool)
}
