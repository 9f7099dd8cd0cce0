package ports

import (
	"context"

	"github.com/foglomon/FSAR/internal/core/domain"
)

// Renderer is the abstraction for output rendering. The tracker hands it
// immutable snapshots and settled events; everything visual (layout,
// colors, glyphs) is the renderer's business, the core only supplies
// buckets and flags.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle. Renderers
	// that run background goroutines launch them here.
	Start(ctx context.Context) error

	// Stop signals the renderer to flush buffered output and shut down.
	Stop() error

	// Wait blocks until the renderer has fully terminated. Synchronous
	// renderers return immediately.
	Wait() error

	// OnSnapshot delivers the latest tree snapshot. The snapshot is
	// immutable and safe to retain.
	OnSnapshot(snap *domain.TreeSnapshot)

	// OnEvent delivers each settled semantic event in application order.
	OnEvent(ev domain.Event)
}
