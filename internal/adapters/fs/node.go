package fs

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/foglomon/FSAR/internal/core/ports"
)

const (
	HasherNodeID  graft.ID = "adapter.fs.hasher"
	ScannerNodeID graft.ID = "adapter.fs.scanner"
)

func init() {
	// Hasher Node (concrete implementation needed by Scanner)
	graft.Register(graft.Node[*Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Hasher, error) {
			return NewHasher(), nil
		},
	})

	// Scanner Node
	graft.Register(graft.Node[ports.Scanner]{
		ID:        ScannerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{HasherNodeID},
		Run: func(ctx context.Context) (ports.Scanner, error) {
			hasher, err := graft.Dep[*Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewScanner(hasher), nil
		},
	})
}
