package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/foglomon/FSAR/internal/adapters/config"
	"github.com/foglomon/FSAR/internal/adapters/fs"
	"github.com/foglomon/FSAR/internal/adapters/logger"
	"github.com/foglomon/FSAR/internal/adapters/telemetry"
	"github.com/foglomon/FSAR/internal/core/ports"
)

// Components holds the wired application components handed to the CLI.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NodeID is the unique identifier for the application components Graft node.
const NodeID graft.ID = "app.components"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.ScannerNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			scanner, err := graft.Dep[ports.Scanner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{
				App:    New(loader, scanner, log, tracer),
				Logger: log,
			}, nil
		},
	})
}
