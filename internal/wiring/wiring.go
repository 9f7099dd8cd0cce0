// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/foglomon/FSAR/internal/adapters/config"
	_ "github.com/foglomon/FSAR/internal/adapters/fs"
	_ "github.com/foglomon/FSAR/internal/adapters/logger"
	_ "github.com/foglomon/FSAR/internal/adapters/telemetry"
	// Register app nodes.
	_ "github.com/foglomon/FSAR/internal/app"
)
