package ports

import "github.com/foglomon/FSAR/internal/core/domain"

//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks

// ConfigLoader loads the watch settings for a root directory, merging the
// nearest config file (discovered by walking up from the root) over the
// defaults. A missing config file is not an error.
type ConfigLoader interface {
	Load(root string) (*domain.Settings, error)
}
