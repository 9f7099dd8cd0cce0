// Package config provides the configuration loader for fsar.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file. The file is
// discovered by walking up from the watch root; a missing file is not an
// error, the defaults apply.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load resolves the settings for a session starting at root. Values from
// the config file layer over the defaults; the caller applies any flag
// overrides afterwards and validates the result.
func (l *Loader) Load(root string) (*domain.Settings, error) {
	settings := domain.DefaultSettings(root)

	configPath, found := l.findConfiguration(root)
	if !found {
		return &settings, nil
	}

	var cfg Config
	if err := readAndUnmarshalYAML(configPath, &cfg); err != nil {
		return nil, zerr.With(err, "config", configPath)
	}

	if err := applyConfig(&settings, &cfg, configPath); err != nil {
		return nil, zerr.With(err, "config", configPath)
	}

	l.Logger.Debug("loaded configuration from " + configPath)
	return &settings, nil
}

// findConfiguration walks from start up to the filesystem root looking
// for the config file.
func (l *Loader) findConfiguration(start string) (string, bool) {
	currentDir := start

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", false
}

// applyConfig layers the file values over settings.
func applyConfig(settings *domain.Settings, cfg *Config, configPath string) error {
	if cfg.Root != "" {
		settings.Root = resolveRoot(configPath, cfg.Root)
	}
	if cfg.IncludeHidden != nil {
		settings.IncludeHidden = *cfg.IncludeHidden
	}
	if cfg.MaxDepth != nil {
		settings.MaxDepth = *cfg.MaxDepth
	}
	if len(cfg.Ignore) > 0 {
		settings.Ignore = cfg.Ignore
	}

	if cfg.Backend != "" {
		backend, err := domain.ParseWatchBackend(cfg.Backend)
		if err != nil {
			return err
		}
		settings.Backend = backend
	}
	if cfg.Overflow != "" {
		policy, err := domain.ParseOverflowPolicy(cfg.Overflow)
		if err != nil {
			return err
		}
		settings.Overflow = policy
	}
	if cfg.QueueSize != nil {
		settings.QueueSize = *cfg.QueueSize
	}
	if cfg.Output != "" {
		settings.OutputMode = cfg.Output
	}

	durations := []durationField{
		{"poll_interval", cfg.PollInterval, &settings.PollInterval},
		{"debounce_window", cfg.DebounceWindow, &settings.DebounceWindow},
		{"render_tick", cfg.RenderTick, &settings.RenderTick},
	}
	if cfg.Decay != nil {
		durations = append(durations,
			durationField{"decay.created_bright", cfg.Decay.CreatedBright, &settings.Thresholds.CreatedBright},
			durationField{"decay.created_fade", cfg.Decay.CreatedFade, &settings.Thresholds.CreatedFade},
			durationField{"decay.modified_bright", cfg.Decay.ModifiedBright, &settings.Thresholds.ModifiedBright},
			durationField{"decay.modified_fade", cfg.Decay.ModifiedFade, &settings.Thresholds.ModifiedFade},
			durationField{"decay.deleted_hold", cfg.Decay.DeletedHold, &settings.Thresholds.DeletedHold},
		)
	}

	for _, d := range durations {
		if err := parseDuration(d.field, d.raw, d.dst); err != nil {
			return err
		}
	}

	return nil
}

// durationField pairs a config value with its settings destination.
type durationField struct {
	field string
	raw   string
	dst   *time.Duration
}

// parseDuration parses raw into dst, leaving dst untouched when raw is
// empty.
func parseDuration(field, raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		e := zerr.With(domain.ErrInvalidConfig, "field", field)
		return zerr.With(e, "value", raw)
	}

	*dst = parsed
	return nil
}

// resolveRoot resolves the configured root against the config file's
// directory.
func resolveRoot(configPath, configuredRoot string) string {
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(configPath), configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by the walk-up
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
