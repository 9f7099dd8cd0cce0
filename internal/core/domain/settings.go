package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// WatchBackend selects the raw event source implementation.
type WatchBackend uint8

const (
	// BackendAuto probes native watching at startup and falls back to polling.
	BackendAuto WatchBackend = iota
	// BackendFSNotify forces the native OS notification backend.
	BackendFSNotify
	// BackendPoll forces the periodic rescan backend.
	BackendPoll
)

// String returns the configuration name of the backend.
func (b WatchBackend) String() string {
	switch b {
	case BackendFSNotify:
		return "fsnotify"
	case BackendPoll:
		return "poll"
	default:
		return "auto"
	}
}

// ParseWatchBackend parses a configuration value into a backend.
func ParseWatchBackend(s string) (WatchBackend, error) {
	switch s {
	case "", "auto":
		return BackendAuto, nil
	case "fsnotify":
		return BackendFSNotify, nil
	case "poll":
		return BackendPoll, nil
	default:
		return BackendAuto, zerr.With(ErrUnknownBackend, "backend", s)
	}
}

// OverflowPolicy decides what happens when the bounded event queue is full.
type OverflowPolicy uint8

const (
	// OverflowCoalesce drops the oldest pending entry to admit the new one.
	OverflowCoalesce OverflowPolicy = iota
	// OverflowBlock makes the producer wait for the consumer to drain.
	OverflowBlock
)

// String returns the configuration name of the policy.
func (p OverflowPolicy) String() string {
	if p == OverflowBlock {
		return "block"
	}
	return "coalesce"
}

// ParseOverflowPolicy parses a configuration value into a policy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "coalesce":
		return OverflowCoalesce, nil
	case "block":
		return OverflowBlock, nil
	default:
		return OverflowCoalesce, zerr.With(ErrUnknownOverflowPolicy, "policy", s)
	}
}

// ConfigFileName is the per-project configuration file, discovered by
// walking up from the watch root.
const ConfigFileName = ".fsar.yaml"

// Default values applied when the config file and flags leave a setting
// unset.
const (
	DefaultMaxDepth       = 10
	DefaultPollInterval   = 2 * time.Second
	DefaultDebounceWindow = 300 * time.Millisecond
	DefaultRenderTick     = 250 * time.Millisecond
	DefaultQueueSize      = 1024
	DefaultStatsWindow    = 30 * time.Second
)

// Settings is the validated runtime configuration for a watch session.
type Settings struct {
	// Root is the absolute watch root.
	Root string
	// IncludeHidden re-includes dot-prefixed entries, which are skipped by
	// default.
	IncludeHidden bool
	// MaxDepth bounds the tracked tree depth below the root; 0 means
	// unlimited.
	MaxDepth int
	// Ignore holds glob patterns excluded from scanning and watching.
	Ignore []string
	// Backend selects the event source.
	Backend WatchBackend
	// PollInterval is the rescan cadence of the polling backend.
	PollInterval time.Duration
	// DebounceWindow is the per-path quiet period before an event settles.
	DebounceWindow time.Duration
	// QueueSize caps the pending raw events between source and consumer.
	QueueSize int
	// Overflow is the backpressure policy for a saturated queue.
	Overflow OverflowPolicy
	// RenderTick is the snapshot cadence.
	RenderTick time.Duration
	// OutputMode is the requested renderer ("auto", "tree" or "linear").
	OutputMode string
	// Thresholds is the decay policy for activity classification.
	Thresholds Thresholds
	// Trace enables span export to the logger.
	Trace bool
}

// DefaultSettings returns the stock configuration for root.
func DefaultSettings(root string) Settings {
	return Settings{
		Root:           root,
		MaxDepth:       DefaultMaxDepth,
		Backend:        BackendAuto,
		PollInterval:   DefaultPollInterval,
		DebounceWindow: DefaultDebounceWindow,
		QueueSize:      DefaultQueueSize,
		Overflow:       OverflowCoalesce,
		RenderTick:     DefaultRenderTick,
		OutputMode:     "auto",
		Thresholds:     DefaultThresholds(),
	}
}

// Validate checks every setting, decorating ErrInvalidConfig with the
// offending field.
func (s *Settings) Validate() error {
	if s.Root == "" {
		return zerr.With(ErrInvalidConfig, "field", "root")
	}
	if s.MaxDepth < 0 {
		return zerr.With(ErrInvalidConfig, "field", "max_depth")
	}
	if s.PollInterval <= 0 {
		return zerr.With(ErrInvalidConfig, "field", "poll_interval")
	}
	if s.DebounceWindow <= 0 {
		return zerr.With(ErrInvalidConfig, "field", "debounce_window")
	}
	if s.QueueSize <= 0 {
		return zerr.With(ErrInvalidConfig, "field", "queue_size")
	}
	if s.RenderTick <= 0 {
		return zerr.With(ErrInvalidConfig, "field", "render_tick")
	}
	switch s.OutputMode {
	case "auto", "tree", "linear":
	default:
		return zerr.With(ErrUnknownOutputMode, "mode", s.OutputMode)
	}
	if err := s.Thresholds.Validate(); err != nil {
		return zerr.Wrap(err, "decay thresholds")
	}
	return nil
}
