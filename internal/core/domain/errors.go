package domain

import "go.trai.ch/zerr"

var (
	// ErrScanFailed is returned when the watch root cannot be scanned at startup.
	ErrScanFailed = zerr.New("failed to scan watch root")

	// ErrRootNotDirectory is returned when the watch root exists but is not a directory.
	ErrRootNotDirectory = zerr.New("watch root is not a directory")

	// ErrWatchSetup is returned when watch registration fails for a subtree.
	ErrWatchSetup = zerr.New("failed to register filesystem watch")

	// ErrWatchStopped is returned when an event source is used after Stop.
	ErrWatchStopped = zerr.New("event source already stopped")

	// ErrTransientIO is returned when a path becomes unreadable mid-scan.
	ErrTransientIO = zerr.New("path became unreadable")

	// ErrQueueOverflow is returned when the bounded event queue saturates.
	ErrQueueOverflow = zerr.New("event queue overflow")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a configuration value is out of range or malformed.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrInvalidIgnorePattern is returned when an ignore glob does not compile.
	ErrInvalidIgnorePattern = zerr.New("invalid ignore pattern")

	// ErrUnknownOutputMode is returned when an output mode value is not recognized.
	ErrUnknownOutputMode = zerr.New("unknown output mode, expected 'auto', 'tree' or 'linear'")

	// ErrUnknownBackend is returned when a watch backend value is not recognized.
	ErrUnknownBackend = zerr.New("unknown watch backend, expected 'auto', 'fsnotify' or 'poll'")

	// ErrUnknownOverflowPolicy is returned when an overflow policy value is not recognized.
	ErrUnknownOverflowPolicy = zerr.New("unknown overflow policy, expected 'coalesce' or 'block'")

	// ErrWatchFailed is returned when the watch pipeline terminates abnormally.
	ErrWatchFailed = zerr.New("watch failed")
)
