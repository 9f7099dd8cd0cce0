// Package detector provides environment detection: output mode selection
// and the watch-backend capability probe.
package detector

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTree forces the full-tree renderer.
	ModeTree
	// ModeLinear forces the line-per-event CI renderer.
	ModeLinear
)

// DetectEnvironment returns the recommended output mode based on the environment.
// It checks if stdout is a TTY and if CI environment variables are set.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModeLinear
	}
	return ModeTree
}

// ResolveMode applies the user override to auto-detection.
// userFlag should be one of: "auto", "tree", "linear", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "tree":
		return ModeTree
	case "linear", "ci":
		return ModeLinear
	case "auto", "":
		return autoDetected
	default:
		return autoDetected
	}
}

// NativeWatchAvailable probes whether the OS notification backend can be
// used, by opening and immediately closing a watch handle. A false result
// sends the session to the polling backend.
func NativeWatchAvailable() bool {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return false
	}
	_ = w.Close()
	return true
}
