// Package app implements the application layer for fsar.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/foglomon/FSAR/internal/adapters/detector"
	"github.com/foglomon/FSAR/internal/adapters/linear"
	"github.com/foglomon/FSAR/internal/adapters/poller"
	"github.com/foglomon/FSAR/internal/adapters/telemetry"
	"github.com/foglomon/FSAR/internal/adapters/treeview"
	"github.com/foglomon/FSAR/internal/adapters/watcher"
	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
	"github.com/foglomon/FSAR/internal/engine/tracker"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	scanner      ports.Scanner
	logger       ports.Logger
	tracer       ports.Tracer
	stdout       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	scanner ports.Scanner,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		scanner:      scanner,
		logger:       log,
		tracer:       tracer,
		stdout:       os.Stdout,
	}
}

// WithOutput redirects renderer output away from stdout.
// This is primarily used for testing.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// logControls is the mutable surface of the logger adapter, asserted at
// runtime because ports.Logger deliberately stays write-only.
type logControls interface {
	SetVerbose(enable bool)
}

// RunOptions carries the watch command's flag overrides. Zero values mean
// "not set on the command line".
type RunOptions struct {
	OutputMode    string
	Backend       string
	Debounce      time.Duration
	RenderTick    time.Duration
	MaxDepth      int // -1 when unset; 0 is a valid value (unlimited)
	IncludeHidden bool
	Trace         bool
	Verbose       bool
}

// Run watches root and renders live activity until ctx is canceled.
//
//nolint:cyclop // orchestration function
func (a *App) Run(ctx context.Context, root string, opts RunOptions) error {
	if opts.Verbose {
		if lc, ok := a.logger.(logControls); ok {
			lc.SetVerbose(true)
		}
	}

	// 1. Settings: config file under the root, flags on top.
	settings, err := a.configLoader.Load(root)
	if err != nil {
		return err
	}
	if err := applyOverrides(settings, opts); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	filter, err := domain.NewFilter(*settings)
	if err != nil {
		return err
	}

	// 2. Renderer for the resolved output mode.
	mode := detector.ResolveMode(detector.DetectEnvironment(), settings.OutputMode)
	var renderer ports.Renderer
	if mode == detector.ModeTree {
		renderer = treeview.NewRenderer(a.stdout)
	} else {
		renderer = linear.NewRenderer(a.stdout)
	}

	// 3. Telemetry: spans surface through the logger when tracing is on.
	if settings.Trace {
		setupOTel(a.logger)
	}

	// 4. Pipeline and initial scan. A scan failure here is fatal.
	track := tracker.NewTracker(*settings, filter, a.scanner, renderer, a.logger, a.tracer)
	entries, err := track.Initialize(ctx)
	if err != nil {
		return err
	}

	// 5. Event sources for the selected backend, already running.
	sources, err := a.startSources(ctx, settings, filter, entries)
	if err != nil {
		return err
	}

	// 6. Renderer and tracker run concurrently; the tracker owns the
	// sources and stops them on exit.
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "tracker panic: %v\n", r)
			}
			_ = renderer.Stop()
		}()
		return track.Run(ctx, sources...)
	})

	return g.Wait()
}

// ScanOptions carries the scan command's flag overrides.
type ScanOptions struct {
	MaxDepth      int // -1 when unset
	IncludeHidden bool
	Verbose       bool
}

// Scan walks root once and prints a single tree frame, without watching.
func (a *App) Scan(ctx context.Context, root string, opts ScanOptions) error {
	if opts.Verbose {
		if lc, ok := a.logger.(logControls); ok {
			lc.SetVerbose(true)
		}
	}

	settings, err := a.configLoader.Load(root)
	if err != nil {
		return err
	}
	if opts.MaxDepth >= 0 {
		settings.MaxDepth = opts.MaxDepth
	}
	if opts.IncludeHidden {
		settings.IncludeHidden = true
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	filter, err := domain.NewFilter(*settings)
	if err != nil {
		return err
	}

	ctx, span := a.tracer.Start(ctx, "scan")
	defer span.End()

	entries, err := a.scanner.Scan(ctx, settings.Root, filter)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttribute("entries", len(entries))

	idx := domain.NewPathIndex()
	idx.Initialize(settings.Root, entries)
	ledger := domain.NewActivityLedger(settings.Thresholds)
	snap := domain.BuildSnapshot(idx, ledger, time.Now(), domain.SnapshotStats{})

	_, err = io.WriteString(a.stdout, treeview.Render(snap))
	return err
}

// applyOverrides layers command-line flags over the configured settings.
func applyOverrides(settings *domain.Settings, opts RunOptions) error {
	if opts.OutputMode != "" {
		settings.OutputMode = opts.OutputMode
	}
	if opts.Backend != "" {
		backend, err := domain.ParseWatchBackend(opts.Backend)
		if err != nil {
			return err
		}
		settings.Backend = backend
	}
	if opts.Debounce > 0 {
		settings.DebounceWindow = opts.Debounce
	}
	if opts.RenderTick > 0 {
		settings.RenderTick = opts.RenderTick
	}
	if opts.MaxDepth >= 0 {
		settings.MaxDepth = opts.MaxDepth
	}
	if opts.IncludeHidden {
		settings.IncludeHidden = true
	}
	if opts.Trace {
		settings.Trace = true
	}
	return nil
}

// startSources builds and starts the event sources for the session. The
// auto backend probes native watching and degrades to polling; a native
// watcher that starts with uncovered subtrees gets a poller for exactly
// those subtrees, both streams feeding the same queue.
func (a *App) startSources(
	ctx context.Context,
	settings *domain.Settings,
	filter *domain.Filter,
	seed []domain.ScanEntry,
) ([]ports.EventSource, error) {
	backend := settings.Backend
	if backend == domain.BackendAuto {
		backend = domain.BackendFSNotify
		if !detector.NativeWatchAvailable() {
			a.logger.Warn("native filesystem watching unavailable, polling instead")
			backend = domain.BackendPoll
		}
	}

	if backend == domain.BackendPoll {
		fallback, err := a.startPoller(ctx, settings, filter, seed, settings.Root)
		if err != nil {
			return nil, err
		}
		return []ports.EventSource{fallback}, nil
	}

	w, err := watcher.NewWatcher(filter, a.logger)
	if err != nil {
		return nil, err
	}
	uncovered, err := w.Start(ctx, settings.Root)
	if err != nil {
		_ = w.Stop()
		return nil, err
	}

	sources := []ports.EventSource{w}
	if len(uncovered) > 0 {
		a.logger.Warn(domain.ErrWatchSetup.Error() + ", polling instead: " + strings.Join(uncovered, ", "))
		fallback, err := a.startPoller(ctx, settings, filter, seed, uncovered...)
		if err != nil {
			_ = w.Stop()
			return nil, err
		}
		sources = append(sources, fallback)
	}
	return sources, nil
}

// startPoller creates a rescan source for roots, seeded with the startup
// listing so the first diff stays quiet.
func (a *App) startPoller(
	ctx context.Context,
	settings *domain.Settings,
	filter *domain.Filter,
	seed []domain.ScanEntry,
	roots ...string,
) (*poller.Poller, error) {
	p := poller.NewPoller(a.scanner, filter, settings.PollInterval, a.logger, a.tracer)
	p.Seed(seed)
	if _, err := p.Start(ctx, roots...); err != nil {
		return nil, err
	}
	return p, nil
}

// setupOTel installs a tracer provider that reports finished spans to the
// logger at debug level.
func setupOTel(log ports.Logger) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(telemetry.NewBridge(log)),
	)
	otel.SetTracerProvider(tp)
}
