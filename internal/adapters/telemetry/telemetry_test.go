package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/foglomon/FSAR/internal/adapters/telemetry"
)

// captureLogger records debug lines for assertions.
type captureLogger struct {
	mu     sync.Mutex
	debugs []string
}

func (c *captureLogger) Debug(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugs = append(c.debugs, msg)
}

func (c *captureLogger) Info(string) {}
func (c *captureLogger) Warn(string) {}
func (c *captureLogger) Error(error) {}

func (c *captureLogger) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.debugs...)
}

func newBridgedProvider(t *testing.T) (*captureLogger, *sdktrace.TracerProvider) {
	t.Helper()

	log := &captureLogger{}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(telemetry.NewBridge(log)),
	)
	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(context.Background()))
	})
	return log, tp
}

func TestBridge_OnEnd_LogsSpan(t *testing.T) {
	log, tp := newBridgedProvider(t)

	_, span := tp.Tracer("fsar-test").Start(t.Context(), "scan")
	span.SetAttributes(attribute.Int("entries", 42))
	span.End()

	lines := log.lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "span scan duration=")
	assert.Contains(t, lines[0], "entries=42")
	assert.NotContains(t, lines[0], "status=error")
}

func TestBridge_OnEnd_ErrorStatus(t *testing.T) {
	log, tp := newBridgedProvider(t)

	_, span := tp.Tracer("fsar-test").Start(t.Context(), "watch.setup")
	span.RecordError(errors.New("boom"))
	span.SetStatus(codes.Error, "boom")
	span.End()

	lines := log.lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "span watch.setup")
	assert.Contains(t, lines[0], "status=error")
	assert.Contains(t, lines[0], "reason=boom")
}

func TestBridge_ShutdownAndFlush(t *testing.T) {
	bridge := telemetry.NewBridge(&captureLogger{})

	assert.NoError(t, bridge.ForceFlush(t.Context()))
	assert.NoError(t, bridge.Shutdown(t.Context()))
}

func TestOTelTracer_StartWithoutProvider(t *testing.T) {
	// The global default provider is a no-op; spans must still be usable.
	tracer := telemetry.NewOTelTracer("fsar-test")

	ctx, span := tracer.Start(t.Context(), "snapshot")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetAttribute("paths", 7)
	span.SetAttribute("root", "/proj")
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("large", int64(1))
	span.SetAttribute("enabled", true)
	span.SetAttribute("other", struct{ X int }{1})
	span.RecordError(nil)
	span.RecordError(errors.New("late"))
	span.End()
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx, span := tracer.Start(t.Context(), "anything")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	span.End()
}

func TestBridge_AttributeFormatting(t *testing.T) {
	log, tp := newBridgedProvider(t)

	_, span := tp.Tracer("fsar-test").Start(t.Context(), "poll.cycle")
	span.SetAttributes(
		attribute.String("root", "/proj"),
		attribute.Bool("full", true),
	)
	span.End()

	lines := log.lines()
	require.Len(t, lines, 1)
	parts := strings.Fields(lines[0])
	assert.Contains(t, parts, "root=/proj")
	assert.Contains(t, parts, "full=true")
}
