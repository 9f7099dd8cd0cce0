package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/foglomon/FSAR/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that forwards finished spans to the logger
// as debug lines. It is the whole export pipeline when tracing is on:
// fsar has no collector, spans exist for the operator's eyes.
type Bridge struct {
	logger ports.Logger
}

// NewBridge creates a Bridge writing to logger.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing; only finished spans are reported.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs one line per finished span.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	duration := s.EndTime().Sub(s.StartTime())
	line := fmt.Sprintf("span %s duration=%s", s.Name(), duration)

	if s.Status().Code == codes.Error {
		line += " status=error"
		if s.Status().Description != "" {
			line += " reason=" + s.Status().Description
		}
	}

	for _, attr := range s.Attributes() {
		line += fmt.Sprintf(" %s=%s", attr.Key, attr.Value.Emit())
	}

	b.logger.Debug(line)
}

// Shutdown implements sdktrace.SpanProcessor.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush implements sdktrace.SpanProcessor.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}
