// Package telemetry provides the per-operation instrumentation hook.
//
// Core operations call Hook.Start at entry, tag the span with their
// parameters and mark it failed on error. A hook never influences control
// flow: every implementation must tolerate any call sequence.
package telemetry

import (
	"context"
	"log/slog"
	"time"
)

// Hook opens a span for one operation.
type Hook interface {
	Start(ctx context.Context, operation string) (context.Context, Span)
}

// Span collects tags and the outcome of one operation.
type Span interface {
	SetAttr(key string, value any)
	Fail(err error)
	End()
}

// Nop is a Hook that records nothing.
var Nop Hook = nopHook{}

type nopHook struct{}

func (nopHook) Start(ctx context.Context, _ string) (context.Context, Span) { return ctx, nopSpan{} }

type nopSpan struct{}

func (nopSpan) SetAttr(string, any) {}
func (nopSpan) Fail(error)          {}
func (nopSpan) End()                {}

// SlogHook logs one record per finished span: debug on success, warn on failure.
type SlogHook struct {
	logger *slog.Logger
}

// NewSlogHook returns a hook writing to logger (slog.Default() if nil).
func NewSlogHook(logger *slog.Logger) *SlogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHook{logger: logger}
}

func (h *SlogHook) Start(ctx context.Context, operation string) (context.Context, Span) {
	return ctx, &slogSpan{
		ctx:       ctx,
		logger:    h.logger,
		operation: operation,
		start:     time.Now(),
	}
}

type slogSpan struct {
	ctx       context.Context
	logger    *slog.Logger
	operation string
	start     time.Time
	attrs     []any
	err       error
}

func (s *slogSpan) SetAttr(key string, value any) {
	s.attrs = append(s.attrs, slog.Any(key, value))
}

func (s *slogSpan) Fail(err error) {
	s.err = err
}

func (s *slogSpan) End() {
	attrs := append([]any{
		"operation", s.operation,
		"duration", time.Since(s.start),
	}, s.attrs...)

	if s.err != nil {
		attrs = append(attrs, "error", s.err)
		s.logger.WarnContext(s.ctx, "Operation failed", attrs...)
		return
	}
	s.logger.DebugContext(s.ctx, "Operation complete", attrs...)
}

// PromHook observes OperationDuration per operation and status.
type PromHook struct{}

func (PromHook) Start(ctx context.Context, operation string) (context.Context, Span) {
	return ctx, &promSpan{operation: operation, start: time.Now()}
}

type promSpan struct {
	operation string
	start     time.Time
	failed    bool
}

func (s *promSpan) SetAttr(string, any) {}

func (s *promSpan) Fail(err error) {
	if err != nil {
		s.failed = true
	}
}

func (s *promSpan) End() {
	status := "ok"
	if s.failed {
		status = "error"
	}
	OperationDuration.WithLabelValues(s.operation, status).Observe(time.Since(s.start).Seconds())
}

// Multi fans out to every hook in order.
func Multi(hooks ...Hook) Hook {
	return multiHook(hooks)
}

type multiHook []Hook

func (m multiHook) Start(ctx context.Context, operation string) (context.Context, Span) {
	spans := make(multiSpan, 0, len(m))
	for _, h := range m {
		var sp Span
		ctx, sp = h.Start(ctx, operation)
		spans = append(spans, sp)
	}
	return ctx, spans
}

type multiSpan []Span

func (m multiSpan) SetAttr(key string, value any) {
	for _, s := range m {
		s.SetAttr(key, value)
	}
}

func (m multiSpan) Fail(err error) {
	for _, s := range m {
		s.Fail(err)
	}
}

func (m multiSpan) End() {
	for _, s := range m {
		s.End()
	}
}
