package telemetry

import (
	"context"
	"sync"
)

// RecordedSpan is a finished span captured by Recorder.
type RecordedSpan struct {
	Operation string
	Attrs     map[string]any
	Err       error
}

// Recorder is a Hook that keeps finished spans in memory. Intended for tests.
type Recorder struct {
	mu    sync.Mutex
	spans []RecordedSpan
}

func (r *Recorder) Start(ctx context.Context, operation string) (context.Context, Span) {
	return ctx, &recordedSpan{rec: r, span: RecordedSpan{Operation: operation, Attrs: map[string]any{}}}
}

// Spans returns a copy of the finished spans in completion order.
func (r *Recorder) Spans() []RecordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedSpan, len(r.spans))
	copy(out, r.spans)
	return out
}

type recordedSpan struct {
	rec  *Recorder
	span RecordedSpan
}

func (s *recordedSpan) SetAttr(key string, value any) { s.span.Attrs[key] = value }
func (s *recordedSpan) Fail(err error)                { s.span.Err = err }

func (s *recordedSpan) End() {
	s.rec.mu.Lock()
	s.rec.spans = append(s.rec.spans, s.span)
	s.rec.mu.Unlock()
}
