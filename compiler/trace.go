package compiler

import (
	"time"

	"go.uber.org/zap"
)

// Phase names the stages compilation and execution move through, emitted
// to a Tracer so callers can observe where time goes without threading a
// logger through every function signature.
type Phase string

const (
	PhaseAnnotate  Phase = "annotate"
	PhaseOptimise  Phase = "optimise"
	PhaseBuild     Phase = "build"
	PhaseExecute   Phase = "execute"
	PhaseWrite     Phase = "write"
)

// Event is one completed phase, reported to a Handler after the fact,
// carrying compilation phase timings rather than query-lifecycle metrics.
type Event struct {
	Phase    Phase
	Duration time.Duration
	Err      error
}

// Handler receives completed Events. Multiple handlers can be attached to
// one Tracer (e.g. a zap sink and a test-only collector).
type Handler func(Event)

// Tracer times phases and reports them to its attached handlers.
type Tracer struct {
	handlers []Handler
}

// NewTracer creates a Tracer with no handlers attached (tracking has zero
// cost beyond one time.Now() call per phase).
func NewTracer() *Tracer { return &Tracer{} }

// Attach adds a handler that will receive every future Event.
func (t *Tracer) Attach(h Handler) { t.handlers = append(t.handlers, h) }

// Track runs fn, timing it, and reports the resulting Event to every
// attached handler before returning fn's error.
func (t *Tracer) Track(phase Phase, fn func() error) error {
	start := time.Now()
	err := fn()
	event := Event{Phase: phase, Duration: time.Since(start), Err: err}
	for _, h := range t.handlers {
		h(event)
	}
	return err
}

// ZapHandler returns a Handler that logs each Event through a zap.Logger at
// Debug level (Info if the phase failed). NewTracer does not attach it;
// callers attach it explicitly with Attach.
func ZapHandler(log *zap.Logger) Handler {
	return func(e Event) {
		fields := []zap.Field{
			zap.String("phase", string(e.Phase)),
			zap.Duration("duration", e.Duration),
		}
		if e.Err != nil {
			fields = append(fields, zap.Error(e.Err))
			log.Info("compiler phase failed", fields...)
			return
		}
		log.Debug("compiler phase completed", fields...)
	}
}
