package ports

import "github.com/aretw0/turing/pkg/domain"

// TraceSink records the configurations produced by a run.
// The engine never reads a sink back.
type TraceSink interface {
	// Record receives one configuration per step, including the step-0
	// snapshot and the terminal step. Step 0 is the initial configuration and
	// is never counted in Result.Steps.
	Record(cfg domain.Configuration)

	// NoTransition is called right before the final Record of a run that
	// stopped because no rule matched (state, symbol).
	NoTransition(state string, symbol domain.Symbol)
}

// BoundedSink is a TraceSink with a retention budget. Once Full reports
// true the engine stops rendering configurations for it; the run itself
// continues unaffected.
type BoundedSink interface {
	TraceSink
	Full() bool
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Record(domain.Configuration)        {}
func (NopSink) NoTransition(string, domain.Symbol) {}
