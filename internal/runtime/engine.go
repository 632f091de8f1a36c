package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// cancelCheckInterval is how many steps run between context polls.
const cancelCheckInterval = 1024

// Engine is the core step loop. It holds no per-run state, so one Engine
// may drive any number of concurrent runs.
type Engine struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps bounds every run to n counted steps. Zero means unbounded.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.maxSteps = n
		}
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxSteps returns the configured step bound (0 = unbounded).
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// Run executes prog on tape starting at head until a final state is reached,
// no rule applies, or the optional step bound trips. The tape is mutated in
// place. sink may be nil.
//
// The only error returned is a context error; every terminal condition of the
// machine itself is reported through Result.Outcome.
func (e *Engine) Run(ctx context.Context, prog *domain.Program, tape *Tape, head int, sink ports.TraceSink) (*domain.Result, error) {
	if prog == nil {
		return nil, errors.New("nil program")
	}
	if tape == nil {
		tape = NewTape("")
	}

	start := time.Now()
	state := prog.InitialState()
	step := 0

	bounded, _ := sink.(ports.BoundedSink)
	record := func() {
		if sink == nil || (bounded != nil && bounded.Full()) {
			return
		}
		sink.Record(domain.Configuration{Step: step, State: state, Head: head, Tape: tape.String()})
	}

	e.logger.Debug("run started", "state", state, "head", head, "tape_len", tape.Len())
	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, &domain.EventBase{Timestamp: start, Type: domain.EventRunStart})
	}
	record()

	for {
		if step%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("run interrupted at step %d: %w", step, err)
			}
		}

		if prog.IsFinal(state) {
			step++
			record()
			return e.finish(ctx, start, &domain.Result{
				Steps: step, Outcome: domain.OutcomeHalted, State: state, Head: head, Tape: tape.String(),
			}, tape), nil
		}

		if e.maxSteps > 0 && step >= e.maxSteps {
			return e.finish(ctx, start, &domain.Result{
				Steps: step, Outcome: domain.OutcomeStepLimitExceeded, State: state, Head: head, Tape: tape.String(),
			}, tape), nil
		}

		var read domain.Symbol
		read, head = tape.Read(head)

		action, match := prog.Resolve(state, read)
		if match == domain.MatchNone {
			step++
			if sink != nil {
				sink.NoTransition(state, read)
			}
			record()
			return e.finish(ctx, start, &domain.Result{
				Steps:   step,
				Outcome: domain.OutcomeNoTransition,
				State:   state,
				Head:    head,
				Tape:    tape.String(),
				Stuck:   &domain.Key{State: state, Read: read},
			}, tape), nil
		}

		written := action.Apply(read)
		tape.Write(head, written)
		head += action.Move.Delta()
		from := state
		state = action.NextState

		step++
		record()

		if e.hooks.OnStep != nil {
			e.hooks.OnStep(ctx, &domain.StepEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep},
				Step:      step,
				FromState: from,
				ToState:   state,
				Read:      read,
				Write:     written,
				Move:      action.Move,
				Match:     match,
			})
		}
	}
}

func (e *Engine) finish(ctx context.Context, start time.Time, res *domain.Result, tape *Tape) *domain.Result {
	elapsed := time.Since(start)

	switch res.Outcome {
	case domain.OutcomeHalted:
		e.logger.Debug("run halted", "state", res.State, "steps", res.Steps, "duration", elapsed)
	case domain.OutcomeNoTransition:
		e.logger.Warn("no transition", "state", res.Stuck.State, "symbol", res.Stuck.Read, "steps", res.Steps)
	default:
		e.logger.Warn("step limit exceeded", "state", res.State, "steps", res.Steps, "max_steps", e.maxSteps)
	}

	if e.hooks.OnHalt != nil {
		e.hooks.OnHalt(ctx, &domain.HaltEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventHalt},
			Outcome:   res.Outcome,
			Steps:     res.Steps,
			State:     res.State,
			TapeLen:   tape.Len(),
			Duration:  elapsed,
		})
	}
	return res
}
