package turing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// Version is the release of the library and CLI.
const Version = "0.3.0"

// Machine is the high-level entry point of the library.
// It pairs one compiled Program with an engine and can run it any number of
// times, concurrently if needed: every run gets its own tape.
type Machine struct {
	program    *domain.Program
	engine     *runtime.Engine
	engineOpts []runtime.EngineOption
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	Name       string
}

// Option defines a functional option for configuring the Machine.
type Option func(*Machine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithMaxSteps stops runs after n steps with OutcomeStepLimitExceeded.
// Zero (the default) leaves runs unbounded.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		m.engineOpts = append(m.engineOpts, runtime.WithMaxSteps(n))
	}
}

// WithName labels the machine in logs and records.
func WithName(name string) Option {
	return func(m *Machine) {
		m.Name = name
	}
}

// New compiles source and returns a ready Machine.
// Compile failures are returned as *domain.FormatError or domain.ErrEmptyProgram.
func New(source string, opts ...Option) (*Machine, error) {
	prog, err := compiler.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile program: %w", err)
	}
	return NewFromProgram(prog, opts...), nil
}

// Load resolves a program by name through loader and compiles it.
func Load(ctx context.Context, loader ports.ProgramLoader, name string, opts ...Option) (*Machine, error) {
	source, err := loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := New(source, append([]Option{WithName(name)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

// NewFromProgram wraps an already compiled program.
func NewFromProgram(prog *domain.Program, opts ...Option) *Machine {
	m := &Machine{program: prog}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.Name != "" {
		m.logger = m.logger.With("program", m.Name)
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(m.logger),
		runtime.WithLifecycleHooks(m.hooks),
	}
	m.engine = runtime.NewEngine(append(engineOpts, m.engineOpts...)...)
	return m
}

// Program returns the compiled program.
func (m *Machine) Program() *domain.Program {
	return m.program
}

// MaxSteps returns the configured step bound (0 = unbounded).
func (m *Machine) MaxSteps() int {
	return m.engine.MaxSteps()
}

type runConfig struct {
	head int
	sink ports.TraceSink
}

// RunOption tunes a single run.
type RunOption func(*runConfig)

// WithHead sets the initial head position (default 0).
func WithHead(head int) RunOption {
	return func(c *runConfig) {
		c.head = head
	}
}

// WithTrace sends every configuration of the run to sink.
func WithTrace(sink ports.TraceSink) RunOption {
	return func(c *runConfig) {
		c.sink = sink
	}
}

// CheckHead accepts an initial head on the tape or on the blank cell right
// next to either end. Anything further out would make the first read
// materialize one blank per cell of distance.
func CheckHead(tape string, head int) error {
	n := utf8.RuneCountInString(tape)
	if head < -1 || head > n {
		return fmt.Errorf("%w: %d not in [-1, %d]", domain.ErrHeadOutOfRange, head, n)
	}
	return nil
}

// Run executes the program on a fresh tape built from tape (one symbol per
// character, blank = "B").
func (m *Machine) Run(ctx context.Context, tape string, opts ...RunOption) (*domain.Result, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return m.engine.Run(ctx, m.program, runtime.NewTape(tape), cfg.head, cfg.sink)
}
