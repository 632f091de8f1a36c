package runtime_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/internal/testutils"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/programs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mustCompile = testutils.MustCompile

func TestEngine_Scenario(t *testing.T) {
	prog := mustCompile(t, "A 0 1 r B", "A 1 0 r B", "A * * r A", "B * * l halt")
	engine := runtime.NewEngine()
	rec := memory.NewRecorder()

	res, err := engine.Run(context.Background(), prog, runtime.NewTape("01"), 0, rec)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, domain.OutcomeHalted, res.Outcome)
	assert.True(t, res.Halted())
	assert.Equal(t, "11", res.Tape)
	assert.Equal(t, "halt", res.State)
	assert.Equal(t, 0, res.Head)
	assert.Nil(t, res.Stuck)

	assert.Equal(t, []string{
		"Step 0000: State=A, Head=0, Tape=01",
		"Step 0001: State=B, Head=1, Tape=11",
		"Step 0002: State=halt, Head=0, Tape=11",
		"Step 0003: State=halt, Head=0, Tape=11",
	}, rec.Lines())
}

func TestEngine_Resolution(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()

	t.Run("Exact Over Wildcard", func(t *testing.T) {
		prog := mustCompile(t, "S * y l U", "S 0 x r T")
		rec := memory.NewRecorder()
		_, err := engine.Run(ctx, prog, runtime.NewTape("0"), 0, rec)
		require.NoError(t, err)

		step1 := rec.Configurations()[1]
		assert.Equal(t, "T", step1.State)
		assert.Equal(t, 1, step1.Head)
		assert.Equal(t, "x", step1.Tape)
	})

	t.Run("Wildcard Fallback", func(t *testing.T) {
		prog := mustCompile(t, "S 0 x r T", "S * y * halt")
		res, err := engine.Run(ctx, prog, runtime.NewTape("1"), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, "y", res.Tape)
		assert.Equal(t, domain.OutcomeHalted, res.Outcome)
	})

	t.Run("Identity Write", func(t *testing.T) {
		prog := mustCompile(t, "S a * r S2")
		rec := memory.NewRecorder()
		_, err := engine.Run(ctx, prog, runtime.NewTape("a"), 0, rec)
		require.NoError(t, err)

		step1 := rec.Configurations()[1]
		assert.Equal(t, "a", string(step1.Tape[0]))
		assert.Equal(t, "S2", step1.State)
	})

	t.Run("No Move", func(t *testing.T) {
		prog := mustCompile(t, "S a b * T")
		rec := memory.NewRecorder()
		_, err := engine.Run(ctx, prog, runtime.NewTape("a"), 0, rec)
		require.NoError(t, err)

		step1 := rec.Configurations()[1]
		assert.Equal(t, 0, step1.Head)
		assert.Equal(t, "T", step1.State)
		assert.Equal(t, "b", step1.Tape)
	})
}

func TestEngine_ImmediateHalt(t *testing.T) {
	prog := mustCompile(t, "halt * 1 r halt")
	require.True(t, prog.IsFinal(prog.InitialState()))

	rec := memory.NewRecorder()
	res, err := runtime.NewEngine().Run(context.Background(), prog, runtime.NewTape("0"), 0, rec)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, domain.OutcomeHalted, res.Outcome)
	assert.Equal(t, "0", res.Tape)

	cfgs := rec.Configurations()
	require.Len(t, cfgs, 2)
	assert.Equal(t, 0, cfgs[0].Step)
	assert.Equal(t, 1, cfgs[1].Step)
	assert.Equal(t, cfgs[0].State, cfgs[1].State)
	assert.Equal(t, cfgs[0].Head, cfgs[1].Head)
	assert.Equal(t, cfgs[0].Tape, cfgs[1].Tape)
}

func TestEngine_NoTransition(t *testing.T) {
	prog := mustCompile(t, "S 0 0 r S")
	rec := memory.NewRecorder()

	res, err := runtime.NewEngine().Run(context.Background(), prog, runtime.NewTape("01"), 0, rec)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, domain.OutcomeNoTransition, res.Outcome)
	require.NotNil(t, res.Stuck)
	assert.Equal(t, domain.Key{State: "S", Read: "1"}, *res.Stuck)

	entries := rec.Entries()
	require.Len(t, entries, 4)
	require.NotNil(t, entries[2].Diagnostic, "diagnostic must precede the final configuration")
	assert.Equal(t, domain.Key{State: "S", Read: "1"}, *entries[2].Diagnostic)
	require.NotNil(t, entries[3].Config)
	assert.Equal(t, domain.Configuration{Step: 2, State: "S", Head: 1, Tape: "01"}, *entries[3].Config)
}

func TestEngine_SinkCallOrder(t *testing.T) {
	prog := mustCompile(t, "S 0 0 r S")
	sink := new(testutils.MockSink)

	first := sink.On("Record", domain.Configuration{Step: 0, State: "S", Head: 0, Tape: "01"}).Once()
	second := sink.On("Record", domain.Configuration{Step: 1, State: "S", Head: 1, Tape: "01"}).Once().NotBefore(first)
	stuck := sink.On("NoTransition", "S", domain.Symbol("1")).Once().NotBefore(second)
	sink.On("Record", domain.Configuration{Step: 2, State: "S", Head: 1, Tape: "01"}).Once().NotBefore(stuck)

	_, err := runtime.NewEngine().Run(context.Background(), prog, runtime.NewTape("01"), 0, sink)
	require.NoError(t, err)
	sink.AssertExpectations(t)
}

// budgetSink accepts a fixed number of records.
type budgetSink struct {
	ports.NopSink
	budget, records int
}

func (b *budgetSink) Record(domain.Configuration) { b.records++ }
func (b *budgetSink) Full() bool                  { return b.records >= b.budget }

func TestEngine_BoundedSink(t *testing.T) {
	prog := mustCompile(t, "A * * r A")
	ctx := context.Background()

	sink := &budgetSink{budget: 3}
	res, err := runtime.NewEngine(runtime.WithMaxSteps(1000)).Run(ctx, prog, runtime.NewTape("1"), 0, sink)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Steps, "a full sink must not shorten the run")
	assert.Equal(t, 3, sink.records)

	rec := memory.NewRecorder(memory.WithMaxEntries(3))
	res, err = runtime.NewEngine(runtime.WithMaxSteps(1000)).Run(ctx, prog, runtime.NewTape("1"), 0, rec)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStepLimitExceeded, res.Outcome)
	assert.Equal(t, []string{
		"Step 0000: State=A, Head=0, Tape=1",
		"Step 0001: State=A, Head=1, Tape=1",
		"Step 0002: State=A, Head=2, Tape=1B",
	}, rec.Lines())
	assert.True(t, rec.Truncated())
}

func TestEngine_StepLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("Runaway Right", func(t *testing.T) {
		prog := mustCompile(t, "S * * r S")
		engine := runtime.NewEngine(runtime.WithMaxSteps(10))
		assert.Equal(t, 10, engine.MaxSteps())

		res, err := engine.Run(ctx, prog, runtime.NewTape(""), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeStepLimitExceeded, res.Outcome)
		assert.Equal(t, 10, res.Steps)
		assert.Equal(t, strings.Repeat("B", 10), res.Tape)
		assert.Equal(t, 10, res.Head)
	})

	t.Run("Runaway Left", func(t *testing.T) {
		prog := mustCompile(t, "S * * l S")
		res, err := runtime.NewEngine(runtime.WithMaxSteps(3)).Run(ctx, prog, runtime.NewTape("10"), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, "BB10", res.Tape)
		assert.Equal(t, -1, res.Head)
	})

	t.Run("Halting Program Unaffected", func(t *testing.T) {
		prog := mustCompile(t, "A 0 1 r B", "A 1 0 r B", "A * * r A", "B * * l halt")
		res, err := runtime.NewEngine(runtime.WithMaxSteps(100)).Run(ctx, prog, runtime.NewTape("01"), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeHalted, res.Outcome)
		assert.Equal(t, 3, res.Steps)
	})
}

func TestEngine_Cancellation(t *testing.T) {
	prog := mustCompile(t, "S * * r S")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := runtime.NewEngine().Run(ctx, prog, runtime.NewTape(""), 0, nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_NilProgram(t *testing.T) {
	_, err := runtime.NewEngine().Run(context.Background(), nil, runtime.NewTape(""), 0, nil)
	assert.Error(t, err)
}

func TestEngine_Hooks(t *testing.T) {
	var starts, steps int
	var halt *domain.HaltEvent
	var matches []domain.Match

	hooks := domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.EventBase) { starts++ },
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			steps++
			matches = append(matches, e.Match)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) { halt = e },
	}

	prog := mustCompile(t, "A 0 1 r B", "A 1 0 r B", "A * * r A", "B * * l halt")
	_, err := runtime.NewEngine(runtime.WithLifecycleHooks(hooks)).Run(context.Background(), prog, runtime.NewTape("01"), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, starts)
	assert.Equal(t, 2, steps)
	assert.Equal(t, []domain.Match{domain.MatchExact, domain.MatchWildcard}, matches)
	require.NotNil(t, halt)
	assert.Equal(t, domain.OutcomeHalted, halt.Outcome)
	assert.Equal(t, 3, halt.Steps)
	assert.Equal(t, 2, halt.TapeLen)
}

func TestEngine_Multiply(t *testing.T) {
	prog, err := compiler.Compile(programs.MustSource(programs.Multiply))
	require.NoError(t, err)
	engine := runtime.NewEngine()

	cases := []struct {
		input string
		steps int
		tape  string
	}{
		{"BB1#1$BB", 60, "B1BBBBBBB"},
		{"BBBBB11#10$BBBBB", 202, "B110BBBBBBBBBBBB"},
		{"BBBBBBBBBBBB101111#101001$BBBBBBBBBBBB", 2371, "B11110000111" + strings.Repeat("B", 27)},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			res, err := engine.Run(context.Background(), prog, runtime.NewTape(tc.input), 0, nil)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeHalted, res.Outcome)
			assert.Equal(t, tc.steps, res.Steps)
			assert.Equal(t, tc.tape, res.Tape)
		})
	}
}

func TestEngine_Determinism(t *testing.T) {
	prog, err := compiler.Compile(programs.MustSource(programs.Multiply))
	require.NoError(t, err)
	engine := runtime.NewEngine()
	input := "BBBBB1011#110$BBBBB"

	withTrace := memory.NewRecorder()
	a, err := engine.Run(context.Background(), prog, runtime.NewTape(input), 0, withTrace)
	require.NoError(t, err)
	b, err := engine.Run(context.Background(), prog, runtime.NewTape(input), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, a, b, "tracing must not change the result")
	assert.Len(t, withTrace.Configurations(), a.Steps+1)
}

func TestEngine_ConcurrentRunsShareProgram(t *testing.T) {
	prog, err := compiler.Compile(programs.MustSource(programs.Multiply))
	require.NoError(t, err)
	engine := runtime.NewEngine()

	want, err := engine.Run(context.Background(), prog, runtime.NewTape("BBBB111#101$BBBB"), 0, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*domain.Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := engine.Run(context.Background(), prog, runtime.NewTape("BBBB111#101$BBBB"), 0, memory.NewRecorder())
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, want, res)
	}
}
