package turing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/programs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CompileErrors(t *testing.T) {
	t.Run("Malformed Rule", func(t *testing.T) {
		m, err := turing.New("A 0 1 r")
		assert.Nil(t, m)
		assert.ErrorIs(t, err, domain.ErrFormat)

		var fe *domain.FormatError
		assert.True(t, errors.As(err, &fe))
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := turing.New("; only comments")
		assert.ErrorIs(t, err, domain.ErrEmptyProgram)
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Found", func(t *testing.T) {
		_, err := turing.Load(ctx, programs.NewRegistry(), "nope")
		assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	})

	t.Run("Broken Source", func(t *testing.T) {
		loader := memory.NewLoader(map[string]string{"broken": "A B"})
		_, err := turing.Load(ctx, loader, "broken")
		assert.ErrorIs(t, err, domain.ErrFormat)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("Named", func(t *testing.T) {
		m, err := turing.Load(ctx, programs.NewRegistry(), programs.BusyBeaver2)
		require.NoError(t, err)
		assert.Equal(t, programs.BusyBeaver2, m.Name)
	})
}

func TestMachine_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Busy Beaver", func(t *testing.T) {
		m, err := turing.Load(ctx, programs.NewRegistry(), programs.BusyBeaver2)
		require.NoError(t, err)

		res, err := m.Run(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeHalted, res.Outcome)
		assert.Equal(t, 7, res.Steps)
		assert.Equal(t, "1111", res.Tape)
		assert.Equal(t, 2, res.Head)
	})

	t.Run("Initial Head", func(t *testing.T) {
		m, err := turing.New("S 1 x * halt")
		require.NoError(t, err)

		res, err := m.Run(ctx, "01", turing.WithHead(1))
		require.NoError(t, err)
		assert.Equal(t, "0x", res.Tape)
	})

	t.Run("Step Limit", func(t *testing.T) {
		m, err := turing.New("S * * r S", turing.WithMaxSteps(25))
		require.NoError(t, err)
		assert.Equal(t, 25, m.MaxSteps())

		res, err := m.Run(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeStepLimitExceeded, res.Outcome)
		assert.Equal(t, 25, res.Steps)
	})

	t.Run("Hooks", func(t *testing.T) {
		var halted domain.Outcome
		m, err := turing.New("S 0 0 r S", turing.WithLifecycleHooks(domain.LifecycleHooks{
			OnHalt: func(ctx context.Context, e *domain.HaltEvent) { halted = e.Outcome },
		}))
		require.NoError(t, err)

		_, err = m.Run(ctx, "01")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNoTransition, halted)
	})

	t.Run("Tape Is Not Shared Between Runs", func(t *testing.T) {
		m, err := turing.New("S * x r halt")
		require.NoError(t, err)

		a, err := m.Run(ctx, "0")
		require.NoError(t, err)
		b, err := m.Run(ctx, "0")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, "x", b.Tape)
	})
}

func TestCheckHead(t *testing.T) {
	assert.NoError(t, turing.CheckHead("01", -1))
	assert.NoError(t, turing.CheckHead("01", 0))
	assert.NoError(t, turing.CheckHead("01", 2))
	assert.NoError(t, turing.CheckHead("", 0))

	assert.ErrorIs(t, turing.CheckHead("01", 3), domain.ErrHeadOutOfRange)
	assert.ErrorIs(t, turing.CheckHead("01", -2), domain.ErrHeadOutOfRange)
	assert.ErrorIs(t, turing.CheckHead("1", 2_000_000_000), domain.ErrHeadOutOfRange)
}
