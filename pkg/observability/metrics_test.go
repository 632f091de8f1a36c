package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/programs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	m, err := turing.New(programs.MustSource(programs.BusyBeaver2), turing.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	res, err := m.Run(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 7, res.Steps)

	// The halting step applies no rule.
	assert.Equal(t, float64(6), testutil.ToFloat64(metrics.Steps))
	assert.Equal(t, float64(6), testutil.ToFloat64(metrics.Matches.WithLabelValues("exact")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Runs.WithLabelValues(string(domain.OutcomeHalted))))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.RunSteps))

	count, err := testutil.GatherAndCount(reg, "turing_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NoTransitionOutcome(t *testing.T) {
	metrics := observability.NewMetrics(nil)

	m, err := turing.New("q0 0 1 r q0\n", turing.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	res, err := m.Run(context.Background(), "001")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeNoTransition, res.Outcome)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Runs.WithLabelValues(string(domain.OutcomeNoTransition))))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Steps))
}

func TestAggregator_FansOut(t *testing.T) {
	var starts, steps, halts int
	counter := domain.LifecycleHooks{
		OnRunStart: func(context.Context, *domain.EventBase) { starts++ },
		OnStep:     func(context.Context, *domain.StepEvent) { steps++ },
		OnHalt:     func(context.Context, *domain.HaltEvent) { halts++ },
	}
	metrics := observability.NewMetrics(nil)

	agg := observability.NewAggregator(counter)
	agg.Add(metrics.Hooks())
	agg.Add(domain.LifecycleHooks{}) // nil callbacks are skipped

	m, err := turing.New(programs.MustSource(programs.BusyBeaver2), turing.WithLifecycleHooks(agg.Hooks()))
	require.NoError(t, err)
	_, err = m.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, starts)
	assert.Equal(t, 6, steps)
	assert.Equal(t, 1, halts)
	assert.Equal(t, float64(6), testutil.ToFloat64(metrics.Steps))
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m, err := turing.New(programs.MustSource(programs.BusyBeaver2), turing.WithLifecycleHooks(observability.LoggingHooks(logger)))
	require.NoError(t, err)
	_, err = m.Run(context.Background(), "")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=run_start")
	assert.Contains(t, out, "msg=step")
	assert.Contains(t, out, "msg=run_halt")
	assert.Contains(t, out, "outcome=halted")
	assert.Contains(t, out, "steps=7")
}
