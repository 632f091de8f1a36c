package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for engine runs.
type Metrics struct {
	Runs     *prometheus.CounterVec
	Steps    prometheus.Counter
	Matches  *prometheus.CounterVec
	RunSteps prometheus.Histogram
	Duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_runs_total",
				Help: "Total number of finished runs by outcome",
			},
			[]string{"outcome"},
		),
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turing_steps_total",
			Help: "Total number of transitions applied",
		}),
		Matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_rule_matches_total",
				Help: "Transitions applied by rule kind",
			},
			[]string{"match"},
		),
		RunSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "turing_run_steps",
			Help:    "Steps taken per run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "turing_run_duration_seconds",
			Help: "Wall time per run",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Steps, m.Matches, m.RunSteps, m.Duration)
	}
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.Inc()
			m.Matches.WithLabelValues(e.Match.String()).Inc()
		},
		OnHalt: func(_ context.Context, e *domain.HaltEvent) {
			m.Runs.WithLabelValues(string(e.Outcome)).Inc()
			m.RunSteps.Observe(float64(e.Steps))
			m.Duration.Observe(e.Duration.Seconds())
		},
	}
}

// LoggingHooks returns hooks that audit runs through logger.
// Step events are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, _ *domain.EventBase) {
			logger.InfoContext(ctx, "run_start")
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"step", e.Step,
				"from", e.FromState,
				"to", e.ToState,
				"read", string(e.Read),
				"write", string(e.Write),
				"move", e.Move.Token(),
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.InfoContext(ctx, "run_halt",
				"outcome", string(e.Outcome),
				"steps", e.Steps,
				"state", e.State,
				"duration", e.Duration,
			)
		},
	}
}
