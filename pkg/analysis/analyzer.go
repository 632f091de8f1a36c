package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	goruntime "runtime"
	"sync/atomic"
	"time"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// LengthPoint is the average step count for a total input length L.
type LengthPoint struct {
	L        int     `json:"l"`
	AvgSteps float64 `json:"avg_steps"`
}

// Grid holds average step counts indexed by operand lengths: Cells[a-2][b-2].
type Grid struct {
	MaxDim int         `json:"max_dim"`
	Cells  [][]float64 `json:"cells"`
}

// At returns the cell for operand lengths a and b.
func (g *Grid) At(a, b int) float64 {
	return g.Cells[a-2][b-2]
}

// ProgressFunc is called after every finished trial. It may be called from
// several goroutines at once.
type ProgressFunc func(done, total int)

// Analyzer runs batches of random trials against one compiled program.
type Analyzer struct {
	program  *domain.Program
	engine   *runtime.Engine
	logger   *slog.Logger
	workers  int
	seed     uint64
	maxSteps int
	progress ProgressFunc
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds the number of concurrent trials. Zero or less uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithSeed sets the base seed of every trial generator.
func WithSeed(seed uint64) Option {
	return func(a *Analyzer) {
		a.seed = seed
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxSteps fails any trial that exceeds n steps. Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(a *Analyzer) {
		a.maxSteps = n
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// NewAnalyzer creates an analyzer for prog, which is expected to follow the
// multiplication tape layout. prog is shared read-only by all trials.
func NewAnalyzer(prog *domain.Program, opts ...Option) *Analyzer {
	a := &Analyzer{
		program: prog,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		seed:    1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers <= 0 {
		a.workers = goruntime.GOMAXPROCS(0)
	}
	a.engine = runtime.NewEngine(runtime.WithMaxSteps(a.maxSteps))
	return a
}

// Workers returns the size of the worker pool.
func (a *Analyzer) Workers() int {
	return a.workers
}

// Trial runs the program once on num1 and num2. A run cut short by the
// step bound is reported as an error.
func (a *Analyzer) Trial(ctx context.Context, num1, num2 string, blanks int) (*domain.Result, error) {
	tape := runtime.NewTape(BuildTape(num1, num2, blanks))
	res, err := a.engine.Run(ctx, a.program, tape, 0, nil)
	if err != nil {
		return nil, err
	}
	if res.Outcome == domain.OutcomeStepLimitExceeded {
		return nil, fmt.Errorf("trial %s*%s: %s after %d steps", num1, num2, res.Outcome, res.Steps)
	}
	return res, nil
}

// job describes one trial. Operand lengths are either fixed or, when la is
// zero, drawn uniformly so that la+lb == total.
type job struct {
	la, lb int
	total  int
}

func (a *Analyzer) rng(index int) *rand.Rand {
	return rand.New(rand.NewPCG(a.seed, uint64(index)))
}

func (a *Analyzer) runJob(ctx context.Context, index int, j job, blanks int) (int, error) {
	rng := a.rng(index)
	la, lb := j.la, j.lb
	if la == 0 {
		la = 1 + rng.IntN(j.total-1)
		lb = j.total - la
	}
	num1, err := RandomBinary(rng, la)
	if err != nil {
		return 0, err
	}
	num2, err := RandomBinary(rng, lb)
	if err != nil {
		return 0, err
	}
	res, err := a.Trial(ctx, num1, num2, blanks)
	if err != nil {
		return 0, err
	}
	return res.Steps, nil
}

// runAll executes jobs on the worker pool and returns the step count of each.
func (a *Analyzer) runAll(ctx context.Context, jobs []job, blanks int) ([]int, error) {
	steps := make([]int, len(jobs))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			n, err := a.runJob(gctx, i, jobs[i], blanks)
			if err != nil {
				return err
			}
			steps[i] = n
			if a.progress != nil {
				a.progress(int(done.Add(1)), len(jobs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func validate(samples, blanks int) error {
	if samples < 1 {
		return errors.New("samples must be at least 1")
	}
	if blanks < 0 {
		return errors.New("blanks must not be negative")
	}
	return nil
}

// ByLength averages the step count over samples random operand pairs for
// every total length L in lengths. Lengths below 2 cannot hold two operands
// and are skipped.
func (a *Analyzer) ByLength(ctx context.Context, lengths []int, samples, blanks int) ([]LengthPoint, error) {
	if err := validate(samples, blanks); err != nil {
		return nil, err
	}

	var valid []int
	for _, l := range lengths {
		if l >= 2 {
			valid = append(valid, l)
		}
	}

	jobs := make([]job, 0, len(valid)*samples)
	for _, l := range valid {
		for range samples {
			jobs = append(jobs, job{total: l})
		}
	}

	start := time.Now()
	steps, err := a.runAll(ctx, jobs, blanks)
	if err != nil {
		return nil, fmt.Errorf("length analysis failed: %w", err)
	}

	points := make([]LengthPoint, len(valid))
	for i, l := range valid {
		points[i] = LengthPoint{L: l, AvgSteps: mean(steps[i*samples : (i+1)*samples])}
	}
	a.logger.Info("length analysis finished", "lengths", len(valid), "trials", len(jobs), "duration", time.Since(start))
	return points, nil
}

// Grid averages the step count over samples trials for every pair of operand
// lengths 2 <= a, b <= maxDim.
func (a *Analyzer) Grid(ctx context.Context, maxDim, samples, blanks int) (*Grid, error) {
	if maxDim < 2 {
		return nil, fmt.Errorf("max dimension must be at least 2, got %d", maxDim)
	}
	if err := validate(samples, blanks); err != nil {
		return nil, err
	}

	dim := maxDim - 1
	jobs := make([]job, 0, dim*dim*samples)
	for la := 2; la <= maxDim; la++ {
		for lb := 2; lb <= maxDim; lb++ {
			for range samples {
				jobs = append(jobs, job{la: la, lb: lb})
			}
		}
	}

	start := time.Now()
	steps, err := a.runAll(ctx, jobs, blanks)
	if err != nil {
		return nil, fmt.Errorf("grid analysis failed: %w", err)
	}

	grid := &Grid{MaxDim: maxDim, Cells: make([][]float64, dim)}
	for i := range dim {
		grid.Cells[i] = make([]float64, dim)
		for j := range dim {
			off := (i*dim + j) * samples
			grid.Cells[i][j] = mean(steps[off : off+samples])
		}
	}
	a.logger.Info("grid analysis finished", "max_dim", maxDim, "trials", len(jobs), "duration", time.Since(start))
	return grid, nil
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
