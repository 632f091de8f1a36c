package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/analysis"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Measure running time of the multiplication program",
	Long: `Runs the multiplication program on random operands and averages the number
of steps to halting, either per total input length or per pair of operand lengths.`,
}

var analyzeLengthCmd = &cobra.Command{
	Use:   "length",
	Short: "Average steps vs total input length L = len(num1) + len(num2)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		ac := app.cfg.Analysis
		minL := intFlag(cmd, "min", ac.MinLength)
		maxL := intFlag(cmd, "max", ac.MaxLength)
		if minL > maxL {
			return fmt.Errorf("--min (%d) exceeds --max (%d)", minL, maxL)
		}
		lengths := make([]int, 0, maxL-minL+1)
		for l := minL; l <= maxL; l++ {
			lengths = append(lengths, l)
		}

		samples := intFlag(cmd, "samples", ac.Samples)
		blanks := intFlag(cmd, "blanks", ac.Blanks)
		points, err := a.ByLength(cmd.Context(), lengths, samples, blanks)
		if err != nil {
			return err
		}

		return present(cmd, points,
			func() string { return chart(cmd).Histogram(points) },
			func() string {
				return tui.LengthReport("Average steps vs. total input length", samples, blanks, points)
			})
	},
}

var analyzeGridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Average steps for every pair of operand lengths 2..max-dim",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}
		ac := app.cfg.Analysis
		samples := intFlag(cmd, "samples", ac.Samples)
		blanks := intFlag(cmd, "blanks", ac.Blanks)
		grid, err := a.Grid(cmd.Context(), intFlag(cmd, "max-dim", ac.MaxDim), samples, blanks)
		if err != nil {
			return err
		}

		return present(cmd, grid,
			func() string { return chart(cmd).Heatmap(grid) },
			func() string {
				return tui.GridReport("Average steps by operand lengths", samples, blanks, grid)
			})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeLengthCmd, analyzeGridCmd)

	pf := analyzeCmd.PersistentFlags()
	pf.String("program", "", "Program to analyze (defaults to analysis.program)")
	pf.Int("samples", 10, "Random inputs per data point (overrides config)")
	pf.Int("blanks", 5, "Blanks on each side of the tape (overrides config)")
	pf.Int("workers", 0, "Concurrent trials; 0 uses every CPU (overrides config)")
	pf.Uint64("seed", 1, "Base random seed (overrides config)")
	pf.Bool("json", false, "Print raw results as JSON")
	pf.Bool("report", false, "Print a markdown report instead of a chart")
	pf.Bool("progress", false, "Show trial progress on stderr")
	pf.Int("width", 60, "Chart width in columns")

	analyzeLengthCmd.Flags().Int("min", 2, "Smallest total length (overrides config)")
	analyzeLengthCmd.Flags().Int("max", 12, "Largest total length (overrides config)")
	analyzeGridCmd.Flags().Int("max-dim", 10, "Largest operand length (overrides config)")
}

func intFlag(cmd *cobra.Command, name string, fallback int) int {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func newAnalyzer(cmd *cobra.Command) (*analysis.Analyzer, error) {
	ac := app.cfg.Analysis
	name := ac.Program
	if p, _ := cmd.Flags().GetString("program"); p != "" {
		name = p
	}
	src, err := app.source(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	prog, err := compiler.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	seed := ac.Seed
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetUint64("seed")
	}
	opts := []analysis.Option{
		analysis.WithWorkers(intFlag(cmd, "workers", ac.Workers)),
		analysis.WithSeed(seed),
		analysis.WithLogger(app.logger),
		analysis.WithMaxSteps(app.cfg.Engine.MaxSteps),
	}
	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		opts = append(opts, analysis.WithProgress(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rtrials %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}
	return analysis.NewAnalyzer(prog, opts...), nil
}

func chart(cmd *cobra.Command) *tui.Chart {
	width, _ := cmd.Flags().GetInt("width")
	return tui.NewChart(termenv.EnvColorProfile(), width)
}

// present prints v as JSON, as a glamour-rendered report or as a chart.
func present(cmd *cobra.Command, v any, chartFn, reportFn func() string) error {
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if report, _ := cmd.Flags().GetBool("report"); report {
		rendered, err := tui.NewRenderer()(reportFn())
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	}
	fmt.Fprint(out, chartFn())
	return nil
}
