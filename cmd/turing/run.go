package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/analysis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run PROGRAM TAPE [TAPE...]",
	Short: "Run a program on one or more tapes",
	Long: `Compiles PROGRAM (a .tm file path or the name of a program) and runs it on
every TAPE in turn. Each tape is one symbol per character; B is the blank.

With --trace every configuration is appended to a file, each run preceded by a
title line. Use --save to keep the outcome in the configured result store.`,
	Example: `  turing run multiply BBBBB11#10$BBBBB --product
  turing run ./busy.tm "" --trace busy.dat --title "two-state beaver"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		head, _ := cmd.Flags().GetInt("head")
		tracePath, _ := cmd.Flags().GetString("trace")
		titles, _ := cmd.Flags().GetStringArray("title")
		save, _ := cmd.Flags().GetBool("save")
		jsonOut, _ := cmd.Flags().GetBool("json")
		product, _ := cmd.Flags().GetBool("product")
		maxSteps := app.cfg.Engine.MaxSteps
		if cmd.Flags().Changed("max-steps") {
			maxSteps, _ = cmd.Flags().GetInt("max-steps")
		}

		src, err := app.source(ctx, name)
		if err != nil {
			return err
		}
		m, err := turing.New(src,
			turing.WithName(name),
			turing.WithLogger(app.logger),
			turing.WithMaxSteps(maxSteps),
			turing.WithLifecycleHooks(observability.LoggingHooks(app.logger)),
		)
		if err != nil {
			return err
		}

		var tw *file.TraceWriter
		if tracePath != "" {
			tw, err = file.OpenTrace(tracePath)
			if err != nil {
				return err
			}
			defer tw.Close()
		}

		var store ports.ResultStore
		if save {
			store, err = app.store()
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		for i, tape := range args[1:] {
			opts := []turing.RunOption{turing.WithHead(head)}
			if tw != nil {
				title := tape
				if i < len(titles) {
					title = titles[i]
				}
				tw.Title(title)
				opts = append(opts, turing.WithTrace(tw))
			}

			res, err := m.Run(ctx, tape, opts...)
			if err != nil {
				return err
			}

			rec := &domain.RunRecord{
				Program:   name,
				Input:     tape,
				Head:      head,
				Result:    *res,
				CreatedAt: time.Now().UTC(),
			}
			if store != nil {
				rec.ID = uuid.NewString()
				if err := store.Save(ctx, rec); err != nil {
					return err
				}
			}

			if err := printRun(out, rec, jsonOut, product); err != nil {
				return err
			}
		}

		if tw != nil {
			if err := tw.Close(); err != nil {
				return fmt.Errorf("failed to write trace: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("head", 0, "Initial head position")
	runCmd.Flags().String("trace", "", "Append the step-by-step trace to this file")
	runCmd.Flags().StringArray("title", nil, "Trace title per tape (defaults to the tape)")
	runCmd.Flags().Int("max-steps", 0, "Stop after this many steps (0 = unbounded; overrides config)")
	runCmd.Flags().Bool("save", false, "Save each run to the configured result store")
	runCmd.Flags().Bool("json", false, "Print each run as a JSON line")
	runCmd.Flags().Bool("product", false, "Decode the final tape as a binary number")
}

func printRun(w io.Writer, rec *domain.RunRecord, jsonOut, product bool) error {
	if jsonOut {
		return json.NewEncoder(w).Encode(rec)
	}

	res := rec.Result
	fmt.Fprintf(w, "Input:   %s\n", rec.Input)
	fmt.Fprintf(w, "Outcome: %s after %d steps (state=%s, head=%d)\n", res.Outcome, res.Steps, res.State, res.Head)
	if res.Stuck != nil {
		fmt.Fprintf(w, "Stuck:   no rule for state=%s, symbol=%s\n", res.Stuck.State, res.Stuck.Read)
	}
	fmt.Fprintf(w, "Tape:    %s\n", res.Tape)
	if product {
		n, err := analysis.Product(res.Tape)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Product: %s (binary %s)\n", n.String(), n.Text(2))
	}
	if rec.ID != "" {
		fmt.Fprintf(w, "Saved:   %s\n", rec.ID)
	}
	fmt.Fprintln(w)
	return nil
}
