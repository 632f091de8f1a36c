package main

import (
	"fmt"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph PROGRAM",
	Short: "Export the transition graph visualization",
	Long: `Outputs a Mermaid flowchart (graph LR) of the program's states and rules.
With --tape the program is run first and the states it visited are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := app.source(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		m, err := turing.New(src, turing.WithLogger(app.logger), turing.WithMaxSteps(app.cfg.Engine.MaxSteps))
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if cmd.Flags().Changed("tape") {
			tape, _ := cmd.Flags().GetString("tape")
			rec := memory.NewRecorder()
			if _, err := m.Run(cmd.Context(), tape, turing.WithTrace(rec)); err != nil {
				return err
			}
			overlay = graph.OverlayFromTrace(rec.Configurations())
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(m.Program(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("tape", "", "Run on this tape and highlight the visited states")
}
