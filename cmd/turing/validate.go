package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/validator"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate PROGRAM...",
	Short: "Check programs for syntax and structural errors",
	Long: `Compiles each PROGRAM and reports malformed lines. Also lists the initial
state, the final states and how many effective rules remain after overwrites.

Structural findings (unreachable states, dead ends, no reachable final state)
are printed as warnings. Pass --strict to treat them as failures.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, name := range args {
			if err := validateOne(cmd, name); err != nil {
				failed++
				var fe *domain.FormatError
				if errors.As(err, &fe) {
					fmt.Fprintf(out, "%s:%d: %s\n", name, fe.Line, fe.Reason)
					continue
				}
				fmt.Fprintf(out, "%s: %v\n", name, err)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d programs failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on structural warnings")
	rootCmd.AddCommand(validateCmd)
}

func validateOne(cmd *cobra.Command, name string) error {
	src, err := app.source(cmd.Context(), name)
	if err != nil {
		return err
	}
	prog, err := compiler.Compile(src)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (initial=%s, finals=%v, rules=%d, states=%d)\n",
		name, prog.InitialState(), prog.FinalStates(), len(prog.Rules()), len(prog.States()))
	issues := validator.Inspect(prog)
	for _, issue := range issues {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: warning: %s\n", name, issue)
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict && len(issues) > 0 {
		return validator.Validate(prog)
	}
	return nil
}
