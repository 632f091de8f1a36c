package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/turing/pkg/analysis"
	"github.com/spf13/cobra"
)

var tapeCmd = &cobra.Command{
	Use:   "tape [NUM1 NUM2]",
	Short: "Build an input tape for the multiplication program",
	Long: `Prints B^blanks NUM1 # NUM2 $ B^blanks. Without arguments, random operands of
--len1 and --len2 bits (leading bit 1) are generated from --seed.`,
	Example: `  turing tape 11 10 --blanks 5
  turing run multiply "$(turing tape --len1 8 --len2 8)" --product`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected 0 or 2 operands, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		blanks := app.cfg.Analysis.Blanks
		if cmd.Flags().Changed("blanks") {
			blanks, _ = cmd.Flags().GetInt("blanks")
		}

		var num1, num2 string
		if len(args) == 2 {
			num1, num2 = args[0], args[1]
		} else {
			len1, _ := cmd.Flags().GetInt("len1")
			len2, _ := cmd.Flags().GetInt("len2")
			seed := app.cfg.Analysis.Seed
			if cmd.Flags().Changed("seed") {
				seed, _ = cmd.Flags().GetUint64("seed")
			}
			rng := rand.New(rand.NewPCG(seed, 0))

			var err error
			if num1, err = analysis.RandomBinary(rng, len1); err != nil {
				return err
			}
			if num2, err = analysis.RandomBinary(rng, len2); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), analysis.BuildTape(num1, num2, blanks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tapeCmd)

	tapeCmd.Flags().Int("blanks", 5, "Blanks on each side (overrides config)")
	tapeCmd.Flags().Int("len1", 4, "Bits of the first random operand")
	tapeCmd.Flags().Int("len2", 4, "Bits of the second random operand")
	tapeCmd.Flags().Uint64("seed", 1, "Random seed (overrides config)")
}
