package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/analysis"
)

// LengthReport builds a markdown report of a length analysis.
func LengthReport(title string, samples, blanks int, points []analysis.LengthPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Average steps to halting over **%d** random inputs per length, **%d** blanks on each side.\n\n", samples, blanks)
	sb.WriteString("| L | Average steps |\n|---:|---:|\n")
	for _, p := range points {
		fmt.Fprintf(&sb, "| %d | %.2f |\n", p.L, p.AvgSteps)
	}
	return sb.String()
}

// GridReport builds a markdown report of a grid analysis.
func GridReport(title string, samples, blanks int, grid *analysis.Grid) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Average steps to halting over **%d** random inputs per cell, **%d** blanks on each side. Rows are len(num1), columns len(num2).\n\n", samples, blanks)

	sb.WriteString("| a \\ b |")
	for b := 2; b <= grid.MaxDim; b++ {
		fmt.Fprintf(&sb, " %d |", b)
	}
	sb.WriteString("\n|---:|")
	for b := 2; b <= grid.MaxDim; b++ {
		sb.WriteString("---:|")
	}
	sb.WriteString("\n")
	for i, row := range grid.Cells {
		fmt.Fprintf(&sb, "| %d |", i+2)
		for _, v := range row {
			fmt.Fprintf(&sb, " %.1f |", v)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
