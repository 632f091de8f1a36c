package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/turing/pkg/analysis"
	"github.com/muesli/termenv"
)

// shades is the ASCII intensity ramp used when the profile has no colours.
const shades = " .:-=+*#%@"

// Chart renders analysis results for a given colour profile.
type Chart struct {
	profile termenv.Profile
	width   int
}

// NewChart creates a chart renderer. Bars are scaled to width columns.
func NewChart(profile termenv.Profile, width int) *Chart {
	if width < 10 {
		width = 10
	}
	return &Chart{profile: profile, width: width}
}

// Histogram draws one horizontal bar per length.
func (c *Chart) Histogram(points []analysis.LengthPoint) string {
	if len(points) == 0 {
		return ""
	}
	peak := 0.0
	labelWidth := 1
	for _, p := range points {
		peak = math.Max(peak, p.AvgSteps)
		labelWidth = max(labelWidth, len(fmt.Sprint(p.L)))
	}

	var sb strings.Builder
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = int(math.Round(p.AvgSteps / peak * float64(c.width)))
		}
		fmt.Fprintf(&sb, "L=%-*d │%s %.1f\n", labelWidth, p.L, c.paint(strings.Repeat("█", n), "#38bdf8"), p.AvgSteps)
	}
	return sb.String()
}

// Heatmap draws the grid with a for rows and b for columns. Each cell is two
// columns wide; colour profiles shade the background, Ascii uses a character ramp.
func (c *Chart) Heatmap(grid *analysis.Grid) string {
	if grid == nil || len(grid.Cells) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range grid.Cells {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	var sb strings.Builder
	sb.WriteString("a\\b ")
	for b := 2; b <= grid.MaxDim; b++ {
		fmt.Fprintf(&sb, "%2d", b%100)
	}
	sb.WriteString("\n")

	for i, row := range grid.Cells {
		fmt.Fprintf(&sb, "%3d ", i+2)
		for _, v := range row {
			sb.WriteString(c.cell(norm(v, lo, hi)))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "min %.1f  max %.1f\n", lo, hi)
	return sb.String()
}

func (c *Chart) cell(t float64) string {
	if c.profile == termenv.Ascii {
		ch := shades[int(math.Round(t*float64(len(shades)-1)))]
		return strings.Repeat(string(ch), 2)
	}
	return c.profile.String("  ").Background(c.profile.Color(heatColor(t))).String()
}

func (c *Chart) paint(s, color string) string {
	if c.profile == termenv.Ascii {
		return s
	}
	return c.profile.String(s).Foreground(c.profile.Color(color)).String()
}

func norm(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// heatColor interpolates from dark blue to bright yellow.
func heatColor(t float64) string {
	from := [3]float64{0x1e, 0x3a, 0x8a}
	to := [3]float64{0xfd, 0xe0, 0x47}
	var rgb [3]int
	for i := range rgb {
		rgb[i] = int(math.Round(from[i] + (to[i]-from[i])*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
