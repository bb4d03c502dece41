package render

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/phil-mansfield/gopm"
)

// Summary draws the RMS density contrast of every step as a terminal chart.
// Long runs are subsampled to at most width points.
func Summary(diags []gopm.Diagnostic, width, height int) string {
	if len(diags) == 0 {
		return ""
	}
	if width <= 0 {
		width = len(diags)
	}

	stride := (len(diags) + width - 1) / width
	series := make([]float64, 0, width)
	for i := 0; i < len(diags); i += stride {
		series = append(series, diags[i].DeltaRMS)
	}

	first, last := diags[0], diags[len(diags)-1]
	caption := fmt.Sprintf(
		"delta_rms from a = %.3f to a = %.3f (%d steps)",
		first.A, last.A, len(diags),
	)
	return asciigraph.Plot(
		series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
	)
}
