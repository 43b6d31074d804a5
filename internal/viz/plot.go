package viz

import "github.com/guptarohit/asciigraph"

// StepTimePlot draws the per-tick step times in milliseconds.
func StepTimePlot(samples []float64, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	return asciigraph.Plot(samples,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("step time (ms)"),
	)
}
