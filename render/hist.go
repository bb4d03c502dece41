/*package render turns simulation snapshots into histograms and figures.
*/
package render

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"gonum.org/v1/gonum/floats"
)

type HistInfo struct {
	Min, Max float64
	Bins     int
	// Must be "Log" or "Linear".
	Scale string
}

// CheckInit returns an error if the histogram cannot be binned.
func (info *HistInfo) CheckInit() error {
	isLog := strings.ToLower(info.Scale) == "log"
	switch {
	case info.Bins <= 0:
		return fmt.Errorf("Histogram must have positive bins, not %d.", info.Bins)
	case !isLog && strings.ToLower(info.Scale) != "linear":
		return fmt.Errorf(
			"Histogram scale must be Log or Linear, not '%s'.", info.Scale,
		)
	case !(info.Min < info.Max):
		return fmt.Errorf(
			"Histogram range [%g, %g] is empty.", info.Min, info.Max,
		)
	case isLog && info.Min <= 0:
		return fmt.Errorf(
			"Log histogram must have a positive minimum, not %g.", info.Min,
		)
	}
	return nil
}

// RangeInfo returns a HistInfo spanning the values in xs. Log ranges only
// consider positive values.
func RangeInfo(xs []float64, bins int, scale string) *HistInfo {
	info := &HistInfo{Bins: bins, Scale: scale, Min: 0, Max: 1}

	vals := xs
	if strings.ToLower(scale) == "log" {
		vals = make([]float64, 0, len(xs))
		for _, x := range xs {
			if x > 0 {
				vals = append(vals, x)
			}
		}
		info.Min, info.Max = 0.1, 1
	}
	if len(vals) == 0 {
		return info
	}

	min, max := floats.Min(vals), floats.Max(vals)
	if min == max {
		// Pad degenerate ranges so every value lands in a bin.
		if strings.ToLower(scale) == "log" {
			min, max = min/2, max*2
		} else {
			min, max = min-0.5, max+0.5
		}
	}
	// Widen slightly so the maximum falls inside the last bin.
	if strings.ToLower(scale) == "log" {
		max *= 1 + 1e-9
	} else {
		max += (max - min) * 1e-9
	}
	info.Min, info.Max = min, max
	return info
}

// Hist is a binned distribution.
type Hist struct {
	Centers []float64
	Counts  []int
}

// Total returns the number of values which were binned.
func (h *Hist) Total() int {
	sum := 0
	for _, n := range h.Counts {
		sum += n
	}
	return sum
}

// Histogram bins xs with the given number of workers. Values outside the
// range of info are dropped. If workers is not positive the number of
// logical cores is used.
func Histogram(xs []float64, info *HistInfo, workers int) *Hist {
	if err := info.CheckInit(); err != nil {
		panic(err.Error())
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	hists := make([][]int, workers)
	out := make(chan int, workers)
	for id := 0; id < workers; id++ {
		hists[id] = make([]int, info.Bins)
		low, high := len(xs)*id/workers, len(xs)*(id+1)/workers
		go chanHistogram(id, xs[low:high], info, hists[id], out)
	}

	// Merge worker histograms.
	h := &Hist{Centers: histCenters(info), Counts: make([]int, info.Bins)}
	for i := 0; i < workers; i++ {
		id := <-out
		for j := range h.Counts {
			h.Counts[j] += hists[id][j]
		}
	}
	return h
}

func chanHistogram(
	worker int, xs []float64, info *HistInfo, counts []int, out chan<- int,
) {
	histogram(xs, info, counts)
	out <- worker
}

// histCenters returns the centers of a histogram.
func histCenters(info *HistInfo) []float64 {
	min, max := info.Min, info.Max

	isLog := strings.ToLower(info.Scale) == "log"
	if isLog {
		min, max = math.Log10(min), math.Log10(max)
	}

	dx := (max - min) / float64(info.Bins)

	centers := make([]float64, info.Bins)
	for i := range centers {
		centers[i] = min + dx*(float64(i)+0.5)
		if isLog {
			centers[i] = math.Pow(10, centers[i])
		}
	}

	return centers
}

func histogram(x []float64, info *HistInfo, counts []int) {
	min, max := info.Min, info.Max
	fBins := float64(info.Bins)

	if strings.ToLower(info.Scale) == "log" {
		min, max := math.Log10(min), math.Log10(max)
		dx := (max - min) / fBins

		for i := range x {
			if !(x[i] > 0) {
				continue
			}

			idx := (math.Log10(x[i]) - min) / dx
			if !(idx >= 0 && idx < fBins) {
				continue
			}
			counts[int(idx)]++
		}
	} else {
		dx := (max - min) / fBins

		for i := range x {
			idx := (x[i] - min) / dx
			if !(idx >= 0 && idx < fBins) {
				continue
			}
			counts[int(idx)]++
		}
	}
}
