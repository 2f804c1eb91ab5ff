package periodicity

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-tempo/algorithms/smoothing"
)

// Histogram is an interval histogram: the autocorrelation energy of a beat
// activation signal over a range of candidate inter-beat intervals (lags,
// in frames). Bins and Lags always have the same length and Bins[i] is the
// energy at Lags[i]; lags are strictly increasing.
type Histogram struct {
	Bins []float64 `json:"bins"`
	Lags []int     `json:"lags"`
}

// NewHistogram creates a histogram from matching bin and lag slices.
func NewHistogram(bins []float64, lags []int) (*Histogram, error) {
	if len(bins) != len(lags) {
		return nil, fmt.Errorf("histogram bins (%d) and lags (%d) must have the same length", len(bins), len(lags))
	}
	return &Histogram{Bins: bins, Lags: lags}, nil
}

// Len returns the number of histogram bins.
func (h *Histogram) Len() int {
	return len(h.Bins)
}

// Smooth returns a histogram with smoothed bins. The lags are an index
// axis, not a signal, and are left untouched.
func (h *Histogram) Smooth(spec smoothing.Spec) (*Histogram, error) {
	bins, err := smoothing.Smooth(h.Bins, spec)
	if err != nil {
		return nil, err
	}
	return &Histogram{Bins: bins, Lags: h.Lags}, nil
}

// Tempi converts the histogram lags to tempi in BPM at the given frame rate.
func (h *Histogram) Tempi(frameRate float64) []float64 {
	tempi := make([]float64, len(h.Lags))
	for i, lag := range h.Lags {
		tempi[i] = 60.0 * frameRate / float64(lag)
	}
	return tempi
}

// parallelThreshold is the number of lags below which the histogram is
// built serially; the per-goroutine setup costs more than it saves on
// small lag ranges.
const parallelThreshold = 64

// BuildHistogram computes the interval histogram of an activation signal.
//
// The signal is optionally smoothed first (spec may be nil to skip
// smoothing). For every lag in [minLag, maxLag) the bin energy is the sum
// of |activations[lag:] * activations[:-lag]|, an unnormalized rectified
// autocorrelation that rewards activation bursts repeating that many
// frames apart. A maxLag <= 0 defaults to len(activations) - minLag. An
// empty lag range yields an empty histogram.
func BuildHistogram(activations []float64, spec smoothing.Spec, minLag, maxLag int) (*Histogram, error) {
	if minLag < 1 {
		return nil, fmt.Errorf("minimum lag must be at least 1 frame, got %d", minLag)
	}

	if spec != nil {
		smoothed, err := smoothing.Smooth(activations, spec)
		if err != nil {
			return nil, err
		}
		activations = smoothed
	}

	if maxLag <= 0 {
		maxLag = len(activations) - minLag
	}

	count := maxLag - minLag
	if count <= 0 {
		return &Histogram{Bins: []float64{}, Lags: []int{}}, nil
	}

	lags := make([]int, count)
	for i := range lags {
		lags[i] = minLag + i
	}

	bins := make([]float64, count)
	if count < parallelThreshold {
		fillBins(bins, activations, minLag, 0, count)
	} else {
		workers := runtime.GOMAXPROCS(0)
		if workers > count {
			workers = count
		}
		chunk := (count + workers - 1) / workers

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			start := w * chunk
			end := start + chunk
			if end > count {
				end = count
			}
			if start >= end {
				break
			}
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				fillBins(bins, activations, minLag, start, end)
			}(start, end)
		}
		wg.Wait()
	}

	return &Histogram{Bins: bins, Lags: lags}, nil
}

// fillBins computes the energies for bins[start:end]. Each call owns a
// disjoint output range, so concurrent calls need no locking.
func fillBins(bins, activations []float64, minLag, start, end int) {
	n := len(activations)
	scratch := make([]float64, n)
	for i := start; i < end; i++ {
		lag := minLag + i
		if lag >= n {
			bins[i] = 0
			continue
		}
		prod := scratch[:n-lag]
		floats.MulTo(prod, activations[lag:], activations[:n-lag])
		bins[i] = floats.Norm(prod, 1)
	}
}

// DominantInterval returns the lag of the maximum histogram bin after
// optionally smoothing the bins (spec may be nil).
func DominantInterval(h *Histogram, spec smoothing.Spec) (int, error) {
	if h.Len() == 0 {
		return 0, fmt.Errorf("cannot extract dominant interval of an empty histogram")
	}
	if spec != nil {
		smoothed, err := h.Smooth(spec)
		if err != nil {
			return 0, err
		}
		h = smoothed
	}
	return h.Lags[floats.MaxIdx(h.Bins)], nil
}
