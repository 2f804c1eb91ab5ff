package periodicity

import (
	"sort"
)

// FindPeaks returns the indices of the local maxima of bins in ascending
// index order. The comparison is circular: the first and last elements are
// also compared against each other, so a maximum sitting at either end of
// the lag range is not missed. A peak must be strictly greater than both
// neighbors; equal-valued plateaus never form a peak, which makes the
// result deterministic for tied bins. Fewer than 2 bins yield no peaks.
func FindPeaks(bins []float64) []int {
	n := len(bins)
	if n < 2 {
		return []int{}
	}

	peaks := []int{}
	for i := range bins {
		prev := bins[(i+n-1)%n]
		next := bins[(i+1)%n]
		if bins[i] > prev && bins[i] > next {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// RankPeaks orders peak indices by descending bin magnitude; this order,
// not lag order, determines dominance. Peaks with equal magnitude keep
// their ascending lag order, so the lower lag ranks first.
func RankPeaks(peaks []int, bins []float64) []int {
	ranked := make([]int, len(peaks))
	copy(ranked, peaks)
	sort.SliceStable(ranked, func(i, j int) bool {
		return bins[ranked[i]] > bins[ranked[j]]
	})
	return ranked
}
