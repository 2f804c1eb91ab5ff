package tempo

import (
	"math"
	"sort"
)

// wholeEps is the tolerance used when checking whether a rounded log-ratio
// landed on a whole number.
const wholeEps = 1e-9

// groupTempi re-ranks magnitude-ranked peaks by consolidating harmonically
// related tempi. An autocorrelation peak at lag L and a weaker one at 2L or
// 3L usually are the same tempo perceived at a different subdivision, so
// picking the two strongest raw peaks can report the same tempo twice.
//
// Each peak aggregates its own bin magnitude plus that of every
// equal-or-slower peak whose tempo ratio is within dev of a power of 2
// (double-time) or 3 (triple-time) in log space; the two relations are
// combined element-wise by maximum and the peaks re-ranked by the combined
// strength. Collecting evidence only from slower readings promotes the
// faster reading of a tempo family once its subdivisions dominate, and
// leaves the ranking unchanged when no peaks are harmonically related.
//
// ranked holds histogram indices ordered by descending bin magnitude; the
// returned slice holds the same indices in the consolidated order.
func groupTempi(ranked []int, bins, tempi []float64, dev float64) []int {
	k := len(ranked)
	if k < 2 {
		return ranked
	}

	t := make([]float64, k)
	w := make([]float64, k)
	for i, idx := range ranked {
		t[i] = tempi[idx]
		w[i] = bins[idx]
	}

	double := harmonicStrengths(t, w, dev, math.Ln2)
	triple := harmonicStrengths(t, w, dev, math.Log(3))

	combined := make([]float64, k)
	for i := range combined {
		combined[i] = math.Max(double[i], triple[i])
	}

	// stable sort: equally strong peaks keep their magnitude order
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return combined[order[a]] > combined[order[b]]
	})

	regrouped := make([]int, k)
	for i, p := range order {
		regrouped[i] = ranked[p]
	}
	return regrouped
}

// harmonicStrengths computes, for every peak, the total bin magnitude of
// the equal-or-slower peaks related to it by a whole power of the base
// (ratio within dev of that power in log space). The peak itself always
// contributes (ratio 1), so an unrelated peak keeps its own magnitude.
func harmonicStrengths(t, w []float64, dev, logBase float64) []float64 {
	strengths := make([]float64, len(t))
	for i := range t {
		total := 0.0
		for j := range t {
			if t[j] > t[i] {
				continue
			}
			ratio := math.Log(t[i]/t[j]) / logBase
			rounded := math.Round(ratio/dev) * dev
			if math.Abs(rounded-math.Round(rounded)) < wholeEps {
				total += w[j]
			}
		}
		strengths[i] = total
	}
	return strengths
}
