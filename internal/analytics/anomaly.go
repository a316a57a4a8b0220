package analytics

import "math"

// IsAnomalous reports whether dayAmount exceeds two population standard
// deviations above the mean of the reference values (one-sided: burn spikes
// only, never dips). With fewer than two reference values, or a flat history
// with zero variance, no anomaly can be asserted and the result is false.
func IsAnomalous(dayAmount int64, reference []int64) bool {
	if len(reference) < 2 {
		return false
	}

	n := float64(len(reference))
	var sum float64
	for _, v := range reference {
		sum += float64(v)
	}
	mean := sum / n

	var variance float64
	for _, v := range reference {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= n

	std := math.Sqrt(variance)
	if std == 0 {
		return false
	}

	return float64(dayAmount) > mean+2*std
}
