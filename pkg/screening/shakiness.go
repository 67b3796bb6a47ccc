package screening

import "math"

// ShakinessScore reduces a recording to its population standard deviation
// of amplitude, scaled by 1000. A steady "Ahhh" has low variance; a shaky
// voice varies more.
func ShakinessScore(samples []float32) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}
	return stdDev(samples) * 1000, nil
}

// stdDev is the population (ddof=0) standard deviation.
func stdDev(samples []float32) float64 {
	n := float64(len(samples))

	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / n

	var sq float64
	for _, s := range samples {
		d := float64(s) - mean
		sq += d * d
	}
	return math.Sqrt(sq / n)
}
