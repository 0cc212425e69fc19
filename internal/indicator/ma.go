package indicator

import "math"

// emaSeries calculates an exponential moving average over values, seeded with
// the first value. alpha = 2/(length+1), matching pandas ewm with adjust=False.
func emaSeries(values []float64, length int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(length+1)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}

// rollingMean calculates a simple moving average with the given window.
// Indices before the window is filled are NaN.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0

	for i, value := range values {
		sum += value
		if i >= window {
			sum -= values[i-window]
		}

		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}

	return out
}

// rollingStdDev calculates the rolling sample standard deviation (N-1
// denominator) with the given window. Indices before the window is filled are
// NaN.
func rollingStdDev(values []float64, window int) []float64 {
	out := make([]float64, len(values))

	for i := range values {
		if i < window-1 {
			out[i] = math.NaN()

			continue
		}

		slice := values[i-window+1 : i+1]

		mean := 0.0
		for _, value := range slice {
			mean += value
		}

		mean /= float64(window)

		variance := 0.0
		for _, value := range slice {
			variance += (value - mean) * (value - mean)
		}

		out[i] = math.Sqrt(variance / float64(window-1))
	}

	return out
}
