package scoring

import "math"

// NormalizeToTen rescales a numeric column into [0, 10]. Non-finite values
// are zeroed before the range is computed. A constant column maps entirely
// to 5.0, signalling that the indicator carries no discriminating
// information. With invert set, lower raw values score higher.
func NormalizeToTen(values []float64, invert bool) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	clean := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			clean[i] = 0
		} else {
			clean[i] = v
		}
	}

	vmin, vmax := clean[0], clean[0]
	for _, v := range clean[1:] {
		if v < vmin {
			vmin = v
		}
		if v > vmax {
			vmax = v
		}
	}

	if isClose(vmax, vmin) {
		for i := range out {
			out[i] = 5.0
		}
		return out
	}

	for i, v := range clean {
		norm := (v - vmin) / (vmax - vmin)
		if invert {
			norm = 1 - norm
		}
		out[i] = Clamp(norm*10.0, 0.0, 10.0)
	}
	return out
}

// isClose compares within floating tolerance (absolute 1e-8, relative 1e-5).
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}

// Clamp bounds value to [minimum, maximum].
func Clamp(value, minimum, maximum float64) float64 {
	return math.Max(minimum, math.Min(value, maximum))
}

// round2 rounds to two decimals for persisted score fields.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
