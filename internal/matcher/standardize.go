package matcher

import (
	"math"

	"labdiet/internal/domain"
)

// Vector is a profile in feature space.
type Vector = [domain.NumFields]float64

// Scaler holds per-feature population statistics.
type Scaler struct {
	Mean   Vector
	StdDev Vector
}

// FitScaler computes the population mean and standard deviation (ddof 0)
// of every feature.
func FitScaler(rows []Vector) Scaler {
	var s Scaler
	if len(rows) == 0 {
		return s
	}
	n := float64(len(rows))
	for _, r := range rows {
		for j, x := range r {
			s.Mean[j] += x
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, r := range rows {
		for j, x := range r {
			d := x - s.Mean[j]
			s.StdDev[j] += d * d
		}
	}
	for j := range s.StdDev {
		s.StdDev[j] = math.Sqrt(s.StdDev[j] / n)
		// rounding in the mean leaves a constant column with a tiny residual
		if s.StdDev[j] < 1e-12*math.Max(1, math.Abs(s.Mean[j])) {
			s.StdDev[j] = 0
		}
	}
	return s
}

// maxScaled bounds a standardized feature so that a squared distance over
// all features stays finite.
const maxScaled = 1e150

// Transform standardizes v. A feature with zero variance maps to 0 and
// every feature is clamped to [-maxScaled, maxScaled].
func (s Scaler) Transform(v Vector) Vector {
	var out Vector
	for j, x := range v {
		if s.StdDev[j] == 0 {
			continue
		}
		out[j] = clampScaled((x - s.Mean[j]) / s.StdDev[j])
	}
	return out
}

func clampScaled(z float64) float64 {
	switch {
	case math.IsNaN(z):
		return 0
	case z > maxScaled:
		return maxScaled
	case z < -maxScaled:
		return -maxScaled
	}
	return z
}

func sqDist(a, b Vector) float64 {
	var d float64
	for j := range a {
		x := a[j] - b[j]
		d += x * x
	}
	return d
}
