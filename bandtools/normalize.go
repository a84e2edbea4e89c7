package bandtools

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NormalizeByMax divides m in place by its own maximum. Dividing rather than
// scaling by the reciprocal keeps the maximum pixel at exactly 1.
func NormalizeByMax(m *mat.Dense, subject string) error {
	max, ok := MaxFinite(m.RawMatrix().Data)
	if !ok || max == 0 {
		return &DegenerateNormalizationError{Subject: subject}
	}
	m.Apply(func(_, _ int, v float64) float64 { return v / max }, m)
	return nil
}

// MaxFinite returns the largest finite value of data. ok is false when data
// holds no finite value.
func MaxFinite(data []float64) (max float64, ok bool) {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok || v > max {
			max = v
			ok = true
		}
	}
	return max, ok
}

// MaxAbsFinite returns the largest finite absolute value of data.
func MaxAbsFinite(data []float64) (max float64, ok bool) {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if a := math.Abs(v); !ok || a > max {
			max = a
			ok = true
		}
	}
	return max, ok
}
