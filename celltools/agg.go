package celltools

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func Mean(inData ...float64) float64 {
	return stat.Mean(inData, nil)
}

func Sum(inData ...float64) float64 {
	return floats.Sum(inData)
}

func Max(inData ...float64) float64 {
	return floats.Max(inData)
}

func Min(inData ...float64) float64 {
	return floats.Min(inData)
}

// AggFuncByName resolves mean, sum, max or min.
func AggFuncByName(name string) (AggFunc, bool) {
	switch name {
	case "mean":
		return Mean, true
	case "sum":
		return Sum, true
	case "max":
		return Max, true
	case "min":
		return Min, true
	default:
		return nil, false
	}
}
