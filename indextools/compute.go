package indextools

import (
	"fmt"
	"math"

	"s2-spectral/bandtools"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const DefaultAlpha = 1.5

// BandSource looks up band rasters by identifier. *bandtools.Collection
// implements it.
type BandSource interface {
	Band(id string) (*mat.Dense, error)
}

type Params struct {
	// Alpha scales composites; lower is darker.
	Alpha float64
}

func DefaultParams() Params {
	return Params{Alpha: DefaultAlpha}
}

// Composite is an H x W x 3 stack of scaled bands.
type Composite struct {
	Channels [3]*mat.Dense
}

func (c *Composite) Dims() (rows, cols int) {
	return c.Channels[0].Dims()
}

func (c *Composite) At(row, col, channel int) float64 {
	return c.Channels[channel].At(row, col)
}

// Result holds the output of one operation: Index for index operations,
// Composite for composites. NonFinite counts index pixels set to NaN because
// their formula had no finite value, e.g. a zero denominator.
type Result struct {
	Operation Operation
	Index     *mat.Dense
	Composite *Composite
	NonFinite int
}

type Summary struct {
	Min       float64
	Max       float64
	Mean      float64
	NonFinite int
}

// Summary reports statistics over the finite values of the result.
func (r *Result) Summary() Summary {
	var values []float64
	if r.Index != nil {
		values = finite(r.Index.RawMatrix().Data)
	} else if r.Composite != nil {
		for _, ch := range r.Composite.Channels {
			values = append(values, finite(ch.RawMatrix().Data)...)
		}
	}
	s := Summary{NonFinite: r.NonFinite}
	if len(values) == 0 {
		return s
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean = stat.Mean(values, nil)
	return s
}

func finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Compute runs op over the bands. Every band the operation needs is looked up
// before any pixel is computed.
func Compute(op Operation, bands BandSource, params Params) (*Result, error) {
	logrus.Debugf("Entered Compute %s", op.Key)
	if op.Kind == KindIndex && (op.Formula == nil || len(op.Bands) < 2 || len(op.Bands) > 4) {
		return nil, &UnsupportedOperationError{Op: op.Key}
	}
	if op.Kind == KindComposite && len(op.Bands) != 3 {
		return nil, &UnsupportedOperationError{Op: op.Key}
	}

	inputs, err := selectBands(op, bands)
	if err != nil {
		return nil, err
	}

	switch op.Kind {
	case KindComposite:
		return &Result{Operation: op, Composite: stack(inputs, params.Alpha)}, nil
	case KindIndex:
		index, nonFinite, err := applyFormula(op, inputs)
		if err != nil {
			return nil, err
		}
		if nonFinite > 0 {
			logrus.Warnf("%s: %d pixels have no finite value", op.Key, nonFinite)
		}
		return &Result{Operation: op, Index: index, NonFinite: nonFinite}, nil
	}
	return nil, &UnsupportedOperationError{Op: op.Key}
}

// ComputeByID resolves the operation ID before touching any raster data.
func ComputeByID(id int, bands BandSource, params Params) (*Result, error) {
	op, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	return Compute(op, bands, params)
}

func selectBands(op Operation, bands BandSource) ([]*mat.Dense, error) {
	inputs := make([]*mat.Dense, len(op.Bands))
	for i, id := range op.Bands {
		band, err := bands.Band(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.Key, err)
		}
		inputs[i] = band
	}
	rows, cols := inputs[0].Dims()
	for i, band := range inputs[1:] {
		if r, c := band.Dims(); r != rows || c != cols {
			return nil, fmt.Errorf("%s: %w: %s is %dx%d, %s is %dx%d", op.Key, bandtools.ErrShapeMismatch,
				op.Bands[0], rows, cols, op.Bands[i+1], r, c)
		}
	}
	return inputs, nil
}

func stack(inputs []*mat.Dense, alpha float64) *Composite {
	var c Composite
	for i, band := range inputs {
		rows, cols := band.Dims()
		ch := mat.NewDense(rows, cols, nil)
		ch.Scale(alpha, band)
		c.Channels[i] = ch
	}
	return &c
}

// applyFormula evaluates the formula per pixel, turns non-finite pixels into
// NaN and divides the result by its largest finite absolute value.
func applyFormula(op Operation, inputs []*mat.Dense) (*mat.Dense, int, error) {
	rows, cols := inputs[0].Dims()
	out := mat.NewDense(rows, cols, nil)
	px := make([]float64, len(inputs))
	var nonFinite int
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			for k, band := range inputs {
				px[k] = band.At(i, j)
			}
			v := op.Formula(px...)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = math.NaN()
				nonFinite++
			}
			out.Set(i, j, v)
		}
	}

	max, ok := bandtools.MaxAbsFinite(out.RawMatrix().Data)
	if !ok || max == 0 {
		return nil, nonFinite, &bandtools.DegenerateNormalizationError{Subject: op.Key}
	}
	out.Apply(func(_, _ int, v float64) float64 { return v / max }, out)
	return out, nonFinite, nil
}
