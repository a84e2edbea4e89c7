package celltools

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"s2-spectral/bandtools"

	"github.com/airbusgeo/godal"
	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var ErrNotGeoreferenced = errors.New("grid has no geotransform")

type ConfigOpts struct {
	NumWorkers int
	S2Lvl      int
	AggFunc    AggFunc
	// BlockRows is the number of grid rows handed to a worker at once.
	BlockRows int
}

func (o ConfigOpts) withDefaults() ConfigOpts {
	if o.NumWorkers < 1 {
		o.NumWorkers = runtime.NumCPU()
	}
	if o.AggFunc == nil {
		o.AggFunc = Mean
	}
	if o.BlockRows < 1 {
		o.BlockRows = 64
	}
	return o
}

type S2CellData struct {
	Cell       s2.CellID
	Data       float64
	GeomString string
}

func (c S2CellData) String() string {
	return fmt.Sprintf("%v;%v;%s", int64(c.Cell), c.Data, c.GeomString)
}

type S2CellGeom struct {
	cell s2.CellID
	geom string
}

type AggFunc func(...float64) float64

// GridContainer pairs index values with the grid they lie on.
type GridContainer struct {
	Values *mat.Dense
	Grid   bandtools.Grid
	proj   *projector
}

// A block is a horizontal strip of the grid.
type block struct {
	Row0 int
	Rows int
}

// IndexToS2 aggregates every finite pixel of values onto the S2 cell at
// opts.S2Lvl containing its centre. Results are sorted by cell ID.
func IndexToS2(values *mat.Dense, grid bandtools.Grid, opts ConfigOpts) (out []S2CellData, err error) {
	logrus.Debug("Entered IndexToS2")
	opts = opts.withDefaults()
	if !grid.Georeferenced() {
		return nil, ErrNotGeoreferenced
	}
	if r, c := values.Dims(); r != grid.Rows || c != grid.Cols {
		return nil, fmt.Errorf("%w: values are %dx%d, grid is %dx%d", bandtools.ErrShapeMismatch, r, c, grid.Rows, grid.Cols)
	}
	if opts.S2Lvl < 0 || opts.S2Lvl > s2.MaxLevel {
		return nil, fmt.Errorf("S2 level %d outside [0, %d]", opts.S2Lvl, s2.MaxLevel)
	}

	proj, err := newProjector(grid.Projection)
	if err != nil {
		return nil, err
	}
	defer proj.Close()

	container := &GridContainer{Values: values, Grid: grid, proj: proj}

	done := make(chan struct{})
	defer close(done)

	blocks := genBlocks(container, opts.BlockRows, done)
	resCh, firstErr := processBlocks(container, blocks, opts)
	resMap := groupByCell(resCh)
	if err := firstErr(); err != nil {
		return nil, err
	}

	out = aggCellResults(resMap, opts.AggFunc)
	logrus.Debug("Exited IndexToS2")
	return out, nil
}

// Produce row blocks to be consumed downstream. Production is serial, the
// work is in the consumers.
func genBlocks(grid *GridContainer, blockRows int, done <-chan struct{}) <-chan block {
	blocks := make(chan block)
	rows := grid.Grid.Rows
	go func() {
		defer close(blocks)
		for row := 0; row < rows; row += blockRows {
			b := block{Row0: row, Rows: min(blockRows, rows-row)}
			select {
			case blocks <- b:
			case <-done:
				return
			}
		}
	}()
	return blocks
}

// processBlocks fans blocks out to opts.NumWorkers workers. The returned
// function reports the first worker error once the result channel is drained.
func processBlocks(grid *GridContainer, blocks <-chan block, opts ConfigOpts) (<-chan S2CellData, func() error) {
	logrus.Debug("Entered processBlocks")
	resCh := make(chan S2CellData, grid.Grid.Cols*opts.BlockRows)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	wg.Add(opts.NumWorkers)
	for i := 0; i < opts.NumWorkers; i++ {
		go func() {
			defer wg.Done()
			for b := range blocks {
				logrus.Debugf("Processing rows [%d, %d)", b.Row0, b.Row0+b.Rows)
				if err := gridBlockToS2(grid, b, opts, resCh); err != nil {
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()

	return resCh, func() error { return firstErr }
}

func gridBlockToS2(grid *GridContainer, b block, opts ConfigOpts, resCh chan<- S2CellData) error {
	cols := grid.Grid.Cols
	xs := make([]float64, cols)
	ys := make([]float64, cols)
	for row := b.Row0; row < b.Row0+b.Rows; row++ {
		for col := 0; col < cols; col++ {
			xs[col], ys[col] = grid.Grid.PixelCenter(row, col)
		}
		if err := grid.proj.toLngLat(xs, ys); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}

		for col := 0; col < cols; col++ {
			value := grid.Values.At(row, col)
			if math.IsNaN(value) {
				continue
			}
			latLng := s2.LatLngFromDegrees(ys[col], xs[col])
			s2Cell := s2.CellIDFromLatLng(latLng).Parent(opts.S2Lvl)
			resCh <- S2CellData{s2Cell, value, cellToWKT(s2.CellFromCellID(s2Cell))}
		}
	}
	return nil
}

func groupByCell(resCh <-chan S2CellData) map[S2CellGeom][]float64 {
	logrus.Debug("Entered groupByCell")
	outMap := make(map[S2CellGeom][]float64)
	for cellData := range resCh {
		cellGeom := S2CellGeom{cellData.Cell, cellData.GeomString}
		outMap[cellGeom] = append(outMap[cellGeom], cellData.Data)
	}
	logrus.Debug("Exited groupByCell")
	return outMap
}

func aggCellResults(resMap map[S2CellGeom][]float64, aggFunc AggFunc) []S2CellData {
	aggResults := make([]S2CellData, 0, len(resMap))
	for cellGeom, values := range resMap {
		// Workers finish in any order, sorting keeps sums reproducible.
		sort.Float64s(values)
		aggResults = append(aggResults, S2CellData{cellGeom.cell, aggFunc(values...), cellGeom.geom})
	}
	sort.Slice(aggResults, func(i, j int) bool { return aggResults[i].Cell < aggResults[j].Cell })
	return aggResults
}

// projector moves grid coordinates to WGS84 longitude/latitude. A grid
// without a projection is taken to be in degrees already.
type projector struct {
	src *godal.SpatialRef
	dst *godal.SpatialRef
	trn *godal.Transform
	// GDAL coordinate transformations are not safe for concurrent use.
	mu sync.Mutex
}

func newProjector(wkt string) (*projector, error) {
	if wkt == "" {
		logrus.Warn("Grid has no projection, treating coordinates as WGS84 degrees")
		return &projector{}, nil
	}
	src, err := godal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		return nil, err
	}
	dst, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		src.Close()
		return nil, err
	}
	trn, err := godal.NewTransform(src, dst)
	if err != nil {
		src.Close()
		dst.Close()
		return nil, err
	}
	return &projector{src: src, dst: dst, trn: trn}, nil
}

func (p *projector) toLngLat(xs, ys []float64) error {
	if p.trn == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	zs := make([]float64, len(xs))
	ok := make([]bool, len(xs))
	if err := p.trn.TransformEx(xs, ys, zs, ok); err != nil {
		return err
	}
	for i := range ok {
		if !ok[i] {
			return fmt.Errorf("cannot reproject pixel %d to WGS84", i)
		}
	}
	return nil
}

func (p *projector) Close() {
	if p.trn != nil {
		p.trn.Close()
	}
	if p.src != nil {
		p.src.Close()
	}
	if p.dst != nil {
		p.dst.Close()
	}
}
