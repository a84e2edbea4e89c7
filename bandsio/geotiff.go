package bandsio

import (
	"errors"
	"fmt"
	"math"

	"s2-spectral/bandtools"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// WriteGeoTIFF writes one Float64 band per layer on the given grid. NaN is
// declared as nodata.
func WriteGeoTIFF(path string, grid bandtools.Grid, layers ...*mat.Dense) (err error) {
	if len(layers) == 0 {
		return fmt.Errorf("%s: no layers to write", path)
	}
	for i, layer := range layers {
		if r, c := layer.Dims(); r != grid.Rows || c != grid.Cols {
			return fmt.Errorf("%w: layer %d is %dx%d, grid is %dx%d",
				bandtools.ErrShapeMismatch, i, r, c, grid.Rows, grid.Cols)
		}
	}
	bandtools.RegisterDrivers()

	ds, err := godal.Create(godal.GTiff, path, len(layers), godal.Float64, grid.Cols, grid.Rows,
		godal.CreationOption("COMPRESS=DEFLATE", "TILED=YES"))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	if grid.Georeferenced() {
		if err := ds.SetGeoTransform(grid.GeoTransform); err != nil {
			return err
		}
	}
	if grid.Projection != "" {
		if err := ds.SetProjection(grid.Projection); err != nil {
			return err
		}
	}

	bands := ds.Bands()
	for i, layer := range layers {
		if err := bands[i].SetNoData(math.NaN()); err != nil {
			return err
		}
		buf := mat.DenseCopyOf(layer).RawMatrix().Data
		if err := bands[i].Write(0, 0, buf, grid.Cols, grid.Rows); err != nil {
			return err
		}
	}
	logrus.Infof("Wrote %d band GeoTIFF to %s", len(layers), path)
	return nil
}
