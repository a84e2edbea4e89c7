package bandtools

import (
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"
	"gonum.org/v1/gonum/mat"
)

// RasterReader opens single-band raster files.
type RasterReader interface {
	Open(path string) (RasterHandle, error)
}

// RasterHandle is an open raster. Read resamples the full extent of a 1-based
// band onto a rows x cols buffer.
type RasterHandle interface {
	Size() (rows, cols int)
	Read(band, rows, cols int) (*mat.Dense, error)
	GeoTransform() ([6]float64, error)
	Projection() string
	Close() error
}

var registerOnce sync.Once

// RegisterDrivers registers the GDAL drivers once per process.
func RegisterDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

// GDALReader reads rasters through GDAL, resampling with Resampling on
// every read whose output shape differs from the file.
type GDALReader struct {
	Resampling godal.ResamplingAlg
}

// NewGDALReader returns a reader using cubic resampling.
func NewGDALReader() *GDALReader {
	return &GDALReader{Resampling: godal.Cubic}
}

func (r *GDALReader) Open(path string) (RasterHandle, error) {
	RegisterDrivers()
	ds, err := godal.Open(path)
	if err != nil {
		return nil, err
	}
	return &gdalHandle{ds: ds, resampling: r.Resampling}, nil
}

type gdalHandle struct {
	ds         *godal.Dataset
	resampling godal.ResamplingAlg
}

func (h *gdalHandle) Size() (int, int) {
	st := h.ds.Structure()
	return st.SizeY, st.SizeX
}

func (h *gdalHandle) Read(band, rows, cols int) (*mat.Dense, error) {
	bands := h.ds.Bands()
	if band < 1 || band > len(bands) {
		return nil, fmt.Errorf("invalid band index: %d", band)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid output shape %dx%d", rows, cols)
	}
	st := h.ds.Structure()
	buf := make([]float64, rows*cols)
	err := bands[band-1].Read(0, 0, buf, cols, rows,
		godal.Window(st.SizeX, st.SizeY),
		godal.Resampling(h.resampling),
	)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(rows, cols, buf), nil
}

func (h *gdalHandle) GeoTransform() ([6]float64, error) {
	return h.ds.GeoTransform()
}

func (h *gdalHandle) Projection() string {
	return h.ds.Projection()
}

func (h *gdalHandle) Close() error {
	return h.ds.Close()
}
