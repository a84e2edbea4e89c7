package bandtools

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Grid describes the common pixel grid every band of a Collection is
// resampled onto.
type Grid struct {
	Rows         int
	Cols         int
	GeoTransform [6]float64
	Projection   string
}

// Georeferenced reports whether the grid carries a usable geotransform.
func (g Grid) Georeferenced() bool {
	return g.GeoTransform[1] != 0 && g.GeoTransform[5] != 0
}

// PixelCenter returns the georeferenced coordinates of the centre of a pixel.
// GDAL is row-major, x grows with col and y with row.
func (g Grid) PixelCenter(row, col int) (x, y float64) {
	gt := g.GeoTransform
	fc := float64(col) + 0.5
	fr := float64(row) + 0.5
	x = gt[0] + fc*gt[1] + fr*gt[2]
	y = gt[3] + fc*gt[4] + fr*gt[5]
	return x, y
}

// Collection maps band identifiers to rasters sharing one grid. It is
// read-only once built.
type Collection struct {
	Grid  Grid
	bands map[string]*mat.Dense
}

// NewCollection builds a Collection from already aligned rasters. All bands
// must share one shape.
func NewCollection(grid Grid, bands map[string]*mat.Dense) (*Collection, error) {
	out := make(map[string]*mat.Dense, len(bands))
	for id, band := range bands {
		r, c := band.Dims()
		if r != grid.Rows || c != grid.Cols {
			return nil, fmt.Errorf("%w: band %s is %dx%d, grid is %dx%d",
				ErrShapeMismatch, id, r, c, grid.Rows, grid.Cols)
		}
		out[id] = band
	}
	return &Collection{Grid: grid, bands: out}, nil
}

// Band returns the raster for a band identifier.
func (c *Collection) Band(id string) (*mat.Dense, error) {
	band, ok := c.bands[id]
	if !ok {
		return nil, &MissingBandError{Band: id}
	}
	return band, nil
}

// IDs returns the band identifiers in sorted order.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.bands))
	for id := range c.bands {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Collection) Len() int {
	return len(c.bands)
}

// BandIDFromFilename derives the band identifier from the last two characters
// before the extension, e.g. "T31TCJ_20230611_B8A.tif" -> "B8A".
func BandIDFromFilename(name string) (string, error) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if len(stem) < 2 {
		return "", fmt.Errorf("cannot derive band identifier from %q", name)
	}
	return "B" + strings.ToUpper(stem[len(stem)-2:]), nil
}

// BandNumber returns the numeric part of a band identifier. "B8A" is band 8.
func BandNumber(id string) (int, error) {
	digits := strings.TrimPrefix(id, "B")
	digits = strings.TrimSuffix(digits, "A")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid band identifier %q", id)
	}
	return n, nil
}
