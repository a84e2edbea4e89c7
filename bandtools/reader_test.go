package bandtools

import (
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"gonum.org/v1/gonum/mat"
)

func TestGDALReaderResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "T31_B11.tif")
	setUpRaster(t, path, 2, 2, []float64{1, 2, 3, 4})

	h, err := NewGDALReader().Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := h.Close(); err != nil {
			t.Fatal(err)
		}
	}()

	rows, cols := h.Size()
	if rows != 2 || cols != 2 {
		t.Fatalf("got size %dx%d, want 2x2", rows, cols)
	}
	band, err := h.Read(1, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if r, c := band.Dims(); r != 4 || c != 4 {
		t.Errorf("got %dx%d, want 4x4", r, c)
	}

	if _, err := h.Read(2, 4, 4); err == nil {
		t.Error("expected error reading band 2 of a single-band raster")
	}
}

func TestLoadWithGDAL(t *testing.T) {
	dir := t.TempDir()
	setUpRaster(t, filepath.Join(dir, "T31_B04.tif"), 4, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	setUpRaster(t, filepath.Join(dir, "T31_B11.tif"), 2, 2, []float64{1, 2, 3, 4})

	coll, err := Load(dir, LoadOpts{NumWorkers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if coll.Grid.Rows != 4 || coll.Grid.Cols != 4 {
		t.Errorf("got grid %dx%d, want 4x4", coll.Grid.Rows, coll.Grid.Cols)
	}
	for _, id := range []string{"B04", "B11"} {
		band, err := coll.Band(id)
		if err != nil {
			t.Fatal(err)
		}
		if r, c := band.Dims(); r != 4 || c != 4 {
			t.Errorf("band %s is %dx%d, want 4x4", id, r, c)
		}
		if max := mat.Max(band); max != 1 {
			t.Errorf("band %s max = %v, want 1", id, max)
		}
	}
	if got := coll.Grid.GeoTransform[1]; got != 10 {
		t.Errorf("got pixel width %v, want 10", got)
	}
}

func setUpRaster(t testing.TB, path string, width, height int, values []float64) {
	t.Helper()
	RegisterDrivers()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, width, height)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.SetGeoTransform([6]float64{500000, 10, 0, 4600000, 0, -10}); err != nil {
		t.Fatal(err)
	}
	if err := ds.Bands()[0].Write(0, 0, values, width, height); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
}
