package bandsio

import (
	"errors"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"s2-spectral/bandtools"
	"s2-spectral/indextools"

	"github.com/airbusgeo/godal"
	"gonum.org/v1/gonum/mat"
)

func TestColormapEndpoints(t *testing.T) {
	for _, name := range ColormapNames() {
		cm, err := ColormapByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := cm.At(-3), cm.stops[0].Color; got != want {
			t.Errorf("%s: below range got %v, want %v", name, got, want)
		}
		if got, want := cm.At(7), cm.stops[len(cm.stops)-1].Color; got != want {
			t.Errorf("%s: above range got %v, want %v", name, got, want)
		}
	}

	gray, _ := ColormapByName("gray")
	if got := gray.At(0.5); got != (color.NRGBA{128, 128, 128, 255}) {
		t.Errorf("gray midpoint = %v", got)
	}
	if _, err := ColormapByName("jet"); err == nil {
		t.Error("expected error for unknown colormap")
	}
	if cm, _ := ColormapByName(""); cm.Name != DefaultColormap {
		t.Errorf("empty name selected %s", cm.Name)
	}
}

func TestCompositionPath(t *testing.T) {
	dir := t.TempDir()
	path, err := CompositionPath(dir, "Natural color")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "Compositions", "Natural color.png"); path != want {
		t.Errorf("got %s, want %s", path, want)
	}
	if info, err := os.Stat(filepath.Join(dir, "Compositions")); err != nil || !info.IsDir() {
		t.Errorf("Compositions folder not created: %v", err)
	}
}

func TestRenderIndex(t *testing.T) {
	values := mat.NewDense(1, 3, []float64{-1, math.NaN(), 1})
	gray, _ := ColormapByName("gray")

	img, vmin, vmax := RenderIndex(values, gray)
	if vmin != -1 || vmax != 1 {
		t.Errorf("got range [%v, %v], want [-1, 1]", vmin, vmax)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("min pixel = %v, want black", got)
	}
	if got := img.NRGBAAt(1, 0); got.A != 0 {
		t.Errorf("NaN pixel = %v, want transparent", got)
	}
	if got := img.NRGBAAt(2, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("max pixel = %v, want white", got)
	}
}

func TestSaveResult(t *testing.T) {
	dir := t.TempDir()
	band := func(v ...float64) *mat.Dense { return mat.NewDense(2, 2, v) }
	coll, err := bandtools.NewCollection(bandtools.Grid{Rows: 2, Cols: 2}, map[string]*mat.Dense{
		"B02": band(0.1, 0.2, 0.3, 0.4),
		"B03": band(0.2, 0.3, 0.4, 0.5),
		"B04": band(0.3, 0.1, 0.6, 0.2),
		"B08": band(0.9, 0.8, 0.7, 1.0),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []int{1, 7} {
		res, err := indextools.ComputeByID(id, coll, indextools.DefaultParams())
		if err != nil {
			t.Fatal(err)
		}
		path, err := CompositionPath(dir, res.Operation.Title)
		if err != nil {
			t.Fatal(err)
		}
		if err := SaveResult(path, res, colormaps[DefaultColormap]); err != nil {
			t.Fatal(err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		b := img.Bounds()
		if res.Composite != nil && (b.Dx() != 2 || b.Dy() != 2) {
			t.Errorf("composite PNG is %dx%d, want 2x2", b.Dx(), b.Dy())
		}
		if res.Index != nil && (b.Dx() <= 2 || b.Dy() <= 2) {
			t.Errorf("index PNG is %dx%d, want room for title and colorbar", b.Dx(), b.Dy())
		}
	}
}

func TestWriteGeoTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndvi.tif")
	grid := bandtools.Grid{
		Rows:         2,
		Cols:         3,
		GeoTransform: [6]float64{500000, 10, 0, 4600000, 0, -10},
	}
	layer := mat.NewDense(2, 3, []float64{1, -1, 0.5, math.NaN(), 0, 0.25})

	if err := WriteGeoTIFF(path, grid, layer); err != nil {
		t.Fatal(err)
	}

	layers, gt := readGeoTIFF(t, path)
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	if gt != grid.GeoTransform {
		t.Errorf("got geotransform %v, want %v", gt, grid.GeoTransform)
	}
	for i, want := range layer.RawMatrix().Data {
		got := layers[0].RawMatrix().Data[i]
		if math.IsNaN(want) != math.IsNaN(got) || (!math.IsNaN(want) && got != want) {
			t.Errorf("pixel %d = %v, want %v", i, got, want)
		}
	}

	err := WriteGeoTIFF(path, grid, mat.NewDense(3, 3, nil))
	if !errors.Is(err, bandtools.ErrShapeMismatch) {
		t.Errorf("got %v, want ErrShapeMismatch", err)
	}
}

func readGeoTIFF(t testing.TB, path string) ([]*mat.Dense, [6]float64) {
	t.Helper()
	ds, err := godal.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			t.Fatal(err)
		}
	}()
	gt, err := ds.GeoTransform()
	if err != nil {
		t.Fatal(err)
	}

	st := ds.Structure()
	var layers []*mat.Dense
	for _, band := range ds.Bands() {
		buf := make([]float64, st.SizeX*st.SizeY)
		if err := band.Read(0, 0, buf, st.SizeX, st.SizeY); err != nil {
			t.Fatal(err)
		}
		layers = append(layers, mat.NewDense(st.SizeY, st.SizeX, buf))
	}
	return layers, gt
}
