package bandsio

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"s2-spectral/bandtools"
	"s2-spectral/indextools"

	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

const (
	CompositionsDir = "Compositions"

	margin      = 16
	titleHeight = 28
	barWidth    = 18
	barGap      = 12
	labelWidth  = 56
)

// CompositionPath returns <dir>/Compositions/<title>.png, creating the
// Compositions folder.
func CompositionPath(dir, title string) (string, error) {
	out := filepath.Join(dir, CompositionsDir)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(out, title+".png"), nil
}

// SaveResult writes an index or composite result as a PNG.
func SaveResult(path string, res *indextools.Result, cm Colormap) error {
	switch {
	case res.Index != nil:
		return SaveIndex(path, res.Operation.Title, res.Index, cm)
	case res.Composite != nil:
		return SaveComposite(path, res.Composite)
	}
	return fmt.Errorf("%s: empty result", res.Operation.Key)
}

// SaveComposite writes an RGB PNG, clipping channel values to [0, 1].
func SaveComposite(path string, comp *indextools.Composite) error {
	rows, cols := comp.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			img.SetNRGBA(j, i, color.NRGBA{
				R: unitToByte(comp.At(i, j, 0)),
				G: unitToByte(comp.At(i, j, 1)),
				B: unitToByte(comp.At(i, j, 2)),
				A: 255,
			})
		}
	}
	dc := gg.NewContextForImage(img)
	if err := dc.SavePNG(path); err != nil {
		return err
	}
	logrus.Infof("Saved composite to %s", path)
	return nil
}

// SaveIndex writes a titled PNG of an index with a colorbar. Values are
// stretched between the finite minimum and maximum; NaN pixels are left
// transparent.
func SaveIndex(path, title string, values *mat.Dense, cm Colormap) error {
	img, vmin, vmax := RenderIndex(values, cm)
	rows, cols := values.Dims()

	width := margin + cols + barGap + barWidth + labelWidth
	height := titleHeight + rows + margin
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, float64(width)/2, titleHeight/2, 0.5, 0.5)
	dc.DrawImage(img, margin, titleHeight)
	drawColorbar(dc, cm, margin+cols+barGap, titleHeight, rows, vmin, vmax)

	if err := dc.SavePNG(path); err != nil {
		return err
	}
	logrus.Infof("Saved %s to %s", title, path)
	return nil
}

// RenderIndex maps values through cm and returns the image together with the
// value range used for the stretch.
func RenderIndex(values *mat.Dense, cm Colormap) (*image.NRGBA, float64, float64) {
	rows, cols := values.Dims()
	vmin, vmax := finiteRange(values)
	span := vmax - vmin

	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := values.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			t := 0.5
			if span > 0 {
				t = (v - vmin) / span
			}
			img.SetNRGBA(j, i, cm.At(t))
		}
	}
	return img, vmin, vmax
}

func drawColorbar(dc *gg.Context, cm Colormap, x, y, height int, vmin, vmax float64) {
	for k := 0; k < height; k++ {
		t := 1 - float64(k)/math.Max(1, float64(height-1))
		c := cm.At(t)
		dc.SetColor(c)
		dc.DrawRectangle(float64(x), float64(y+k), barWidth, 1)
		dc.Fill()
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(float64(x), float64(y), barWidth, float64(height))
	dc.Stroke()

	lx := float64(x + barWidth + 4)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", vmax), lx, float64(y), 0, 1)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", (vmin+vmax)/2), lx, float64(y)+float64(height)/2, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", vmin), lx, float64(y+height), 0, 0)
}

func finiteRange(values *mat.Dense) (float64, float64) {
	data := values.RawMatrix().Data
	vmax, ok := bandtools.MaxFinite(data)
	if !ok {
		return 0, 0
	}
	vmin := vmax
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v < vmin {
			vmin = v
		}
	}
	return vmin, vmax
}

func unitToByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
