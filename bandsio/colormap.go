package bandsio

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"
)

const DefaultColormap = "viridis"

type colorStop struct {
	Pos   float64
	Color color.NRGBA
}

// Colormap maps a position in [0, 1] to a colour by linear interpolation
// between stops.
type Colormap struct {
	Name  string
	stops []colorStop
}

var colormaps = map[string]Colormap{
	"viridis": {Name: "viridis", stops: []colorStop{
		{0.00, color.NRGBA{68, 1, 84, 255}},
		{0.25, color.NRGBA{59, 82, 139, 255}},
		{0.50, color.NRGBA{33, 145, 140, 255}},
		{0.75, color.NRGBA{94, 201, 98, 255}},
		{1.00, color.NRGBA{253, 231, 37, 255}},
	}},
	"gray": {Name: "gray", stops: []colorStop{
		{0, color.NRGBA{0, 0, 0, 255}},
		{1, color.NRGBA{255, 255, 255, 255}},
	}},
	// Index values -1, -0.2, 0, 0.5, 1 mapped onto [0, 1].
	"ndvi": {Name: "ndvi", stops: []colorStop{
		{0.00, color.NRGBA{0, 0, 128, 255}},
		{0.40, color.NRGBA{65, 105, 225, 255}},
		{0.50, color.NRGBA{255, 0, 0, 255}},
		{0.75, color.NRGBA{255, 255, 0, 255}},
		{1.00, color.NRGBA{0, 128, 0, 255}},
	}},
}

// ColormapByName returns a registered colormap. An empty name selects the
// default.
func ColormapByName(name string) (Colormap, error) {
	if name == "" {
		name = DefaultColormap
	}
	cm, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return Colormap{}, fmt.Errorf("unknown colormap %q, choose from: %s", name, strings.Join(ColormapNames(), ", "))
	}
	return cm, nil
}

func ColormapNames() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// At returns the colour at t, clamped to [0, 1].
func (c Colormap) At(t float64) color.NRGBA {
	stops := c.stops
	if t <= stops[0].Pos || math.IsNaN(t) {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Pos {
		return last.Color
	}
	i := sort.Search(len(stops), func(i int) bool { return stops[i].Pos > t }) - 1
	p1, p2 := stops[i], stops[i+1]
	f := (t - p1.Pos) / (p2.Pos - p1.Pos)
	return color.NRGBA{
		R: lerp(p1.Color.R, p2.Color.R, f),
		G: lerp(p1.Color.G, p2.Color.G, f),
		B: lerp(p1.Color.B, p2.Color.B, f),
		A: 255,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + f*(float64(b)-float64(a)) + 0.5)
}
