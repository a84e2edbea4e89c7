package indextools

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindComposite Kind = iota
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Formula computes one index pixel from the values of an operation's bands,
// in the order the operation declares them.
type Formula func(b ...float64) float64

// Operation is one entry of the catalog. IDs follow the numbering users pick
// from: composites 1-6, indices 7-22.
type Operation struct {
	ID      int
	Key     string
	Title   string
	Kind    Kind
	Bands   []string
	Formula Formula
}

var catalog = []Operation{
	{ID: 1, Key: "natural_color", Title: "Natural color", Kind: KindComposite, Bands: []string{"B04", "B03", "B02"}},
	{ID: 2, Key: "infrared", Title: "False infrared", Kind: KindComposite, Bands: []string{"B08", "B04", "B03"}},
	{ID: 3, Key: "shortwave_ir", Title: "Short wave infrared", Kind: KindComposite, Bands: []string{"B12", "B8A", "B04"}},
	{ID: 4, Key: "agriculture", Title: "Agriculture", Kind: KindComposite, Bands: []string{"B11", "B08", "B02"}},
	{ID: 5, Key: "geology", Title: "Geology", Kind: KindComposite, Bands: []string{"B12", "B11", "B02"}},
	{ID: 6, Key: "bathymetric", Title: "Bathymetric", Kind: KindComposite, Bands: []string{"B04", "B03", "B01"}},

	{ID: 7, Key: "ndvi", Title: "Normalized Difference Vegetation Index", Kind: KindIndex, Bands: []string{"B08", "B04"}, Formula: NormalizedDifference},
	{ID: 8, Key: "ndmi", Title: "Normalized Difference Moisture Index", Kind: KindIndex, Bands: []string{"B8A", "B11"}, Formula: NormalizedDifference},
	{ID: 9, Key: "gndvi", Title: "Green Normalized Difference Vegetation Index", Kind: KindIndex, Bands: []string{"B08", "B03"}, Formula: NormalizedDifference},
	{ID: 10, Key: "evi", Title: "Enhanced Vegetation Index", Kind: KindIndex, Bands: []string{"B08", "B04", "B02"}, Formula: EVI},
	{ID: 11, Key: "avi", Title: "Advanced Vegetation Index", Kind: KindIndex, Bands: []string{"B08", "B04"}, Formula: AVI},
	{ID: 12, Key: "savi", Title: "Soil Adjusted Vegetation Index", Kind: KindIndex, Bands: []string{"B08", "B04"}, Formula: SAVI},
	{ID: 13, Key: "wsi", Title: "Water Stress Index", Kind: KindIndex, Bands: []string{"B11", "B08"}, Formula: WSI},
	{ID: 14, Key: "gci", Title: "Green Coverage Index", Kind: KindIndex, Bands: []string{"B09", "B03"}, Formula: GCI},
	{ID: 15, Key: "nbri", Title: "Normalized Burned Ratio Index", Kind: KindIndex, Bands: []string{"B08", "B12"}, Formula: NormalizedDifference},
	{ID: 16, Key: "bsi", Title: "Bare Soil Index", Kind: KindIndex, Bands: []string{"B11", "B04", "B08", "B02"}, Formula: BSI},
	{ID: 17, Key: "ndwi", Title: "Normalized Differential Water Index", Kind: KindIndex, Bands: []string{"B03", "B08"}, Formula: NormalizedDifference},
	{ID: 18, Key: "ndsi", Title: "Normalized Differential Snow Index", Kind: KindIndex, Bands: []string{"B03", "B11"}, Formula: NormalizedDifference},
	{ID: 19, Key: "ndgi", Title: "Normalized Differential Glacier Index", Kind: KindIndex, Bands: []string{"B03", "B04"}, Formula: NormalizedDifference},
	{ID: 20, Key: "arvi", Title: "Atmospherically Resistant Vegetation Index", Kind: KindIndex, Bands: []string{"B08", "B04", "B02"}, Formula: ARVI},
	{ID: 21, Key: "sipi", Title: "Structure Insensitive Pigmentation Index", Kind: KindIndex, Bands: []string{"B08", "B02", "B04"}, Formula: SIPI},
	{ID: 22, Key: "bndi", Title: "Built-up Normalized Difference Index", Kind: KindIndex, Bands: []string{"B11", "B08"}, Formula: NormalizedDifference},
}

// Catalog returns a copy of every supported operation, ordered by ID.
func Catalog() []Operation {
	out := make([]Operation, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup resolves an operation by its numeric ID.
func Lookup(id int) (Operation, error) {
	for _, op := range catalog {
		if op.ID == id {
			return op, nil
		}
	}
	return Operation{}, &UnsupportedOperationError{Op: strconv.Itoa(id)}
}

// LookupKey resolves an operation by key, case-insensitively.
func LookupKey(key string) (Operation, error) {
	want := strings.ToLower(strings.TrimSpace(key))
	for _, op := range catalog {
		if op.Key == want {
			return op, nil
		}
	}
	return Operation{}, &UnsupportedOperationError{Op: key}
}

// Resolve accepts either a numeric ID or a key.
func Resolve(ref string) (Operation, error) {
	if id, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		return Lookup(id)
	}
	return LookupKey(ref)
}

// UnsupportedOperationError is returned for anything outside the catalog and
// for operations whose band list does not fit their kind.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %q", e.Op)
}
