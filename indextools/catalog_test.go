package indextools

import (
	"errors"
	"math"
	"testing"
)

func TestCatalog(t *testing.T) {
	ops := Catalog()
	if len(ops) != 22 {
		t.Fatalf("got %d operations, want 22", len(ops))
	}
	keys := make(map[string]bool)
	for i, op := range ops {
		if op.ID != i+1 {
			t.Errorf("operation %s has ID %d, want %d", op.Key, op.ID, i+1)
		}
		if keys[op.Key] {
			t.Errorf("duplicate key %s", op.Key)
		}
		keys[op.Key] = true
		switch op.Kind {
		case KindComposite:
			if len(op.Bands) != 3 || op.Formula != nil {
				t.Errorf("composite %s: bands %v, formula set %v", op.Key, op.Bands, op.Formula != nil)
			}
		case KindIndex:
			if len(op.Bands) < 2 || len(op.Bands) > 4 || op.Formula == nil {
				t.Errorf("index %s: bands %v, formula set %v", op.Key, op.Bands, op.Formula != nil)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"7", "ndvi"},
		{"NDVI", "ndvi"},
		{" shortwave_ir ", "shortwave_ir"},
		{"22", "bndi"},
	}
	for _, tt := range tests {
		op, err := Resolve(tt.ref)
		if err != nil {
			t.Fatalf("%q: %v", tt.ref, err)
		}
		if op.Key != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.ref, op.Key, tt.want)
		}
	}

	for _, ref := range []string{"0", "99", "ndxi", ""} {
		_, err := Resolve(ref)
		var unsupported *UnsupportedOperationError
		if !errors.As(err, &unsupported) {
			t.Errorf("Resolve(%q): got %v, want UnsupportedOperationError", ref, err)
		}
	}
}

func TestCatalogIsCopied(t *testing.T) {
	ops := Catalog()
	ops[0].Title = "changed"
	if op, _ := Lookup(1); op.Title != "Natural color" {
		t.Errorf("catalog was mutated through Catalog(): %q", op.Title)
	}
}

func TestFormulas(t *testing.T) {
	const tol = 1e-12
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"normalized difference", NormalizedDifference(0.8, 0.2), 0.6},
		{"evi", EVI(0.6, 0.2, 0.1), (2.5 / 9) * (0.4 / (0.6 + 0.2*6/9 - 0.1*7.5/9 + 1.0/9))},
		{"avi", AVI(0.5, 0.5), 0},
		{"avi cube root", AVI(1, 0), 1},
		{"savi", SAVI(0.5, 0.5), 0},
		{"wsi", WSI(0.4, 0.8), 0.625},
		{"gci", GCI(0.6, 0.3), 1},
		{"bsi", BSI(0.2, 0.2, 0.2, 0.2), 0},
		{"arvi", ARVI(0.8, 0.2, 0.2), 0.6 / 1.4},
		{"sipi", SIPI(0.8, 0.4, 0.6), 2e6},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > tol*math.Max(1, math.Abs(tt.want)) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
