package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"s2-spectral/bandtools"
	"s2-spectral/cellsio"
	"s2-spectral/indextools"

	"github.com/airbusgeo/godal"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// setUpBands writes one single band GeoTIFF per band ID into a temp dir, on a
// 0.01 degree grid near lat 1, lng 2.
func setUpBands(t *testing.T, bands map[string][]float64) string {
	t.Helper()
	bandtools.RegisterDrivers()
	dir := t.TempDir()
	for id, values := range bands {
		path := filepath.Join(dir, "T31NEA_20240101_"+id+".tif")
		ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, 2, 2)
		if err != nil {
			t.Fatal(err)
		}
		if err := ds.SetGeoTransform([6]float64{2.0, 0.01, 0, 1.0, 0, -0.01}); err != nil {
			t.Fatal(err)
		}
		if err := ds.Bands()[0].Write(0, 0, values, 2, 2); err != nil {
			t.Fatal(err)
		}
		if err := ds.Close(); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func vegetationBands(t *testing.T) string {
	return setUpBands(t, map[string][]float64{
		"B02": {10, 20, 30, 40},
		"B03": {20, 30, 40, 50},
		"B04": {30, 10, 60, 20},
		"B08": {90, 80, 70, 100},
	})
}

func TestCatalogTable(t *testing.T) {
	out, err := run(t, "catalog", "--yaml=false")
	if err != nil {
		t.Fatal(err)
	}
	for _, op := range indextools.Catalog() {
		if !strings.Contains(out, op.Key) {
			t.Errorf("catalog table is missing %s", op.Key)
		}
	}
}

func TestCatalogYAML(t *testing.T) {
	out, err := run(t, "catalog", "--yaml")
	if err != nil {
		t.Fatal(err)
	}
	var entries []catalogEntry
	if err := yaml.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 22 {
		t.Fatalf("got %d entries, want 22", len(entries))
	}
	ndvi := entries[6]
	if ndvi.ID != 7 || ndvi.Key != "ndvi" || ndvi.Kind != "index" || strings.Join(ndvi.Bands, ",") != "B08,B04" {
		t.Errorf("entry 7 = %+v", ndvi)
	}
}

func TestComposeSavesOutputs(t *testing.T) {
	dir := vegetationBands(t)
	tif := filepath.Join(t.TempDir(), "ndvi.tif")

	out, err := run(t, "compose", dir, "--op", "7", "--save", "--geotiff", tif)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Normalized Difference Vegetation Index") {
		t.Errorf("summary missing title:\n%s", out)
	}
	png := filepath.Join(dir, "Compositions", "Normalized Difference Vegetation Index.png")
	if _, err := os.Stat(png); err != nil {
		t.Errorf("PNG not saved: %v", err)
	}
	if _, err := os.Stat(tif); err != nil {
		t.Errorf("GeoTIFF not written: %v", err)
	}
}

func TestComposeUnsupportedOperation(t *testing.T) {
	dir := vegetationBands(t)
	_, err := run(t, "compose", dir, "--op", "23", "--save=false", "--geotiff", "")
	var unsupported *indextools.UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Errorf("got %v, want UnsupportedOperationError", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Compositions")); !os.IsNotExist(err) {
		t.Error("nothing should be saved for an unsupported operation")
	}
}

func TestIndexCells(t *testing.T) {
	dir := vegetationBands(t)
	output := filepath.Join(t.TempDir(), "ndvi.parquet")

	if _, err := run(t, "indexcells", dir, output, "--op", "ndvi", "--s2Lvl", "8", "--aggFunc", "max"); err != nil {
		t.Fatal(err)
	}
	rows, err := parquet.ReadFile[cellsio.CellRow](output)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 {
		t.Fatal("no cells written")
	}
	for _, row := range rows {
		if row.Value < -1 || row.Value > 1 {
			t.Errorf("cell %d value %v outside [-1, 1]", row.S2id, row.Value)
		}
	}
}

func TestIndexCellsRejectsComposite(t *testing.T) {
	dir := vegetationBands(t)
	output := filepath.Join(t.TempDir(), "cells.csv")
	if _, err := run(t, "indexcells", dir, output, "--op", "natural_color"); err == nil {
		t.Error("expected error for a composite")
	}
	if _, err := run(t, "indexcells", dir, filepath.Join(t.TempDir(), "cells.txt"), "--op", "ndvi"); err == nil {
		t.Error("expected error for a .txt output")
	}
}

func TestChooseAggFunc(t *testing.T) {
	if got := chooseAggFunc("max")(1, 3, 2); got != 3 {
		t.Errorf("max = %v, want 3", got)
	}
	if got := chooseAggFunc("median")(1, 2, 6); got != 3 {
		t.Errorf("unknown function should fall back to mean, got %v", got)
	}
}
