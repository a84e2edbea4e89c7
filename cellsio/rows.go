package cellsio

import (
	"fmt"
	"path/filepath"
	"strings"

	"s2-spectral/celltools"
)

// CellRow is the on-disk layout of one aggregated S2 cell.
type CellRow struct {
	S2id   int64   `parquet:"s2_id" csv:"s2_id"`
	Value  float64 `parquet:"value" csv:"value"`
	AreaM2 float64 `parquet:"area_m2" csv:"area_m2"`
	Geom   string  `parquet:"geom" csv:"geom"`
}

func toRows(cellData []celltools.S2CellData) []CellRow {
	rows := make([]CellRow, len(cellData))
	for i, cell := range cellData {
		rows[i] = CellRow{
			S2id:   int64(cell.Cell),
			Value:  cell.Data,
			AreaM2: celltools.CellAreaM2(cell.Cell),
			Geom:   cell.GeomString,
		}
	}
	return rows
}

// Format returns "parquet", "csv" or "geojson" from the extension of path.
func Format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "parquet", nil
	case ".csv":
		return "csv", nil
	case ".geojson":
		return "geojson", nil
	default:
		return "", fmt.Errorf("%s: unsupported output format, use .parquet, .csv or .geojson", path)
	}
}

// WriteCells picks the sink from the extension of path.
func WriteCells(cellData []celltools.S2CellData, path string) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		return WriteCSV(cellData, path)
	case "geojson":
		return WriteGeoJSON(cellData, path)
	}
	return WriteParquet(cellData, path)
}
