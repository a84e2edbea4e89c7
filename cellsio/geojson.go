package cellsio

import (
	"os"

	"s2-spectral/celltools"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

// WriteGeoJSON writes one polygon feature per cell, with the row fields as
// properties.
func WriteGeoJSON(cellData []celltools.S2CellData, path string) error {
	rows := toRows(cellData)
	fc := geojson.NewFeatureCollection()
	for i, cell := range cellData {
		f := geojson.NewFeature(celltools.CellPolygon(cell.Cell))
		f.Properties["s2_id"] = rows[i].S2id
		f.Properties["value"] = rows[i].Value
		f.Properties["area_m2"] = rows[i].AreaM2
		fc.Append(f)
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	logrus.Infof("Wrote %d cells to %s", len(rows), path)
	return nil
}
