package celltools

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

const EarthRadius = 6371000

// CellPolygon returns the cell outline as a closed lng/lat ring.
func CellPolygon(cell s2.CellID) orb.Polygon {
	c := s2.CellFromCellID(cell)
	ring := make(orb.Ring, 0, 5)
	for k := 0; k < 4; k++ {
		latlng := s2.LatLngFromPoint(c.Vertex(k))
		ring = append(ring, orb.Point{latlng.Lng.Degrees(), latlng.Lat.Degrees()})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

func cellToWKT(cell s2.Cell) string {
	return wkt.MarshalString(CellPolygon(cell.ID()))
}

// CellAreaM2 approximates the cell's surface area on a spherical Earth.
func CellAreaM2(cell s2.CellID) float64 {
	return s2.CellFromCellID(cell).ExactArea() * EarthRadius * EarthRadius
}
