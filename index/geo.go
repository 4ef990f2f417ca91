package index

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371008.8

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

func (p GeoPoint) String() string { return fmt.Sprintf("%g,%g", p.Lat, p.Lon) }

// DistanceTo returns the haversine distance in meters.
func (p GeoPoint) DistanceTo(o GeoPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := o.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (o.Lon - p.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
