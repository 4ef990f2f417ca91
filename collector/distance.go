package collector

import (
	"fmt"

	"github.com/hupe1980/lexigo/index"
)

// DistanceKey returns the key of the distance collector for field and center.
// Two projections over the same field and center share one collector.
func DistanceKey(field string, center index.GeoPoint) Key {
	return NewKey(fmt.Sprintf("distance:%s:%s", field, center))
}

// Distance computes the distance in meters from center to the geo value of
// every collected doc, for per-hit projection after the scan.
type Distance struct {
	field     string
	center    index.GeoPoint
	distances map[index.DocID]float64
}

// NewDistance creates a distance collector.
func NewDistance(field string, center index.GeoPoint) *Distance {
	return &Distance{field: field, center: center, distances: make(map[index.DocID]float64)}
}

func (d *Distance) NeedsScores() bool { return false }

func (d *Distance) Leaf(seg index.Segment) (LeafCollector, error) {
	base := seg.Base()
	dv := seg.DocValues()
	return LeafFunc(func(doc uint32, _ float32) error {
		if p, ok := dv.Geo(d.field, doc); ok {
			d.distances[base+index.DocID(doc)] = d.center.DistanceTo(p)
		}
		return nil
	}), nil
}

// DistanceOf returns the distance of doc. ok is false when the doc had no geo value.
func (d *Distance) DistanceOf(doc index.DocID) (float64, bool) {
	v, ok := d.distances[doc]
	return v, ok
}
