package geo

import (
	"math"
	"strconv"
	"strings"
)

// Region is one of the fixed UK geographic subdivisions used to select an
// upstream configuration.
type Region string

const (
	RegionEngland         Region = "england"
	RegionScotland        Region = "scotland"
	RegionWales           Region = "wales"
	RegionNorthernIreland Region = "northern_ireland"
)

// DefaultRegion is returned whenever a bounding box is missing, malformed,
// or matches no classification rule.
const DefaultRegion = RegionEngland

// Regions lists all known regions.
func Regions() []Region {
	return []Region{RegionEngland, RegionScotland, RegionWales, RegionNorthernIreland}
}

// BoundingBox is an axis-aligned box of four ordered values
// (minX, minY, maxX, maxY) in an undeclared CRS.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Center returns the box midpoint in the box's own CRS.
func (b BoundingBox) Center() (x, y float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// ParseBoundingBox parses a comma-separated "minX,minY,maxX,maxY" string.
// The second return value is false when the string does not contain exactly
// four parseable numbers.
func ParseBoundingBox(s string) (BoundingBox, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, false
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, false
		}
		vals[i] = v
	}
	return BoundingBox{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}, true
}

// ResolveRegion classifies a bounding box string into a Region.
// Malformed input resolves to DefaultRegion rather than an error: the proxy
// must always route somewhere, and England is the safe default upstream.
func ResolveRegion(bbox string) Region {
	box, ok := ParseBoundingBox(bbox)
	if !ok {
		return DefaultRegion
	}
	return ClassifyPoint(box.Center())
}

// ClassifyPoint classifies a single point (in either supported CRS) into a
// Region. Rules are evaluated in a fixed precedence order and the first
// match wins:
//
//  1. latitude > 55.3 → scotland
//  2. longitude < -2.5 and 51.3 < latitude < 53.5 → wales
//  3. longitude < -5.5 and 54.0 < latitude < 55.5 → northern_ireland
//  4. otherwise → england
//
// Scotland's latitude-only rule can shadow boxes overlapping Wales or
// Northern Ireland. That asymmetry is intentional and must not be
// reordered.
func ClassifyPoint(x, y float64) Region {
	lon, lat := ToGeographic(x, y)
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return DefaultRegion
	}
	switch {
	case lat > 55.3:
		return RegionScotland
	case lon < -2.5 && lat > 51.3 && lat < 53.5:
		return RegionWales
	case lon < -5.5 && lat > 54.0 && lat < 55.5:
		return RegionNorthernIreland
	default:
		return RegionEngland
	}
}
