package geo

import "math"

// CRS identifies a coordinate reference system.
type CRS string

const (
	// CRSWebMercator is EPSG:3857, coordinates in metres.
	CRSWebMercator CRS = "EPSG:3857"

	// CRSGeographic is EPSG:4326, coordinates in degrees.
	CRSGeographic CRS = "EPSG:4326"
)

const (
	// earthRadius is the WGS84 spherical radius in metres used by the
	// Web-Mercator projection.
	earthRadius = 6378137.0

	// originShift is half the projected extent of the Web-Mercator plane.
	originShift = math.Pi * earthRadius

	// crsGuessThreshold is the coordinate magnitude beyond which a value
	// cannot be degrees and is assumed to be Web-Mercator metres.
	// A caller supplying metre values inside ±20000 would be misclassified
	// as geographic; region resolution then falls back to the default
	// region, which is the documented behavior for ambiguous input.
	crsGuessThreshold = 20000.0
)

// GuessCRS infers the CRS of a coordinate pair from its magnitude.
// Values with |x| > 20000 or |y| > 20000 are treated as Web-Mercator
// metres; everything else is treated as already-geographic degrees.
func GuessCRS(x, y float64) CRS {
	if math.Abs(x) > crsGuessThreshold || math.Abs(y) > crsGuessThreshold {
		return CRSWebMercator
	}
	return CRSGeographic
}

// MercatorToGeographic converts a Web-Mercator (EPSG:3857) point to
// geographic (EPSG:4326) longitude and latitude in degrees.
func MercatorToGeographic(x, y float64) (lon, lat float64) {
	lon = (x / originShift) * 180.0
	lat = (2*math.Atan(math.Exp((y/originShift)*math.Pi)) - math.Pi/2) * (180.0 / math.Pi)
	return lon, lat
}

// ToGeographic converts a point to geographic coordinates, guessing the
// source CRS from coordinate magnitude. Points already in degrees are
// returned unchanged. NaN input propagates through unchanged; downstream
// region classification treats it as unclassifiable.
func ToGeographic(x, y float64) (lon, lat float64) {
	if GuessCRS(x, y) == CRSWebMercator {
		return MercatorToGeographic(x, y)
	}
	return x, y
}
