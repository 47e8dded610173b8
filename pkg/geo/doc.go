/*
Package geo provides coordinate handling for the Atlas edge proxy.

It contains two pieces:

  - Coordinate transformation between Web-Mercator (EPSG:3857) and
    geographic (EPSG:4326) coordinates, including the magnitude-based
    CRS guess used when a bounding box does not declare its CRS.
  - Region resolution, which classifies a bounding box into one of the
    fixed UK regions used to select an upstream configuration.

CRS Guessing:

Incoming WMS-style requests carry bounding boxes without CRS metadata.
GuessCRS infers the CRS from coordinate magnitude: values beyond what is
possible in degrees are treated as Web-Mercator metres. The threshold is
deliberately isolated in one named function because it is the most fragile
assumption in the system:

	crs := geo.GuessCRS(x, y)
	lon, lat := geo.ToGeographic(x, y)

Region Resolution:

	region := geo.ResolveRegion("-400000,7500000,-300000,7600000")
	cfg := table.Lookup(region)

Rules are evaluated in a fixed precedence order and the first match wins.
Scotland's latitude-only rule can shadow boxes that geographically overlap
Wales or Northern Ireland; this asymmetry is intentional and preserved.
*/
package geo
