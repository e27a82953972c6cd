package astro

import (
	"math"

	"skyglobe.dev/flightsim/geo"
)

// The twilight band runs from solar zenith angle 90 degrees (sunset)
// to 108 degrees (end of astronomical twilight).
const (
	twilightStart = 90.0
	twilightWidth = 18.0
)

// SolarZenithGrid returns a rows-by-cols cylindrical grid of solar
// zenith angles, in degrees, for a sun overhead at (subLat, subLon)
// degrees. Row 0 is latitude -90, the last row +90; column 0 is
// longitude -180, the last column +180. Each cell is the angle
// between the subsolar point and that cell's coordinates.
func SolarZenithGrid(subLat, subLon float64, rows, cols int) [][]float64 {
	lats := geo.Linspace(geo.Radians(-90), geo.Radians(90), rows)
	lons := geo.Linspace(geo.Radians(-180), geo.Radians(180), cols)
	lonGrid, latGrid := geo.Meshgrid(lons, lats)

	// Shapes agree by construction, so the error is impossible.
	sza, _ := geo.HaversineGrid(geo.Radians(subLat), geo.Radians(subLon), latGrid, lonGrid)
	return sza
}

// DaylightWeights turns a grid of solar zenith angles into daylight
// blending weights: 1 in full day (zenith angle at most 90), 0 in
// full night (beyond 108), and a cosine-squared ramp across the
// twilight band between. A day texture weighted by this grid plus a
// night texture weighted by its complement reproduces the terminator.
func DaylightWeights(sza [][]float64) [][]float64 {
	out := make([][]float64, len(sza))
	for i, row := range sza {
		out[i] = make([]float64, len(row))
		for j, angle := range row {
			switch {
			case angle <= twilightStart:
				out[i][j] = 1
			case angle > twilightStart+twilightWidth:
				out[i][j] = 0
			default:
				f := (angle - twilightStart) / twilightWidth * math.Pi / 2
				c := math.Cos(f)
				out[i][j] = c * c
			}
		}
	}
	return out
}
