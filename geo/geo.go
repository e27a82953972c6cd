// Package geo holds the spherical geometry used to position flights
// and day/night shading on a globe. Angles in and out of the haversine
// kernel are radians in, degrees out, matching how callers hold
// coordinates (degrees) while the math wants radians.
package geo

import (
	"fmt"
	"math"
)

// A geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts an angle in radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Haversine returns the great-circle angle, in degrees, between a
// reference point (lat0, lon0) and a target point (lat1, lon1). All
// four inputs are in radians. The result is in [0, 180].
//
// The haversine form is used instead of the spherical law of cosines
// as it stays stable for nearly identical and nearly antipodal
// points.
func Haversine(lat0, lon0, lat1, lon1 float64) float64 {
	sLat := math.Sin((lat0 - lat1) / 2)
	sLon := math.Sin((lon0 - lon1) / 2)
	h := sLat*sLat + math.Cos(lat1)*math.Cos(lat0)*sLon*sLon

	// Rounding can push h a hair outside [0, 1] at the extremes,
	// which would make Asin return NaN.
	if h < 0 {
		h = 0
	} else if h > 1 {
		h = 1
	}

	return Degrees(2 * math.Asin(math.Sqrt(h)))
}

// HaversineSlice computes Haversine elementwise from a reference
// point to parallel slices of target latitudes and longitudes. The
// result has the same length as the inputs. Slices of different
// lengths are an error.
func HaversineSlice(lat0, lon0 float64, lat1, lon1 []float64) ([]float64, error) {
	if len(lat1) != len(lon1) {
		return nil, fmt.Errorf("latitude and longitude lengths differ: %d != %d", len(lat1), len(lon1))
	}

	out := make([]float64, len(lat1))
	for i := range lat1 {
		out[i] = Haversine(lat0, lon0, lat1[i], lon1[i])
	}
	return out, nil
}

// HaversineGrid computes Haversine elementwise from a reference point
// to 2-D grids of target latitudes and longitudes, as produced by
// Meshgrid. The result has the same shape as the inputs. Grids with
// mismatched shapes (including ragged rows) are an error.
func HaversineGrid(lat0, lon0 float64, lat1, lon1 [][]float64) ([][]float64, error) {
	if len(lat1) != len(lon1) {
		return nil, fmt.Errorf("latitude and longitude row counts differ: %d != %d", len(lat1), len(lon1))
	}

	out := make([][]float64, len(lat1))
	for i := range lat1 {
		if len(lat1[i]) != len(lon1[i]) {
			return nil, fmt.Errorf("row %d column counts differ: %d != %d", i, len(lat1[i]), len(lon1[i]))
		}
		out[i] = make([]float64, len(lat1[i]))
		for j := range lat1[i] {
			out[i][j] = Haversine(lat0, lon0, lat1[i][j], lon1[i][j])
		}
	}
	return out, nil
}

// Linspace returns n evenly spaced values from start to stop,
// inclusive. For n == 1 the single value is start.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// Meshgrid expands coordinate vectors x and y into grids of shape
// (len(y), len(x)): X[i][j] = x[j], Y[i][j] = y[i].
func Meshgrid(x, y []float64) (X, Y [][]float64) {
	X = make([][]float64, len(y))
	Y = make([][]float64, len(y))
	for i := range y {
		X[i] = make([]float64, len(x))
		Y[i] = make([]float64, len(x))
		copy(X[i], x)
		for j := range x {
			Y[i][j] = y[i]
		}
	}
	return X, Y
}
