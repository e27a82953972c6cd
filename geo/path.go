package geo

import (
	"fmt"
	"math"
)

// Below a few micrometers of arc on an Earth-sized sphere, two points
// are treated as coincident.
const minSeparation = 1e-12

// Path returns n points evenly spaced along the great circle from one
// point to another, endpoints included. Coordinates are in degrees.
//
// Antipodal endpoints are an error: every great circle through them
// is a shortest path, so there is no single route to interpolate.
func Path(from, to Point, n int) ([]Point, error) {
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 path points, got %d", n)
	}

	lat0 := Radians(from.Lat)
	lon0 := Radians(from.Lon)
	lat1 := Radians(to.Lat)
	lon1 := Radians(to.Lon)

	delta := Radians(Haversine(lat0, lon0, lat1, lon1))

	if delta < minSeparation {
		path := make([]Point, n)
		for i := range path {
			path[i] = from
		}
		return path, nil
	}
	if math.Pi-delta < 1e-9 {
		return nil, fmt.Errorf("antipodal endpoints have no unique great circle")
	}

	sinDelta := math.Sin(delta)
	path := make([]Point, n)
	for i := range path {
		f := float64(i) / float64(n-1)

		// Spherical linear interpolation on unit vectors.
		a := math.Sin((1-f)*delta) / sinDelta
		b := math.Sin(f*delta) / sinDelta
		x := a*math.Cos(lat0)*math.Cos(lon0) + b*math.Cos(lat1)*math.Cos(lon1)
		y := a*math.Cos(lat0)*math.Sin(lon0) + b*math.Cos(lat1)*math.Sin(lon1)
		z := a*math.Sin(lat0) + b*math.Sin(lat1)

		path[i] = Point{
			Lat: Degrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
			Lon: Degrees(math.Atan2(y, x)),
		}
	}

	path[0] = from
	path[n-1] = to
	return path, nil
}

// UnwrapDateline shifts negative longitudes by +360 when a path
// strays within 5 degrees of the antimeridian, so that a plotted path
// doesn't jump from +180 to -180. The input is not modified.
func UnwrapDateline(path []Point) []Point {
	out := make([]Point, len(path))
	copy(out, path)

	crosses := false
	for _, p := range out {
		if p.Lon < -175 || p.Lon > 175 {
			crosses = true
			break
		}
	}
	if !crosses {
		return out
	}

	for i := range out {
		if out[i].Lon < 0 {
			out[i].Lon += 360
		}
	}
	return out
}
