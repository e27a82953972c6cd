// Package astro computes where the sun is, which is all the astronomy
// a day/night globe needs.
package astro

import (
	"math"
	"time"

	"skyglobe.dev/flightsim/geo"
)

// J2000.0, the epoch the solar position series is referenced to.
var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// SubsolarPoint returns the latitude and longitude, in degrees, of
// the point on Earth where the sun is directly overhead at time t.
//
// Uses the standard low-accuracy solar position series (mean
// longitude and anomaly, ecliptic longitude, obliquity). Good to a
// few hundredths of a degree, which is far tighter than the 18-degree
// twilight band it feeds.
func SubsolarPoint(t time.Time) (lat, lon float64) {
	t = t.UTC()
	d := t.Sub(j2000).Hours() / 24

	// Mean longitude and mean anomaly of the sun, degrees.
	meanLon := wrap360(280.460 + 0.9856474*d)
	meanAnom := geo.Radians(wrap360(357.528 + 0.9856003*d))

	// Ecliptic longitude and obliquity of the ecliptic.
	eclipticLon := geo.Radians(meanLon + 1.915*math.Sin(meanAnom) + 0.020*math.Sin(2*meanAnom))
	obliquity := geo.Radians(23.439 - 0.0000004*d)

	declination := math.Asin(math.Sin(obliquity) * math.Sin(eclipticLon))

	// Equation of time: the offset, in degrees of rotation, between
	// mean solar time and apparent solar time.
	rightAscension := wrap360(geo.Degrees(math.Atan2(
		math.Cos(obliquity)*math.Sin(eclipticLon),
		math.Cos(eclipticLon),
	)))
	eot := wrap180(meanLon - rightAscension)

	// The sun is overhead where apparent solar time is exactly noon.
	utcHours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	lon = wrap180(15*(12-utcHours) - eot)
	lat = geo.Degrees(declination)
	return lat, lon
}

// wrap360 reduces an angle in degrees to [0, 360).
func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// wrap180 reduces an angle in degrees to [-180, 180).
func wrap180(deg float64) float64 {
	deg = wrap360(deg)
	if deg >= 180 {
		deg -= 360
	}
	return deg
}
