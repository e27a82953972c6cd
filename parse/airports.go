package parse

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"skyglobe.dev/flightsim/model"
	"skyglobe.dev/flightsim/storage"
)

type AirportCSV struct {
	Name     string  `csv:"name"`
	City     string  `csv:"city"`
	Country  string  `csv:"country"`
	IATA     string  `csv:"iata"`
	ICAO     string  `csv:"icao"`
	Lat      float64 `csv:"latitude"`
	Lon      float64 `csv:"longitude"`
	Altitude float64 `csv:"altitude_m"`
	Timezone string  `csv:"timezone"`
}

// ParseAirports reads the airports CSV, validates each row and writes
// the records. Returns the number of airports written.
//
// Airport names are the lookup key, so duplicates are rejected.
// Latitude/longitude must be in range and the timezone must be a
// loadable IANA zone, since flights convert local times through it.
func ParseAirports(writer storage.DatasetWriter, data io.Reader) (int, error) {
	airportCsv := []*AirportCSV{}
	if err := gocsv.Unmarshal(data, &airportCsv); err != nil {
		return 0, errors.Wrap(err, "unmarshaling airports csv")
	}

	seen := map[string]bool{}
	for _, a := range airportCsv {
		if a.Name == "" {
			return 0, errors.New("empty airport name")
		}
		if seen[a.Name] {
			return 0, errors.Errorf("repeated airport name '%s'", a.Name)
		}
		seen[a.Name] = true

		if a.Lat < -90 || a.Lat > 90 {
			return 0, errors.Errorf("latitude %f out of range for airport '%s'", a.Lat, a.Name)
		}
		if a.Lon < -180 || a.Lon > 180 {
			return 0, errors.Errorf("longitude %f out of range for airport '%s'", a.Lon, a.Name)
		}

		if a.Timezone == "" {
			return 0, errors.Errorf("missing timezone for airport '%s'", a.Name)
		}
		if _, err := time.LoadLocation(a.Timezone); err != nil {
			return 0, errors.Wrapf(err, "timezone '%s' invalid for airport '%s'", a.Timezone, a.Name)
		}

		err := writer.WriteAirport(&model.Airport{
			Name:     a.Name,
			City:     a.City,
			Country:  a.Country,
			IATA:     a.IATA,
			ICAO:     a.ICAO,
			Lat:      a.Lat,
			Lon:      a.Lon,
			Altitude: a.Altitude,
			Timezone: a.Timezone,
		})
		if err != nil {
			return 0, fmt.Errorf("writing airport '%s': %w", a.Name, err)
		}
	}

	return len(airportCsv), nil
}
