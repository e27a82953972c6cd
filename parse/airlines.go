package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"skyglobe.dev/flightsim/model"
	"skyglobe.dev/flightsim/storage"
)

type AirlineCSV struct {
	Name     string `csv:"name"`
	Alias    string `csv:"alias"`
	IATA     string `csv:"iata"`
	ICAO     string `csv:"icao"`
	Callsign string `csv:"callsign"`
	Country  string `csv:"country"`
}

func ParseAirlines(writer storage.DatasetWriter, data io.Reader) (int, error) {
	airlineCsv := []*AirlineCSV{}
	if err := gocsv.Unmarshal(data, &airlineCsv); err != nil {
		return 0, fmt.Errorf("unmarshaling airlines csv: %w", err)
	}

	seen := map[string]bool{}
	for _, a := range airlineCsv {
		if a.Name == "" {
			return 0, fmt.Errorf("empty airline name")
		}
		if seen[a.Name] {
			return 0, fmt.Errorf("repeated airline name '%s'", a.Name)
		}
		seen[a.Name] = true

		err := writer.WriteAirline(&model.Airline{
			Name:     a.Name,
			Alias:    a.Alias,
			IATA:     a.IATA,
			ICAO:     a.ICAO,
			Callsign: a.Callsign,
			Country:  a.Country,
		})
		if err != nil {
			return 0, fmt.Errorf("writing airline '%s': %w", a.Name, err)
		}
	}

	return len(airlineCsv), nil
}
