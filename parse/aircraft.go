package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"skyglobe.dev/flightsim/model"
	"skyglobe.dev/flightsim/storage"
)

type AircraftCSV struct {
	Name string `csv:"name"`
	IATA string `csv:"iata"`
	ICAO string `csv:"icao"`
}

func ParseAircraft(writer storage.DatasetWriter, data io.Reader) (int, error) {
	aircraftCsv := []*AircraftCSV{}
	if err := gocsv.Unmarshal(data, &aircraftCsv); err != nil {
		return 0, fmt.Errorf("unmarshaling aircraft csv: %w", err)
	}

	seen := map[string]bool{}
	for _, a := range aircraftCsv {
		if a.Name == "" {
			return 0, fmt.Errorf("empty aircraft name")
		}
		if seen[a.Name] {
			return 0, fmt.Errorf("repeated aircraft name '%s'", a.Name)
		}
		seen[a.Name] = true

		err := writer.WriteAircraft(&model.Aircraft{
			Name: a.Name,
			IATA: a.IATA,
			ICAO: a.ICAO,
		})
		if err != nil {
			return 0, fmt.Errorf("writing aircraft '%s': %w", a.Name, err)
		}
	}

	return len(aircraftCsv), nil
}
