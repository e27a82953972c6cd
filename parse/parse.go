package parse

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"skyglobe.dev/flightsim/storage"
)

// ParseDataset parses the three reference CSVs (airports, airlines,
// aircraft) and writes their records through the given writer. The
// returned metadata holds record counts; source URL, hash and
// retrieval time are the caller's to fill in.
func ParseDataset(writer storage.DatasetWriter, airports, airlines, aircraft []byte) (*storage.DatasetMetadata, error) {
	// LazyCSVReader required (at least) to survive sloppy use of
	// quotes. The BOM reader strips unicode BOMs if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	err := writer.BeginAirports()
	if err != nil {
		return nil, fmt.Errorf("beginning airports: %w", err)
	}
	numAirports, err := ParseAirports(writer, bytes.NewReader(airports))
	if err != nil {
		return nil, fmt.Errorf("parsing airports: %w", err)
	}
	err = writer.EndAirports()
	if err != nil {
		return nil, fmt.Errorf("ending airports: %w", err)
	}

	numAirlines, err := ParseAirlines(writer, bytes.NewReader(airlines))
	if err != nil {
		return nil, fmt.Errorf("parsing airlines: %w", err)
	}

	numAircraft, err := ParseAircraft(writer, bytes.NewReader(aircraft))
	if err != nil {
		return nil, fmt.Errorf("parsing aircraft: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("closing dataset writer: %w", err)
	}

	return &storage.DatasetMetadata{
		Airports: numAirports,
		Airlines: numAirlines,
		Aircraft: numAircraft,
	}, nil
}
