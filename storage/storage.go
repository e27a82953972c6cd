package storage

import (
	"time"

	"skyglobe.dev/flightsim/model"
)

type Storage interface {
	// Retrieves all dataset metadata records matching the given
	// filter.
	ListDatasets(filter ListDatasetsFilter) ([]*DatasetMetadata, error)

	// Writes a DatasetMetadata record. If a record with the same
	// URL and hash exists, it is updated.
	WriteDatasetMetadata(metadata *DatasetMetadata) error

	// Deletes a dataset's metadata and records.
	DeleteDataset(url string, sha256 string) error

	// Gets a reader for the dataset with the given hash.
	GetReader(dataset string) (DatasetReader, error)

	// Gets a writer for the dataset with the given hash.
	GetWriter(dataset string) (DatasetWriter, error)
}

type ListDatasetsFilter struct {
	// If set, only include datasets from the given source URL.
	URL string

	// If set, only include datasets with the given hash.
	SHA256 string
}

// Metadata for a downloaded reference dataset (airports, airlines and
// aircraft). The parsed records can be accessed via DatasetReader.
type DatasetMetadata struct {
	URL         string
	SHA256      string
	RetrievedAt time.Time
	Airports    int
	Airlines    int
	Aircraft    int
}

// Writes records for a single dataset.
//
// The airports file dwarfs the other two, so BeginAirports() and
// EndAirports() are called before and after all calls to
// WriteAirport(), allowing transactions/batching/whathaveyou.
type DatasetWriter interface {
	WriteAirport(airport *model.Airport) error
	BeginAirports() error
	EndAirports() error
	WriteAirline(airline *model.Airline) error
	WriteAircraft(aircraft *model.Aircraft) error
	Close() error
}

type DatasetReader interface {
	Airports() ([]*model.Airport, error)
	Airlines() ([]*model.Airline, error)
	Aircraft() ([]*model.Aircraft, error)

	// Look up a single record by exact name, IATA code or ICAO
	// code. A miss is (nil, nil); suggestion machinery lives
	// above storage.
	FindAirport(query string) (*model.Airport, error)
	FindAirline(query string) (*model.Airline, error)
	FindAircraft(query string) (*model.Aircraft, error)

	// List of airports near the given lat/lon (degrees), ordered
	// by great-circle distance. At most limit results (pass 0 for
	// no limit.)
	NearbyAirports(lat float64, lon float64, limit int) ([]model.Airport, error)
}
