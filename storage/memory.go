package storage

import (
	"fmt"
	"sort"

	"skyglobe.dev/flightsim/model"
)

// In memory implementation of Storage below

type memoryMetadataKey struct {
	URL    string
	SHA256 string
}

type MemoryStorage struct {
	Datasets map[string]*MemoryDataset
	Metadata map[memoryMetadataKey]*DatasetMetadata
}

type MemoryDataset struct {
	Airports []*model.Airport
	Airlines []*model.Airline
	Aircraft []*model.Aircraft
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Datasets: map[string]*MemoryDataset{},
		Metadata: map[memoryMetadataKey]*DatasetMetadata{},
	}
}

func (s *MemoryStorage) ListDatasets(filter ListDatasetsFilter) ([]*DatasetMetadata, error) {
	datasets := []*DatasetMetadata{}
	for _, metadata := range s.Metadata {
		if filter.URL != "" && metadata.URL != filter.URL {
			continue
		}
		if filter.SHA256 != "" && metadata.SHA256 != filter.SHA256 {
			continue
		}
		datasets = append(datasets, metadata)
	}
	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].RetrievedAt.After(datasets[j].RetrievedAt)
	})
	return datasets, nil
}

func (s *MemoryStorage) WriteDatasetMetadata(metadata *DatasetMetadata) error {
	s.Metadata[memoryMetadataKey{metadata.URL, metadata.SHA256}] = metadata
	return nil
}

func (s *MemoryStorage) DeleteDataset(url string, sha256 string) error {
	key := memoryMetadataKey{url, sha256}
	if _, found := s.Metadata[key]; !found {
		return fmt.Errorf("dataset not found")
	}
	delete(s.Metadata, key)

	// Drop records too, unless another metadata record still
	// references the same hash.
	for k := range s.Metadata {
		if k.SHA256 == sha256 {
			return nil
		}
	}
	delete(s.Datasets, sha256)
	return nil
}

func (s *MemoryStorage) GetReader(dataset string) (DatasetReader, error) {
	d, found := s.Datasets[dataset]
	if !found {
		d = &MemoryDataset{}
		s.Datasets[dataset] = d
	}
	return &memoryReader{d}, nil
}

func (s *MemoryStorage) GetWriter(dataset string) (DatasetWriter, error) {
	d := &MemoryDataset{}
	s.Datasets[dataset] = d
	return &memoryWriter{d}, nil
}

type memoryWriter struct {
	dataset *MemoryDataset
}

func (w *memoryWriter) WriteAirport(airport *model.Airport) error {
	w.dataset.Airports = append(w.dataset.Airports, airport)
	return nil
}

func (w *memoryWriter) BeginAirports() error { return nil }
func (w *memoryWriter) EndAirports() error   { return nil }

func (w *memoryWriter) WriteAirline(airline *model.Airline) error {
	w.dataset.Airlines = append(w.dataset.Airlines, airline)
	return nil
}

func (w *memoryWriter) WriteAircraft(aircraft *model.Aircraft) error {
	w.dataset.Aircraft = append(w.dataset.Aircraft, aircraft)
	return nil
}

func (w *memoryWriter) Close() error { return nil }

type memoryReader struct {
	dataset *MemoryDataset
}

func (r *memoryReader) Airports() ([]*model.Airport, error) {
	return r.dataset.Airports, nil
}

func (r *memoryReader) Airlines() ([]*model.Airline, error) {
	return r.dataset.Airlines, nil
}

func (r *memoryReader) Aircraft() ([]*model.Aircraft, error) {
	return r.dataset.Aircraft, nil
}

func (r *memoryReader) FindAirport(query string) (*model.Airport, error) {
	for _, a := range r.dataset.Airports {
		if matchesQuery(query, a.Name, a.IATA, a.ICAO) {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memoryReader) FindAirline(query string) (*model.Airline, error) {
	for _, a := range r.dataset.Airlines {
		if matchesQuery(query, a.Name, a.IATA, a.ICAO) {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memoryReader) FindAircraft(query string) (*model.Aircraft, error) {
	for _, a := range r.dataset.Aircraft {
		if matchesQuery(query, a.Name, a.IATA, a.ICAO) {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memoryReader) NearbyAirports(lat float64, lon float64, limit int) ([]model.Airport, error) {
	airports := make([]*model.Airport, len(r.dataset.Airports))
	copy(airports, r.dataset.Airports)
	return sortNearby(airports, lat, lon, limit), nil
}
