package flightsim_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyglobe.dev/flightsim"
	"skyglobe.dev/flightsim/model"
	"skyglobe.dev/flightsim/storage"
)

// Builds a Database over in-memory storage with a handful of real
// airports, airlines and aircraft.
func buildDatabase(t testing.TB) *flightsim.Database {
	t.Helper()

	s := storage.NewMemoryStorage()
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	require.NoError(t, writer.BeginAirports())
	for _, a := range []*model.Airport{
		{
			Name: "Los Angeles International Airport", City: "Los Angeles", Country: "United States",
			IATA: "LAX", ICAO: "KLAX", Lat: 33.9425, Lon: -118.408, Altitude: 38,
			Timezone: "America/Los_Angeles",
		},
		{
			Name: "Denver International Airport", City: "Denver", Country: "United States",
			IATA: "DEN", ICAO: "KDEN", Lat: 39.8617, Lon: -104.673, Altitude: 1655,
			Timezone: "America/Denver",
		},
		{
			Name: "San Francisco International Airport", City: "San Francisco", Country: "United States",
			IATA: "SFO", ICAO: "KSFO", Lat: 37.6152, Lon: -122.39, Altitude: 4,
			Timezone: "America/Los_Angeles",
		},
		{
			Name: "Tokyo Haneda International Airport", City: "Tokyo", Country: "Japan",
			IATA: "HND", ICAO: "RJTT", Lat: 35.5523, Lon: 139.7797, Altitude: 11,
			Timezone: "Asia/Tokyo",
		},
		{
			Name: "Null Island Airfield", City: "Null Island", Country: "Atlantis",
			IATA: "", ICAO: "", Lat: 0, Lon: 0, Altitude: 0,
			Timezone: "UTC",
		},
		{
			Name: "Antipode Airfield", City: "Antipodes", Country: "Atlantis",
			IATA: "", ICAO: "", Lat: 0, Lon: 180, Altitude: 0,
			Timezone: "UTC",
		},
	} {
		require.NoError(t, writer.WriteAirport(a))
	}
	require.NoError(t, writer.EndAirports())

	for _, a := range []*model.Airline{
		{Name: "United Airlines", IATA: "UA", ICAO: "UAL", Callsign: "UNITED", Country: "United States"},
		{Name: "Delta Air Lines", Alias: "Delta", IATA: "DL", ICAO: "DAL", Callsign: "DELTA", Country: "United States"},
	} {
		require.NoError(t, writer.WriteAirline(a))
	}

	for _, a := range []*model.Aircraft{
		{Name: "Boeing 737 MAX 9", IATA: "7M9", ICAO: "B39M"},
		{Name: "Airbus A350-900", IATA: "359", ICAO: "A359"},
	} {
		require.NoError(t, writer.WriteAircraft(a))
	}
	require.NoError(t, writer.Close())

	reader, err := s.GetReader("test")
	require.NoError(t, err)

	return flightsim.NewDatabase(reader, &storage.DatasetMetadata{
		SHA256:      "test",
		RetrievedAt: time.Now().UTC(),
		Airports:    6,
		Airlines:    2,
		Aircraft:    2,
	})
}

func TestDatabaseLookups(t *testing.T) {
	db := buildDatabase(t)

	airport, err := db.Airport("Denver International Airport")
	require.NoError(t, err)
	assert.Equal(t, "DEN", airport.IATA)

	airport, err = db.Airport("KSFO")
	require.NoError(t, err)
	assert.Equal(t, "San Francisco International Airport", airport.Name)

	airline, err := db.Airline("DL")
	require.NoError(t, err)
	assert.Equal(t, "Delta Air Lines", airline.Name)

	aircraft, err := db.Aircraft("Airbus A350-900")
	require.NoError(t, err)
	assert.Equal(t, "A359", aircraft.ICAO)
}

func TestDatabaseSuggestions(t *testing.T) {
	db := buildDatabase(t)

	_, err := db.Airport("Los Angeles Intl")
	require.Error(t, err)

	var notFound *flightsim.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "airport", notFound.Kind)
	assert.Equal(t, "Los Angeles Intl", notFound.Query)
	require.NotEmpty(t, notFound.Suggestions)
	assert.Equal(t, "Los Angeles International Airport", notFound.Suggestions[0])
	assert.LessOrEqual(t, len(notFound.Suggestions), 5)

	assert.Contains(t, err.Error(), "did you mean")

	_, err = db.Airline("United")
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "airline", notFound.Kind)
	assert.Equal(t, "United Airlines", notFound.Suggestions[0])

	_, err = db.Aircraft("Boeing 737 MAX")
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "aircraft", notFound.Kind)
	assert.Equal(t, "Boeing 737 MAX 9", notFound.Suggestions[0])
}

func TestDatabaseSuggestionsWithoutFuzzyMatch(t *testing.T) {
	db := buildDatabase(t)

	// Nothing fuzzy-matches this, so suggestions fall back to edit
	// distance and still come back non-empty.
	var notFound *flightsim.NotFoundError
	_, err := db.Airport("Zzyzx Regional")
	require.True(t, errors.As(err, &notFound))
	assert.NotEmpty(t, notFound.Suggestions)
}

func TestDatabaseNearbyAirports(t *testing.T) {
	db := buildDatabase(t)

	// From downtown San Francisco.
	nearby, err := db.NearbyAirports(37.7749, -122.4194, 3)
	require.NoError(t, err)
	require.Len(t, nearby, 3)
	assert.Equal(t, "San Francisco International Airport", nearby[0].Name)
	assert.Equal(t, "Los Angeles International Airport", nearby[1].Name)
	assert.Equal(t, "Denver International Airport", nearby[2].Name)
}
