package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyglobe.dev/flightsim/parse"
	"skyglobe.dev/flightsim/storage"
)

func validAirportsCSV() []string {
	return []string{
		"name,city,country,iata,icao,latitude,longitude,altitude_m,timezone",
		"Los Angeles International Airport,Los Angeles,United States,LAX,KLAX,33.9425,-118.408,38,America/Los_Angeles",
		"Denver International Airport,Denver,United States,DEN,KDEN,39.8617,-104.673,1655,America/Denver",
	}
}

func validAirlinesCSV() []string {
	return []string{
		"name,alias,iata,icao,callsign,country",
		"United Airlines,,UA,UAL,UNITED,United States",
		"Delta Air Lines,Delta,DL,DAL,DELTA,United States",
	}
}

func validAircraftCSV() []string {
	return []string{
		"name,iata,icao",
		"Boeing 737 MAX 9,7M9,B39M",
		"Airbus A350-900,359,A359",
	}
}

func csvBytes(lines []string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func parseInto(t *testing.T, airports, airlines, aircraft []string) (*storage.DatasetMetadata, storage.DatasetReader, error) {
	t.Helper()

	s := storage.NewMemoryStorage()
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	metadata, err := parse.ParseDataset(writer, csvBytes(airports), csvBytes(airlines), csvBytes(aircraft))
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.GetReader("test")
	require.NoError(t, err)
	return metadata, reader, nil
}

func TestParseDataset(t *testing.T) {
	metadata, reader, err := parseInto(t, validAirportsCSV(), validAirlinesCSV(), validAircraftCSV())
	require.NoError(t, err)

	assert.Equal(t, 2, metadata.Airports)
	assert.Equal(t, 2, metadata.Airlines)
	assert.Equal(t, 2, metadata.Aircraft)

	airports, err := reader.Airports()
	require.NoError(t, err)
	require.Len(t, airports, 2)
	assert.Equal(t, "Los Angeles International Airport", airports[0].Name)
	assert.Equal(t, "LAX", airports[0].IATA)
	assert.Equal(t, "KLAX", airports[0].ICAO)
	assert.InDelta(t, 33.9425, airports[0].Lat, 1e-9)
	assert.InDelta(t, -118.408, airports[0].Lon, 1e-9)
	assert.InDelta(t, 38, airports[0].Altitude, 1e-9)
	assert.Equal(t, "America/Los_Angeles", airports[0].Timezone)

	airlines, err := reader.Airlines()
	require.NoError(t, err)
	require.Len(t, airlines, 2)
	assert.Equal(t, "United Airlines", airlines[0].Name)
	assert.Equal(t, "UAL", airlines[0].ICAO)
	assert.Equal(t, "Delta", airlines[1].Alias)

	aircraft, err := reader.Aircraft()
	require.NoError(t, err)
	require.Len(t, aircraft, 2)
	assert.Equal(t, "Boeing 737 MAX 9", aircraft[0].Name)
	assert.Equal(t, "B39M", aircraft[0].ICAO)
}

func TestParseDatasetStripsBOM(t *testing.T) {
	s := storage.NewMemoryStorage()
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	airports := append([]byte("\xef\xbb\xbf"), csvBytes(validAirportsCSV())...)
	metadata, err := parse.ParseDataset(writer, airports, csvBytes(validAirlinesCSV()), csvBytes(validAircraftCSV()))
	require.NoError(t, err)
	assert.Equal(t, 2, metadata.Airports)
}

func TestParseAirportsErrors(t *testing.T) {
	for _, tc := range []struct {
		Name string
		Row  string
	}{
		{
			Name: "empty name",
			Row:  ",Nowhere,Nowhere,XXX,XXXX,0,0,0,UTC",
		},
		{
			Name: "latitude out of range",
			Row:  "Broken Airport,Nowhere,Nowhere,XXX,XXXX,95,0,0,UTC",
		},
		{
			Name: "longitude out of range",
			Row:  "Broken Airport,Nowhere,Nowhere,XXX,XXXX,0,181,0,UTC",
		},
		{
			Name: "missing timezone",
			Row:  "Broken Airport,Nowhere,Nowhere,XXX,XXXX,0,0,0,",
		},
		{
			Name: "invalid timezone",
			Row:  "Broken Airport,Nowhere,Nowhere,XXX,XXXX,0,0,0,Mars/Olympus_Mons",
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			airports := append(validAirportsCSV(), tc.Row)
			_, _, err := parseInto(t, airports, validAirlinesCSV(), validAircraftCSV())
			assert.Error(t, err)
		})
	}
}

func TestParseAirportsRepeatedName(t *testing.T) {
	airports := append(validAirportsCSV(), validAirportsCSV()[1])
	_, _, err := parseInto(t, airports, validAirlinesCSV(), validAircraftCSV())
	assert.ErrorContains(t, err, "repeated airport name")
}

func TestParseAirlinesErrors(t *testing.T) {
	airlines := append(validAirlinesCSV(), validAirlinesCSV()[1])
	_, _, err := parseInto(t, validAirportsCSV(), airlines, validAircraftCSV())
	assert.ErrorContains(t, err, "repeated airline name")

	airlines = append(validAirlinesCSV(), ",,XX,XXX,NONE,Nowhere")
	_, _, err = parseInto(t, validAirportsCSV(), airlines, validAircraftCSV())
	assert.ErrorContains(t, err, "empty airline name")
}

func TestParseAircraftErrors(t *testing.T) {
	aircraft := append(validAircraftCSV(), validAircraftCSV()[1])
	_, _, err := parseInto(t, validAirportsCSV(), validAirlinesCSV(), aircraft)
	assert.ErrorContains(t, err, "repeated aircraft name")
}
