package model

// Holds all external facing reference-data types.

// An airport record. Latitude and longitude are in degrees, altitude
// in meters. Timezone is an IANA zone name like "America/Denver".
type Airport struct {
	Name     string
	City     string
	Country  string
	IATA     string
	ICAO     string
	Lat      float64
	Lon      float64
	Altitude float64
	Timezone string
}

type Airline struct {
	Name     string
	Alias    string
	IATA     string
	ICAO     string
	Callsign string
	Country  string
}

// An aircraft type, e.g. "Boeing 737 MAX 9".
type Aircraft struct {
	Name string
	IATA string
	ICAO string
}
