package flightsim

import (
	"fmt"
	"time"

	"skyglobe.dev/flightsim/astro"
	"skyglobe.dev/flightsim/geo"
	"skyglobe.dev/flightsim/model"
)

// Layout for local departure/arrival times, e.g.
// "July 2, 2021, 6:50 pm".
const TimeLayout = "January 2, 2006, 3:04 pm"

// One animation frame per minute of flight.
const frameInterval = time.Minute

// FlightSpec names the pieces of a flight. Airports, airline and
// aircraft are resolved against a Database; times are local to their
// airports, in TimeLayout.
type FlightSpec struct {
	Airline          string
	Number           int
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    string
	ArrivalTime      string
	Aircraft         string
}

// A flight resolved against reference data, with its great-circle
// path and per-frame geometry precomputed.
type Flight struct {
	Airline   *model.Airline
	Number    int
	Departure *model.Airport
	Arrival   *model.Airport
	Aircraft  *model.Aircraft

	// UTC.
	DepartureTime time.Time
	ArrivalTime   time.Time

	path   []geo.Point
	camera []geo.Point
}

// Everything needed to draw one frame: where the plane is, where the
// camera (projection center) points, and where the sun is overhead.
type Frame struct {
	Plane    geo.Point
	Camera   geo.Point
	Subsolar geo.Point
	Elapsed  time.Duration
}

// NewFlight resolves a FlightSpec against a Database and derives the
// flight's geometry. Lookup misses surface as *NotFoundError with
// suggestions.
func NewFlight(db *Database, spec FlightSpec) (*Flight, error) {
	airline, err := db.Airline(spec.Airline)
	if err != nil {
		return nil, err
	}
	departure, err := db.Airport(spec.DepartureAirport)
	if err != nil {
		return nil, err
	}
	arrival, err := db.Airport(spec.ArrivalAirport)
	if err != nil {
		return nil, err
	}
	aircraft, err := db.Aircraft(spec.Aircraft)
	if err != nil {
		return nil, err
	}

	departureTime, err := localTimeUTC(spec.DepartureTime, departure.Timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing departure time: %w", err)
	}
	arrivalTime, err := localTimeUTC(spec.ArrivalTime, arrival.Timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing arrival time: %w", err)
	}
	if !arrivalTime.After(departureTime) {
		return nil, fmt.Errorf("arrival %s is not after departure %s", arrivalTime, departureTime)
	}

	f := &Flight{
		Airline:       airline,
		Number:        spec.Number,
		Departure:     departure,
		Arrival:       arrival,
		Aircraft:      aircraft,
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
	}

	path, err := geo.Path(
		geo.Point{Lat: departure.Lat, Lon: departure.Lon},
		geo.Point{Lat: arrival.Lat, Lon: arrival.Lon},
		f.Frames(),
	)
	if err != nil {
		return nil, fmt.Errorf("computing flight path: %w", err)
	}
	f.path = geo.UnwrapDateline(path)

	// The camera follows the path's longitudes but moves straight
	// from the departure latitude to the arrival latitude, so the
	// globe doesn't bob along high-latitude arcs.
	lats := geo.Linspace(f.path[0].Lat, f.path[len(f.path)-1].Lat, len(f.path))
	f.camera = make([]geo.Point, len(f.path))
	for i := range f.path {
		f.camera[i] = geo.Point{Lat: lats[i], Lon: f.path[i].Lon}
	}

	return f, nil
}

// Duration of the flight.
func (f *Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// Frames returns the number of animation frames, one per minute from
// departure through arrival, endpoints included.
func (f *Flight) Frames() int {
	return int(f.Duration()/frameInterval) + 1
}

// Path returns the great-circle flight path, one point per frame,
// dateline-unwrapped.
func (f *Flight) Path() []geo.Point {
	return f.path
}

// CameraPath returns the projection center for each frame.
func (f *Flight) CameraPath() []geo.Point {
	return f.camera
}

// Frame returns the geometry for frame i.
func (f *Flight) Frame(i int) (Frame, error) {
	if i < 0 || i >= f.Frames() {
		return Frame{}, fmt.Errorf("frame %d out of range [0, %d)", i, f.Frames())
	}

	elapsed := time.Duration(i) * frameInterval
	subLat, subLon := astro.SubsolarPoint(f.DepartureTime.Add(elapsed))

	return Frame{
		Plane:    f.path[i],
		Camera:   f.camera[i],
		Subsolar: geo.Point{Lat: subLat, Lon: subLon},
		Elapsed:  elapsed,
	}, nil
}

func (f *Flight) String() string {
	return fmt.Sprintf(
		"%s flight %d:\n"+
			"   Origin: %s (%s/%s)\n"+
			"   Destination: %s (%s/%s)\n"+
			"   Departure Time: %s\n"+
			"   Arrival Time: %s\n"+
			"   Aircraft: %s",
		f.Airline.Name, f.Number,
		f.Departure.City, f.Departure.Name, f.Departure.IATA,
		f.Arrival.City, f.Arrival.Name, f.Arrival.IATA,
		f.localTime(f.DepartureTime, f.Departure.Timezone),
		f.localTime(f.ArrivalTime, f.Arrival.Timezone),
		f.Aircraft.Name,
	)
}

// Formats a UTC instant in an airport's local timezone.
func (f *Flight) localTime(t time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return t.Format("Mon, Jan 2, 2006, 3:04 PM MST")
	}
	return t.In(loc).Format("Mon, Jan 2, 2006, 3:04 PM")
}

// Parses a local time string in the given IANA timezone and converts
// it to UTC.
func localTimeUTC(value string, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone: %w", err)
	}

	t, err := time.ParseInLocation(TimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", value, err)
	}

	return t.UTC(), nil
}
