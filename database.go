package flightsim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"skyglobe.dev/flightsim/model"
	"skyglobe.dev/flightsim/storage"
)

const maxSuggestions = 5

// Database is the lookup facade over a stored reference dataset.
type Database struct {
	Metadata *storage.DatasetMetadata
	Reader   storage.DatasetReader
}

func NewDatabase(reader storage.DatasetReader, metadata *storage.DatasetMetadata) *Database {
	return &Database{
		Metadata: metadata,
		Reader:   reader,
	}
}

// Returned when a lookup misses. Suggestions holds up to five record
// names resembling the query, for the "did you mean" treatment.
type NotFoundError struct {
	Kind        string
	Query       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("could not find %s %q", e.Kind, e.Query)
	if len(e.Suggestions) > 0 {
		msg += ". did you mean one of: " + strings.Join(e.Suggestions, "; ")
	}
	return msg
}

// Airport looks up an airport by exact name, IATA code or ICAO code.
// On a miss the error is a *NotFoundError with suggestions.
func (db *Database) Airport(query string) (*model.Airport, error) {
	airport, err := db.Reader.FindAirport(query)
	if err != nil {
		return nil, fmt.Errorf("finding airport: %w", err)
	}
	if airport != nil {
		return airport, nil
	}

	airports, err := db.Reader.Airports()
	if err != nil {
		return nil, fmt.Errorf("listing airports: %w", err)
	}
	names := make([]string, len(airports))
	for i, a := range airports {
		names[i] = a.Name
	}

	return nil, &NotFoundError{Kind: "airport", Query: query, Suggestions: suggest(query, names)}
}

// Airline looks up an airline by exact name, IATA code or ICAO code.
func (db *Database) Airline(query string) (*model.Airline, error) {
	airline, err := db.Reader.FindAirline(query)
	if err != nil {
		return nil, fmt.Errorf("finding airline: %w", err)
	}
	if airline != nil {
		return airline, nil
	}

	airlines, err := db.Reader.Airlines()
	if err != nil {
		return nil, fmt.Errorf("listing airlines: %w", err)
	}
	names := make([]string, len(airlines))
	for i, a := range airlines {
		names[i] = a.Name
	}

	return nil, &NotFoundError{Kind: "airline", Query: query, Suggestions: suggest(query, names)}
}

// Aircraft looks up an aircraft type by exact name, IATA code or ICAO
// code.
func (db *Database) Aircraft(query string) (*model.Aircraft, error) {
	aircraft, err := db.Reader.FindAircraft(query)
	if err != nil {
		return nil, fmt.Errorf("finding aircraft: %w", err)
	}
	if aircraft != nil {
		return aircraft, nil
	}

	types, err := db.Reader.Aircraft()
	if err != nil {
		return nil, fmt.Errorf("listing aircraft: %w", err)
	}
	names := make([]string, len(types))
	for i, a := range types {
		names[i] = a.Name
	}

	return nil, &NotFoundError{Kind: "aircraft", Query: query, Suggestions: suggest(query, names)}
}

// Returns airports ordered by great-circle distance from lat/lon
// (degrees). If limit is >0, at most limit airports are returned.
func (db *Database) NearbyAirports(lat float64, lon float64, limit int) ([]model.Airport, error) {
	airports, err := db.Reader.NearbyAirports(lat, lon, limit)
	if err != nil {
		return nil, fmt.Errorf("getting nearby airports: %w", err)
	}
	return airports, nil
}

// Ranks names against the query: fuzzy subsequence matches first,
// falling back to plain edit distance when nothing matches at all
// (e.g. the query is a garbled prefix).
func suggest(query string, names []string) []string {
	if query == "" || len(names) == 0 {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		for _, name := range names {
			ranks = append(ranks, fuzzy.Rank{
				Target:   name,
				Distance: fuzzy.LevenshteinDistance(query, name),
			})
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})

	n := maxSuggestions
	if len(ranks) < n {
		n = len(ranks)
	}
	suggestions := make([]string, n)
	for i := 0; i < n; i++ {
		suggestions[i] = ranks[i].Target
	}
	return suggestions
}
