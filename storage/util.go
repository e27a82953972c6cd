package storage

import (
	"sort"

	"skyglobe.dev/flightsim/geo"
	"skyglobe.dev/flightsim/model"
)

// Angular distance in degrees between two points given in degrees.
func angularDistance(lat0, lon0, lat1, lon1 float64) float64 {
	return geo.Haversine(geo.Radians(lat0), geo.Radians(lon0), geo.Radians(lat1), geo.Radians(lon1))
}

// Shared by the backends: order airports by distance from a point and
// truncate to limit.
func sortNearby(airports []*model.Airport, lat, lon float64, limit int) []model.Airport {
	sort.Slice(airports, func(i, j int) bool {
		di := angularDistance(lat, lon, airports[i].Lat, airports[i].Lon)
		dj := angularDistance(lat, lon, airports[j].Lat, airports[j].Lon)
		return di < dj
	})

	if limit > 0 && len(airports) > limit {
		airports = airports[:limit]
	}

	res := make([]model.Airport, 0, len(airports))
	for _, a := range airports {
		res = append(res, *a)
	}
	return res
}

// Matches a lookup query against a record's name and codes. Codes are
// only considered when the query is non-empty, so records with blank
// IATA/ICAO fields never match a blank query.
func matchesQuery(query, name, iata, icao string) bool {
	if query == "" {
		return false
	}
	return query == name || query == iata || query == icao
}
