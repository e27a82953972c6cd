package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"skyglobe.dev/flightsim/model"
)

const PSQLAirportBatchSize = 1000

// Postgres implementation of Storage. All datasets share one
// database; records carry their dataset's hash.
type PSQLStorage struct {
	db *sql.DB
}

type PSQLDatasetWriter struct {
	id         string
	db         *sql.DB
	airportBuf []model.Airport
	batching   bool
}

type PSQLDatasetReader struct {
	id string
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`
DROP TABLE IF EXISTS dataset;
DROP TABLE IF EXISTS airport;
DROP TABLE IF EXISTS airline;
DROP TABLE IF EXISTS aircraft;`)
		if err != nil {
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS dataset (
    sha256 TEXT,
    url TEXT NOT NULL,
    retrieved_at TIMESTAMPTZ NOT NULL,
    airports INTEGER NOT NULL,
    airlines INTEGER NOT NULL,
    aircraft INTEGER NOT NULL,
PRIMARY KEY (sha256, url)
);

CREATE TABLE IF NOT EXISTS airport (
    dataset TEXT NOT NULL,
    name TEXT NOT NULL,
    city TEXT NOT NULL,
    country TEXT NOT NULL,
    iata TEXT NOT NULL,
    icao TEXT NOT NULL,
    lat DOUBLE PRECISION NOT NULL,
    lon DOUBLE PRECISION NOT NULL,
    altitude DOUBLE PRECISION NOT NULL,
    timezone TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS airline (
    dataset TEXT NOT NULL,
    name TEXT NOT NULL,
    alias TEXT NOT NULL,
    iata TEXT NOT NULL,
    icao TEXT NOT NULL,
    callsign TEXT NOT NULL,
    country TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aircraft (
    dataset TEXT NOT NULL,
    name TEXT NOT NULL,
    iata TEXT NOT NULL,
    icao TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS airport_dataset_name ON airport (dataset, name);
CREATE INDEX IF NOT EXISTS airline_dataset_name ON airline (dataset, name);
CREATE INDEX IF NOT EXISTS aircraft_dataset_name ON aircraft (dataset, name);`)
	if err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &PSQLStorage{db: db}, nil
}

func (s *PSQLStorage) ListDatasets(filter ListDatasetsFilter) ([]*DatasetMetadata, error) {
	query := `
SELECT sha256, url, retrieved_at, airports, airlines, aircraft
FROM dataset`

	conditions := []string{}
	params := []interface{}{}
	if filter.URL != "" {
		params = append(params, filter.URL)
		conditions = append(conditions, fmt.Sprintf("url = $%d", len(params)))
	}
	if filter.SHA256 != "" {
		params = append(params, filter.SHA256)
		conditions = append(conditions, fmt.Sprintf("sha256 = $%d", len(params)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY retrieved_at DESC"

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*DatasetMetadata
	for rows.Next() {
		var d DatasetMetadata
		err := rows.Scan(
			&d.SHA256,
			&d.URL,
			&d.RetrievedAt,
			&d.Airports,
			&d.Airlines,
			&d.Aircraft,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		datasets = append(datasets, &d)
	}

	return datasets, nil
}

func (s *PSQLStorage) WriteDatasetMetadata(metadata *DatasetMetadata) error {
	_, err := s.db.Exec(`
INSERT INTO dataset (sha256, url, retrieved_at, airports, airlines, aircraft)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (sha256, url) DO UPDATE SET
    retrieved_at = EXCLUDED.retrieved_at,
    airports = EXCLUDED.airports,
    airlines = EXCLUDED.airlines,
    aircraft = EXCLUDED.aircraft`,
		metadata.SHA256,
		metadata.URL,
		metadata.RetrievedAt,
		metadata.Airports,
		metadata.Airlines,
		metadata.Aircraft,
	)
	if err != nil {
		return fmt.Errorf("upserting dataset: %w", err)
	}

	return nil
}

func (s *PSQLStorage) DeleteDataset(url string, sha256 string) error {
	res, err := s.db.Exec(`DELETE FROM dataset WHERE url = $1 AND sha256 = $2`, url, sha256)
	if err != nil {
		return fmt.Errorf("deleting dataset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("dataset not found")
	}

	var refs int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM dataset WHERE sha256 = $1`, sha256).Scan(&refs)
	if err != nil {
		return fmt.Errorf("counting references: %w", err)
	}
	if refs == 0 {
		for _, table := range []string{"airport", "airline", "aircraft"} {
			_, err = s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE dataset = $1`, table), sha256)
			if err != nil {
				return fmt.Errorf("deleting %s records: %w", table, err)
			}
		}
	}

	return nil
}

func (s *PSQLStorage) GetReader(dataset string) (DatasetReader, error) {
	return &PSQLDatasetReader{id: dataset, db: s.db}, nil
}

func (s *PSQLStorage) GetWriter(dataset string) (DatasetWriter, error) {
	for _, table := range []string{"airport", "airline", "aircraft"} {
		_, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE dataset = $1`, table), dataset)
		if err != nil {
			return nil, fmt.Errorf("clearing %s records: %w", table, err)
		}
	}

	return &PSQLDatasetWriter{id: dataset, db: s.db}, nil
}

func (w *PSQLDatasetWriter) BeginAirports() error {
	w.batching = true
	return nil
}

func (w *PSQLDatasetWriter) WriteAirport(airport *model.Airport) error {
	if !w.batching {
		return fmt.Errorf("airport write outside BeginAirports/EndAirports")
	}

	w.airportBuf = append(w.airportBuf, *airport)
	if len(w.airportBuf) >= PSQLAirportBatchSize {
		return w.flushAirports()
	}
	return nil
}

func (w *PSQLDatasetWriter) EndAirports() error {
	if err := w.flushAirports(); err != nil {
		return err
	}
	w.batching = false
	return nil
}

func (w *PSQLDatasetWriter) flushAirports() error {
	if len(w.airportBuf) == 0 {
		return nil
	}

	values := make([]string, 0, len(w.airportBuf))
	params := make([]interface{}, 0, len(w.airportBuf)*10)
	for i, a := range w.airportBuf {
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*10+1, i*10+2, i*10+3, i*10+4, i*10+5, i*10+6, i*10+7, i*10+8, i*10+9, i*10+10,
		))
		params = append(params,
			w.id, a.Name, a.City, a.Country, a.IATA, a.ICAO, a.Lat, a.Lon, a.Altitude, a.Timezone,
		)
	}

	_, err := w.db.Exec(`
INSERT INTO airport (dataset, name, city, country, iata, icao, lat, lon, altitude, timezone)
VALUES `+strings.Join(values, ", "), params...)
	if err != nil {
		return fmt.Errorf("inserting airports: %w", err)
	}

	w.airportBuf = w.airportBuf[:0]
	return nil
}

func (w *PSQLDatasetWriter) WriteAirline(airline *model.Airline) error {
	_, err := w.db.Exec(`
INSERT INTO airline (dataset, name, alias, iata, icao, callsign, country)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.id,
		airline.Name,
		airline.Alias,
		airline.IATA,
		airline.ICAO,
		airline.Callsign,
		airline.Country,
	)
	if err != nil {
		return fmt.Errorf("inserting airline: %w", err)
	}
	return nil
}

func (w *PSQLDatasetWriter) WriteAircraft(aircraft *model.Aircraft) error {
	_, err := w.db.Exec(`
INSERT INTO aircraft (dataset, name, iata, icao)
VALUES ($1, $2, $3, $4)`,
		w.id,
		aircraft.Name,
		aircraft.IATA,
		aircraft.ICAO,
	)
	if err != nil {
		return fmt.Errorf("inserting aircraft: %w", err)
	}
	return nil
}

func (w *PSQLDatasetWriter) Close() error {
	return w.flushAirports()
}

func (r *PSQLDatasetReader) Airports() ([]*model.Airport, error) {
	rows, err := r.db.Query(`
SELECT name, city, country, iata, icao, lat, lon, altitude, timezone
FROM airport
WHERE dataset = $1`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying airports: %w", err)
	}
	defer rows.Close()

	airports := []*model.Airport{}
	for rows.Next() {
		a := &model.Airport{}
		err := rows.Scan(&a.Name, &a.City, &a.Country, &a.IATA, &a.ICAO, &a.Lat, &a.Lon, &a.Altitude, &a.Timezone)
		if err != nil {
			return nil, fmt.Errorf("scanning airport: %w", err)
		}
		airports = append(airports, a)
	}

	return airports, nil
}

func (r *PSQLDatasetReader) Airlines() ([]*model.Airline, error) {
	rows, err := r.db.Query(`
SELECT name, alias, iata, icao, callsign, country
FROM airline
WHERE dataset = $1`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying airlines: %w", err)
	}
	defer rows.Close()

	airlines := []*model.Airline{}
	for rows.Next() {
		a := &model.Airline{}
		err := rows.Scan(&a.Name, &a.Alias, &a.IATA, &a.ICAO, &a.Callsign, &a.Country)
		if err != nil {
			return nil, fmt.Errorf("scanning airline: %w", err)
		}
		airlines = append(airlines, a)
	}

	return airlines, nil
}

func (r *PSQLDatasetReader) Aircraft() ([]*model.Aircraft, error) {
	rows, err := r.db.Query(`
SELECT name, iata, icao
FROM aircraft
WHERE dataset = $1`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying aircraft: %w", err)
	}
	defer rows.Close()

	aircraft := []*model.Aircraft{}
	for rows.Next() {
		a := &model.Aircraft{}
		err := rows.Scan(&a.Name, &a.IATA, &a.ICAO)
		if err != nil {
			return nil, fmt.Errorf("scanning aircraft: %w", err)
		}
		aircraft = append(aircraft, a)
	}

	return aircraft, nil
}

func (r *PSQLDatasetReader) FindAirport(query string) (*model.Airport, error) {
	if query == "" {
		return nil, nil
	}

	a := &model.Airport{}
	err := r.db.QueryRow(`
SELECT name, city, country, iata, icao, lat, lon, altitude, timezone
FROM airport
WHERE dataset = $1 AND (name = $2 OR iata = $2 OR icao = $2)
LIMIT 1`, r.id, query).Scan(
		&a.Name, &a.City, &a.Country, &a.IATA, &a.ICAO, &a.Lat, &a.Lon, &a.Altitude, &a.Timezone,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying airport: %w", err)
	}

	return a, nil
}

func (r *PSQLDatasetReader) FindAirline(query string) (*model.Airline, error) {
	if query == "" {
		return nil, nil
	}

	a := &model.Airline{}
	err := r.db.QueryRow(`
SELECT name, alias, iata, icao, callsign, country
FROM airline
WHERE dataset = $1 AND (name = $2 OR iata = $2 OR icao = $2)
LIMIT 1`, r.id, query).Scan(
		&a.Name, &a.Alias, &a.IATA, &a.ICAO, &a.Callsign, &a.Country,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying airline: %w", err)
	}

	return a, nil
}

func (r *PSQLDatasetReader) FindAircraft(query string) (*model.Aircraft, error) {
	if query == "" {
		return nil, nil
	}

	a := &model.Aircraft{}
	err := r.db.QueryRow(`
SELECT name, iata, icao
FROM aircraft
WHERE dataset = $1 AND (name = $2 OR iata = $2 OR icao = $2)
LIMIT 1`, r.id, query).Scan(&a.Name, &a.IATA, &a.ICAO)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying aircraft: %w", err)
	}

	return a, nil
}

func (r *PSQLDatasetReader) NearbyAirports(lat float64, lon float64, limit int) ([]model.Airport, error) {
	airports, err := r.Airports()
	if err != nil {
		return nil, fmt.Errorf("getting all airports: %w", err)
	}

	return sortNearby(airports, lat, lon, limit), nil
}
