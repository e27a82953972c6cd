package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"skyglobe.dev/flightsim/model"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

// SQLite implementation of Storage. Dataset metadata lives in one
// database; each dataset's records get a database of their own, keyed
// by content hash.
type SQLiteStorage struct {
	SQLiteConfig

	metaDB   *sql.DB
	datasets map[string]*sql.DB
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/flightsim.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS dataset (
    sha256 TEXT,
    url TEXT NOT NULL,
    retrieved_at TIMESTAMP NOT NULL,
    airports INTEGER NOT NULL,
    airlines INTEGER NOT NULL,
    aircraft INTEGER NOT NULL,
PRIMARY KEY (sha256, url)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating dataset table: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		metaDB:   db,
		datasets: map[string]*sql.DB{},
	}, nil
}

func (s *SQLiteStorage) ListDatasets(filter ListDatasetsFilter) ([]*DatasetMetadata, error) {
	query := `
SELECT sha256, url, retrieved_at, airports, airlines, aircraft
FROM dataset`

	conditions := []string{}
	params := []interface{}{}
	if filter.URL != "" {
		conditions = append(conditions, "url = ?")
		params = append(params, filter.URL)
	}
	if filter.SHA256 != "" {
		conditions = append(conditions, "sha256 = ?")
		params = append(params, filter.SHA256)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY retrieved_at DESC"

	rows, err := s.metaDB.Query(query, params...)
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

func (s *SQLiteStorage) WriteDatasetMetadata(metadata *DatasetMetadata) error {
	_, err := s.metaDB.Exec(`
INSERT INTO dataset (sha256, url, retrieved_at, airports, airlines, aircraft)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (sha256, url) DO UPDATE SET
    retrieved_at = excluded.retrieved_at,
    airports = excluded.airports,
    airlines = excluded.airlines,
    aircraft = excluded.aircraft`,
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

func (s *SQLiteStorage) DeleteDataset(url string, sha256 string) error {
	res, err := s.metaDB.Exec(`DELETE FROM dataset WHERE url = ? AND sha256 = ?`, url, sha256)
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

	// Keep the record database if another URL still references
	// the same hash.
	var refs int
	err = s.metaDB.QueryRow(`SELECT COUNT(*) FROM dataset WHERE sha256 = ?`, sha256).Scan(&refs)
	if err != nil {
		return fmt.Errorf("counting references: %w", err)
	}
	if refs == 0 {
		if db, found := s.datasets[sha256]; found {
			db.Close()
			delete(s.datasets, sha256)
		}
	}

	return nil
}

func (s *SQLiteStorage) open(dataset string) (*sql.DB, error) {
	if db, found := s.datasets[dataset]; found {
		return db, nil
	}

	sourceName := ":memory:"
	if s.OnDisk {
		sourceName = fmt.Sprintf("%s/%s.db", s.Directory, dataset)
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS airport (
    name TEXT NOT NULL,
    city TEXT NOT NULL,
    country TEXT NOT NULL,
    iata TEXT NOT NULL,
    icao TEXT NOT NULL,
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    altitude REAL NOT NULL,
    timezone TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS airline (
    name TEXT NOT NULL,
    alias TEXT NOT NULL,
    iata TEXT NOT NULL,
    icao TEXT NOT NULL,
    callsign TEXT NOT NULL,
    country TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aircraft (
    name TEXT NOT NULL,
    iata TEXT NOT NULL,
    icao TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS airport_name ON airport (name);
CREATE INDEX IF NOT EXISTS airline_name ON airline (name);
CREATE INDEX IF NOT EXISTS aircraft_name ON aircraft (name);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating record tables: %w", err)
	}

	s.datasets[dataset] = db
	return db, nil
}

func (s *SQLiteStorage) GetReader(dataset string) (DatasetReader, error) {
	db, err := s.open(dataset)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatasetReader{db: db}, nil
}

func (s *SQLiteStorage) GetWriter(dataset string) (DatasetWriter, error) {
	db, err := s.open(dataset)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
DELETE FROM airport;
DELETE FROM airline;
DELETE FROM aircraft;`)
	if err != nil {
		return nil, fmt.Errorf("clearing record tables: %w", err)
	}

	return &SQLiteDatasetWriter{db: db}, nil
}

type SQLiteDatasetWriter struct {
	db                 *sql.DB
	airportInsertQuery *sql.Stmt
	airportInsertTx    *sql.Tx
}

func (w *SQLiteDatasetWriter) BeginAirports() error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT INTO airport (name, city, country, iata, icao, lat, lon, altitude, timezone)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing airport insert: %w", err)
	}

	w.airportInsertTx = tx
	w.airportInsertQuery = stmt
	return nil
}

func (w *SQLiteDatasetWriter) WriteAirport(airport *model.Airport) error {
	if w.airportInsertQuery == nil {
		return fmt.Errorf("airport write outside BeginAirports/EndAirports")
	}

	_, err := w.airportInsertQuery.Exec(
		airport.Name,
		airport.City,
		airport.Country,
		airport.IATA,
		airport.ICAO,
		airport.Lat,
		airport.Lon,
		airport.Altitude,
		airport.Timezone,
	)
	if err != nil {
		return fmt.Errorf("inserting airport: %w", err)
	}

	return nil
}

func (w *SQLiteDatasetWriter) EndAirports() error {
	err := w.airportInsertQuery.Close()
	if err != nil {
		return fmt.Errorf("closing airport insert: %w", err)
	}
	err = w.airportInsertTx.Commit()
	if err != nil {
		return fmt.Errorf("committing airports: %w", err)
	}

	w.airportInsertQuery = nil
	w.airportInsertTx = nil
	return nil
}

func (w *SQLiteDatasetWriter) WriteAirline(airline *model.Airline) error {
	_, err := w.db.Exec(`
INSERT INTO airline (name, alias, iata, icao, callsign, country)
VALUES (?, ?, ?, ?, ?, ?)`,
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

func (w *SQLiteDatasetWriter) WriteAircraft(aircraft *model.Aircraft) error {
	_, err := w.db.Exec(`
INSERT INTO aircraft (name, iata, icao)
VALUES (?, ?, ?)`,
		aircraft.Name,
		aircraft.IATA,
		aircraft.ICAO,
	)
	if err != nil {
		return fmt.Errorf("inserting aircraft: %w", err)
	}
	return nil
}

func (w *SQLiteDatasetWriter) Close() error {
	return nil
}

type SQLiteDatasetReader struct {
	db *sql.DB
}

func (r *SQLiteDatasetReader) Airports() ([]*model.Airport, error) {
	rows, err := r.db.Query(`
SELECT name, city, country, iata, icao, lat, lon, altitude, timezone
FROM airport`)
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

func (r *SQLiteDatasetReader) Airlines() ([]*model.Airline, error) {
	rows, err := r.db.Query(`
SELECT name, alias, iata, icao, callsign, country
FROM airline`)
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

func (r *SQLiteDatasetReader) Aircraft() ([]*model.Aircraft, error) {
	rows, err := r.db.Query(`
SELECT name, iata, icao
FROM aircraft`)
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

func (r *SQLiteDatasetReader) FindAirport(query string) (*model.Airport, error) {
	if query == "" {
		return nil, nil
	}

	a := &model.Airport{}
	err := r.db.QueryRow(`
SELECT name, city, country, iata, icao, lat, lon, altitude, timezone
FROM airport
WHERE name = ? OR iata = ? OR icao = ?
LIMIT 1`, query, query, query).Scan(
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

func (r *SQLiteDatasetReader) FindAirline(query string) (*model.Airline, error) {
	if query == "" {
		return nil, nil
	}

	a := &model.Airline{}
	err := r.db.QueryRow(`
SELECT name, alias, iata, icao, callsign, country
FROM airline
WHERE name = ? OR iata = ? OR icao = ?
LIMIT 1`, query, query, query).Scan(
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

func (r *SQLiteDatasetReader) FindAircraft(query string) (*model.Aircraft, error) {
	if query == "" {
		return nil, nil
	}

	a := &model.Aircraft{}
	err := r.db.QueryRow(`
SELECT name, iata, icao
FROM aircraft
WHERE name = ? OR iata = ? OR icao = ?
LIMIT 1`, query, query, query).Scan(&a.Name, &a.IATA, &a.ICAO)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying aircraft: %w", err)
	}

	return a, nil
}

func (r *SQLiteDatasetReader) NearbyAirports(lat float64, lon float64, limit int) ([]model.Airport, error) {
	airports, err := r.Airports()
	if err != nil {
		return nil, fmt.Errorf("getting all airports: %w", err)
	}

	return sortNearby(airports, lat, lon, limit), nil
}
