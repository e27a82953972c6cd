package flightsim

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"skyglobe.dev/flightsim/downloader"
	"skyglobe.dev/flightsim/parse"
	"skyglobe.dev/flightsim/storage"
)

const (
	DefaultRefreshInterval = 7 * 24 * time.Hour
	DefaultTimeout         = 60 * time.Second
	DefaultMaxSize         = 32 << 20 // 32 MB per file
)

var ErrNoDataset = errors.New("no dataset found")

// The three CSV files making up a reference dataset. The airports URL
// doubles as the dataset's identifier in storage.
type Source struct {
	AirportsURL string
	AirlinesURL string
	AircraftURL string
}

// Manager keeps reference datasets in storage and fresh.
type Manager struct {
	RefreshInterval time.Duration
	Timeout         time.Duration
	MaxSize         int

	// CacheTTL is how long the Downloader may serve a cached copy of
	// a source's files. With a persistent Downloader (e.g.
	// downloader.NewFilesystem), a restarted process refreshes
	// without re-downloading.
	CacheTTL time.Duration

	Downloader downloader.Downloader
	Log        *logrus.Logger

	storage storage.Storage
}

// Creates a new Manager of reference data, on top of the given
// storage.
func NewManager(s storage.Storage) *Manager {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	return &Manager{
		RefreshInterval: DefaultRefreshInterval,
		Timeout:         DefaultTimeout,
		MaxSize:         DefaultMaxSize,
		CacheTTL:        DefaultRefreshInterval,

		Downloader: downloader.NewMemory(),
		Log:        log,

		storage: s,
	}
}

// Loads the most recently retrieved dataset for a source from
// storage. If none has been stored yet, ErrNoDataset is returned;
// call Refresh first.
func (m *Manager) Load(source Source) (*Database, error) {
	datasets, err := m.storage.ListDatasets(storage.ListDatasetsFilter{URL: source.AirportsURL})
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	if len(datasets) == 0 {
		return nil, ErrNoDataset
	}

	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].RetrievedAt.After(datasets[j].RetrievedAt)
	})

	reader, err := m.storage.GetReader(datasets[0].SHA256)
	if err != nil {
		return nil, fmt.Errorf("getting reader: %w", err)
	}

	return NewDatabase(reader, datasets[0]), nil
}

// Refreshes a source if its stored dataset is older than
// RefreshInterval (or missing). Downloads the three CSVs, and skips
// the parse when their combined hash is already in storage.
func (m *Manager) Refresh(ctx context.Context, source Source) error {
	datasets, err := m.storage.ListDatasets(storage.ListDatasetsFilter{URL: source.AirportsURL})
	if err != nil {
		return fmt.Errorf("listing datasets: %w", err)
	}

	now := time.Now().UTC()
	for _, d := range datasets {
		if d.RetrievedAt.After(now.Add(-m.RefreshInterval)) {
			m.Log.WithFields(logrus.Fields{
				"url":          source.AirportsURL,
				"retrieved_at": d.RetrievedAt,
			}).Debug("dataset still fresh")
			return nil
		}
	}

	urls := []string{source.AirportsURL, source.AirlinesURL, source.AircraftURL}
	bodies, err := m.Downloader.Fetch(ctx, urls, downloader.Options{
		Timeout:  m.Timeout,
		MaxSize:  m.MaxSize,
		CacheTTL: m.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("downloading dataset: %w", err)
	}

	h := sha256.New()
	for _, body := range bodies {
		h.Write(body)
	}
	hash := fmt.Sprintf("%x", h.Sum(nil))

	metadata := &storage.DatasetMetadata{}

	// The data we just downloaded may already be parsed in storage,
	// possibly under a different source URL.
	existing, err := m.storage.ListDatasets(storage.ListDatasetsFilter{SHA256: hash})
	if err != nil {
		return fmt.Errorf("listing datasets by hash: %w", err)
	}
	if len(existing) > 0 {
		*metadata = *existing[0]
	} else {
		writer, err := m.storage.GetWriter(hash)
		if err != nil {
			return fmt.Errorf("getting writer: %w", err)
		}

		metadata, err = parse.ParseDataset(writer, bodies[0], bodies[1], bodies[2])
		if err != nil {
			return fmt.Errorf("parsing: %w", err)
		}
	}

	metadata.SHA256 = hash
	metadata.URL = source.AirportsURL
	metadata.RetrievedAt = now

	err = m.storage.WriteDatasetMetadata(metadata)
	if err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	m.Log.WithFields(logrus.Fields{
		"url":      source.AirportsURL,
		"sha256":   hash[:8],
		"airports": metadata.Airports,
		"airlines": metadata.Airlines,
		"aircraft": metadata.Aircraft,
	}).Info("dataset refreshed")

	return nil
}
