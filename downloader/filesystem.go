package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Caches fetched datasets on disk, so a restarted process can skip the
// download. Each dataset gets a metadata file plus one file per body.
// Bodies are stored as-is, so a cached CSV stays inspectable.
type Filesystem struct {
	dir   string
	mutex sync.Mutex

	TimeNow func() time.Time
}

type fsMetadata struct {
	URLs        []string  `json:"urls"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

func NewFilesystem(dir string) (*Filesystem, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	return &Filesystem{
		dir:     dir,
		TimeNow: time.Now,
	}, nil
}

func (f *Filesystem) Fetch(ctx context.Context, urls []string, options Options) ([][]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	key := fmt.Sprintf("%x", sha256.Sum256([]byte(datasetKey(urls))))

	if options.CacheTTL > 0 {
		bodies, err := f.read(key, len(urls), options.CacheTTL)
		if err != nil {
			return nil, err
		}
		if bodies != nil {
			return bodies, nil
		}
	}

	bodies, err := HTTPFetch(ctx, urls, options)
	if err != nil {
		return nil, err
	}

	if options.CacheTTL > 0 {
		err = f.write(key, urls, bodies)
		if err != nil {
			return nil, err
		}
	}

	return bodies, nil
}

// Reads a cached dataset. A miss, an expired entry, or an entry for a
// different number of files all come back as (nil, nil).
func (f *Filesystem) read(key string, n int, ttl time.Duration) ([][]byte, error) {
	buf, err := os.ReadFile(f.metaPath(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache metadata: %w", err)
	}

	var meta fsMetadata
	err = json.Unmarshal(buf, &meta)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling cache metadata: %w", err)
	}
	if len(meta.URLs) != n || !meta.RetrievedAt.Add(ttl).After(f.TimeNow()) {
		return nil, nil
	}

	bodies := make([][]byte, n)
	for i := range bodies {
		bodies[i], err = os.ReadFile(f.bodyPath(key, i))
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading cached body: %w", err)
		}
	}

	return bodies, nil
}

// Writes the bodies first and the metadata last, so an interrupted
// write never leaves a servable entry pointing at missing bodies.
func (f *Filesystem) write(key string, urls []string, bodies [][]byte) error {
	for i, body := range bodies {
		err := os.WriteFile(f.bodyPath(key, i), body, 0644)
		if err != nil {
			return fmt.Errorf("writing cached body: %w", err)
		}
	}

	buf, err := json.Marshal(fsMetadata{
		URLs:        urls,
		RetrievedAt: f.TimeNow().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshalling cache metadata: %w", err)
	}

	err = os.WriteFile(f.metaPath(key), buf, 0644)
	if err != nil {
		return fmt.Errorf("writing cache metadata: %w", err)
	}

	return nil
}

func (f *Filesystem) metaPath(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *Filesystem) bodyPath(key string, i int) string {
	return filepath.Join(f.dir, fmt.Sprintf("%s.%d", key, i))
}
