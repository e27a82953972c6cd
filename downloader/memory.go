package downloader

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Caches fetched datasets in memory
type Memory struct {
	mutex sync.Mutex
	cache map[string]memoryEntry

	TimeNow func() time.Time
}

type memoryEntry struct {
	bodies  [][]byte
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{
		cache:   map[string]memoryEntry{},
		TimeNow: time.Now,
	}
}

func (d *Memory) Fetch(ctx context.Context, urls []string, options Options) ([][]byte, error) {
	key := datasetKey(urls)

	if options.CacheTTL > 0 {
		d.mutex.Lock()
		defer d.mutex.Unlock()

		if entry, ok := d.cache[key]; ok && entry.expires.After(d.TimeNow()) {
			return entry.bodies, nil
		}
	}

	bodies, err := HTTPFetch(ctx, urls, options)
	if err != nil {
		return nil, err
	}

	if options.CacheTTL > 0 {
		d.cache[key] = memoryEntry{
			bodies:  bodies,
			expires: d.TimeNow().Add(options.CacheTTL),
		}
	}

	return bodies, nil
}

// The cache key for a set of URLs fetched as one dataset.
func datasetKey(urls []string) string {
	return strings.Join(urls, "\n")
}
