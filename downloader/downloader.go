package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Options for fetching a dataset.
type Options struct {
	// Per-file size cap. A larger response is an error, not a silent
	// truncation. Zero means no cap.
	MaxSize int

	Timeout time.Duration

	// How long a cached copy of the dataset may be served. Zero
	// disables caching.
	CacheTTL time.Duration
}

// A Downloader fetches the files making up a reference dataset. The
// fetch is all or nothing: implementations that cache do so for the
// dataset as a whole, never mixing cached and freshly downloaded
// files.
type Downloader interface {
	Fetch(ctx context.Context, urls []string, options Options) ([][]byte, error)
}

// HTTPFetch downloads each URL in turn. Doesn't cache. Provided as
// convenience for implementing custom Downloaders.
func HTTPFetch(ctx context.Context, urls []string, options Options) ([][]byte, error) {
	client := &http.Client{
		Timeout: options.Timeout,
	}

	bodies := make([][]byte, len(urls))
	for i, url := range urls {
		body, err := httpGet(ctx, client, url, options.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", url, err)
		}
		bodies[i] = body
	}

	return bodies, nil
}

func httpGet(ctx context.Context, client *http.Client, url string, maxSize int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if maxSize > 0 {
		reader = io.LimitReader(resp.Body, int64(maxSize)+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if maxSize > 0 && len(body) > maxSize {
		return nil, fmt.Errorf("body exceeds %d bytes", maxSize)
	}

	return body, nil
}
