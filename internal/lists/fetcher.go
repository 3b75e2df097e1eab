// Package lists implements downloading and normalization of remote
// blocklists distributed in hosts-file format.
package lists

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/errors"
	"github.com/maksimkurb/hostsfilter/internal/hashing"
	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
	"github.com/maksimkurb/hostsfilter/internal/log"
)

// maxConcurrentFetches bounds the number of parallel list downloads.
const maxConcurrentFetches = 4

// FetchResult is the per-source outcome of a fetch-all operation. A failed
// download sets Err and leaves Entries nil; it never aborts other sources.
type FetchResult struct {
	Source     *config.Source
	Entries    []hostsfile.Entry
	ParseSkips int
	Unchanged  bool
	Err        error
}

// Fetcher downloads the enabled sources and keeps an on-disk copy of each
// list (with an MD5 checksum sibling for change detection) in the cache
// directory.
type Fetcher struct {
	cfg    *config.Config
	client *http.Client
}

func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.GetFetchTimeoutSeconds()) * time.Second,
		},
	}
}

// FetchAll downloads every source in the given selection concurrently.
// Results are returned in selection order regardless of completion timing.
// Per-source failures are recorded in the result, not returned as an error;
// the returned error covers fatal conditions only (cache dir creation).
func (f *Fetcher) FetchAll(ctx context.Context, selection []string) ([]FetchResult, error) {
	if err := os.MkdirAll(f.cfg.GetAbsCacheDir(), 0755); err != nil {
		return nil, errors.NewFetchError("failed to create cache directory", err)
	}

	sources := make([]*config.Source, len(selection))
	for i, name := range selection {
		src, err := f.cfg.GetSourceByName(name)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown source \"%s\"", name), nil)
		}
		sources[i] = src
	}

	results := make([]FetchResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// fetchOne downloads a single source, updates its cache file if the content
// changed and parses the downloaded list.
func (f *Fetcher) fetchOne(ctx context.Context, src *config.Source) FetchResult {
	result := FetchResult{Source: src}

	log.Infof("Downloading list \"%s\" from URL: %s", src.Name, src.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		result.Err = errors.NewFetchError(fmt.Sprintf("failed to build request for list \"%s\"", src.Name), err)
		return result
	}
	req.Header.Set("User-Agent", f.cfg.GetUserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		result.Err = errors.NewFetchError(fmt.Sprintf("failed to download list \"%s\"", src.Name), err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Err = errors.NewFetchError(fmt.Sprintf("failed to download list \"%s\": %s", src.Name, resp.Status), nil)
		return result
	}

	bodyProxy := hashing.NewMD5ReaderProxy(resp.Body)
	content, err := io.ReadAll(bodyProxy)
	if err != nil {
		result.Err = errors.NewFetchError(fmt.Sprintf("failed to read response for list \"%s\"", src.Name), err)
		return result
	}

	cachePath := src.CachePath(f.cfg)
	if changed, err := IsFileChanged(bodyProxy, cachePath); err != nil {
		log.Errorf("Failed to calculate list \"%s\" checksum: %v", src.Name, err)
	} else if !changed {
		log.Infof("List \"%s\" is not changed, skipping write to disk", src.Name)
		result.Unchanged = true
	}

	if !result.Unchanged {
		if err := os.WriteFile(cachePath, content, 0644); err != nil {
			result.Err = errors.NewFetchError(fmt.Sprintf("failed to write list file to %s", cachePath), err)
			return result
		}
		if err := WriteChecksum(bodyProxy, cachePath); err != nil {
			result.Err = errors.NewFetchError("failed to write list checksum", err)
			return result
		}
	}

	result.Entries, result.ParseSkips = hostsfile.Parse(string(content), src.Name)
	if result.ParseSkips > 0 {
		log.Warnf("List \"%s\": skipped %d malformed line(s)", src.Name, result.ParseSkips)
	}

	log.Infof("List \"%s\" downloaded successfully (%d entries)", src.Name, len(result.Entries))
	return result
}

// LoadCached parses the on-disk copy of a source without downloading it.
func LoadCached(cfg *config.Config, src *config.Source) (FetchResult, error) {
	result := FetchResult{Source: src}

	content, err := os.ReadFile(src.CachePath(cfg))
	if err != nil {
		if os.IsNotExist(err) {
			return result, errors.NewFetchError(
				fmt.Sprintf("list \"%s\" is not downloaded yet, run 'hostsfilter fetch' first", src.Name), err)
		}
		return result, errors.NewFetchError(fmt.Sprintf("failed to read cached list \"%s\"", src.Name), err)
	}

	result.Entries, result.ParseSkips = hostsfile.Parse(string(content), src.Name)
	return result, nil
}
