package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/config"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/images"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

// ErrListing marks a failure of the bucket listing itself. It is the only
// error that makes a catalog fetch fail.
var ErrListing = errors.New("catalog listing failed")

// Sidecar bodies are small JSON documents
const maxMetadataBytes = 4 << 20

// Recorder observes catalog fetches. monitoring.Metrics implements it.
type Recorder interface {
	ObserveCatalogFetch(outcome string, elapsed time.Duration, images int)
	ObserveMetadataFetch(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCatalogFetch(string, time.Duration, int) {}
func (nopRecorder) ObserveMetadataFetch(string)                    {}

// Client lists the image bucket and joins each image with its sidecar
// detection record
type Client struct {
	ListURL        string
	AssetURL       string
	ImagesPrefix   string
	MetadataPrefix string
	Concurrency    int
	HTTPClient     *http.Client
	recorder       Recorder
}

// NewClient creates a catalog client from the gallery configuration
func NewClient(cfg *config.Config) *Client {
	return &Client{
		ListURL:        cfg.ListURL,
		AssetURL:       cfg.AssetURL,
		ImagesPrefix:   cfg.ImagesPrefix,
		MetadataPrefix: cfg.MetadataPrefix,
		Concurrency:    cfg.MetadataConcurrency,
		HTTPClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		recorder: nopRecorder{},
	}
}

// WithRecorder attaches a metrics recorder
func (c *Client) WithRecorder(r Recorder) *Client {
	if r == nil {
		r = nopRecorder{}
	}
	c.recorder = r
	return c
}

// ListingURL is the ListObjectsV2 request for the images prefix
func (c *Client) ListingURL() string {
	q := url.Values{}
	q.Set("list-type", "2")
	q.Set("prefix", c.ImagesPrefix)
	return strings.TrimSuffix(c.ListURL, "/") + "/?" + q.Encode()
}

// FetchListing retrieves and decodes the first listing page. All errors
// wrap ErrListing.
func (c *Client) FetchListing(ctx context.Context) (*Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ListingURL(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrListing, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list images: %w", ErrListing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: listing returned status %d: %s", ErrListing, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	listing, err := DecodeListing(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListing, err)
	}

	return listing, nil
}

// FetchMetadata retrieves the sidecar record for an image key. Callers in
// the catalog treat every error as "no metadata".
func (c *Client) FetchMetadata(ctx context.Context, key string) (models.Metadata, error) {
	metadataURL := images.MetadataURL(c.AssetURL, c.MetadataPrefix, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, http.NoBody)
	if err != nil {
		c.recorder.ObserveMetadataFetch("error")
		return models.Metadata{}, fmt.Errorf("failed to create metadata request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.recorder.ObserveMetadataFetch("error")
		return models.Metadata{}, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.recorder.ObserveMetadataFetch("missing")
		return models.Metadata{}, fmt.Errorf("metadata returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		c.recorder.ObserveMetadataFetch("error")
		return models.Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	md, err := models.ParseMetadata(body)
	if err != nil {
		c.recorder.ObserveMetadataFetch("malformed")
		return models.Metadata{}, err
	}

	c.recorder.ObserveMetadataFetch(md.Kind.String())
	return md, nil
}

// JoinMetadata fetches the sidecar of every key concurrently. The result
// is index-aligned with keys; failed fetches leave MetadataNone.
func (c *Client) JoinMetadata(ctx context.Context, keys []string) []models.Metadata {
	results := make([]models.Metadata, len(keys))

	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, key := range keys {
		wg.Add(1)
		go func(idx int, key string) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			md, err := c.FetchMetadata(ctx, key)
			if err != nil {
				slog.Debug("No metadata found", "key", key, "error", err)
			}
			results[idx] = md
		}(i, key)
	}

	wg.Wait()
	return results
}

// Assemble lists the bucket, joins sidecars and returns a new snapshot in
// listing order. Only listing failures are returned as errors.
func (c *Client) Assemble(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog fetch canceled: %w", err)
	}

	start := time.Now()

	listing, err := c.FetchListing(ctx)
	if err != nil {
		c.recorder.ObserveCatalogFetch("failure", time.Since(start), 0)
		return nil, err
	}

	if listing.Truncated {
		slog.Warn("Bucket listing is truncated, showing first page only", "images", len(listing.Entries))
	}

	keys := make([]string, len(listing.Entries))
	for i, e := range listing.Entries {
		keys[i] = e.Key
	}

	metadata := c.JoinMetadata(ctx, keys)

	if err := ctx.Err(); err != nil {
		c.recorder.ObserveCatalogFetch("canceled", time.Since(start), 0)
		return nil, fmt.Errorf("catalog assembly interrupted: %w", err)
	}

	records := make([]models.ImageRecord, len(listing.Entries))
	for i, e := range listing.Entries {
		records[i] = models.ImageRecord{
			Key:          e.Key,
			URL:          images.ImageURL(c.AssetURL, c.ImagesPrefix, e.Key),
			LastModified: e.LastModified,
			Size:         e.Size,
			Metadata:     metadata[i],
		}
	}

	elapsed := time.Since(start)
	c.recorder.ObserveCatalogFetch("success", elapsed, len(records))
	slog.Info("Catalog assembled", "images", len(records), "elapsed", elapsed)

	return &models.Snapshot{
		Images:    records,
		FetchedAt: timeNow().UTC(),
		Truncated: listing.Truncated,
	}, nil
}
