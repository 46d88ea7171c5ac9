package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Fetcher downloads gallery images from the CDN
type Fetcher struct {
	HTTPClient  *http.Client
	Concurrency int
}

// NewFetcher creates a new image fetcher
func NewFetcher(timeout time.Duration, concurrency int) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Concurrency: concurrency,
	}
}

// DownloadResult reports the outcome for one image
type DownloadResult struct {
	URL   string
	Path  string
	Bytes int64
	Err   error
}

// DownloadAll saves every URL into outputDir under its filename. Results
// are in the order of urls; one failed image does not stop the others.
func (f *Fetcher) DownloadAll(ctx context.Context, urls []string, outputDir string) ([]DownloadResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	concurrency := f.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]DownloadResult, len(urls))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, imageURL string) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			name, err := localName(imageURL)
			if err != nil {
				slog.Warn("Skipping image with unsafe filename", "url", imageURL, "error", err)
				results[idx] = DownloadResult{URL: imageURL, Err: err}
				return
			}
			outputPath := filepath.Join(outputDir, name)
			n, err := f.Download(ctx, imageURL, outputPath)
			if err != nil {
				slog.Warn("Failed to download image", "url", imageURL, "error", err)
			}
			results[idx] = DownloadResult{URL: imageURL, Path: outputPath, Bytes: n, Err: err}
		}(i, u)
	}

	wg.Wait()
	return results, nil
}

// localName is the file name an image URL is saved under. Names that
// would resolve outside the output directory are rejected.
func localName(imageURL string) (string, error) {
	name := Filename(imageURL)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("unsafe image filename %q", name)
	}
	return name, nil
}

// Download streams one image to outputPath. A partial file is removed on
// failure.
func (f *Fetcher) Download(ctx context.Context, imageURL, outputPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create image file: %w", err)
	}

	n, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(outputPath)
		return 0, fmt.Errorf("failed to write image file: %w", err)
	}

	return n, nil
}
