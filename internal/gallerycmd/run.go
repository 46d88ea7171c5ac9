package gallerycmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/catalog"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/config"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/gallery"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/images"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/query"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/report"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/snapshot"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/species"
)

// ConfigLoader returns the effective configuration for a command run
type ConfigLoader func() (*config.Config, error)

// NewFetcher reads an exported snapshot when snapshotPath is set and the
// live bucket otherwise
func NewFetcher(cfg *config.Config, snapshotPath string) gallery.Fetcher {
	if snapshotPath != "" {
		slog.Debug("Using exported snapshot", "path", snapshotPath)
		return snapshot.File{Path: snapshotPath}
	}
	return catalog.NewClient(cfg)
}

func load(ctx context.Context, src gallery.Fetcher) (*models.Snapshot, error) {
	snap, err := gallery.NewSession(src).Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if snap.Truncated {
		slog.Warn("Catalog is truncated to the first listing page")
	}
	return snap, nil
}

func executeList(ctx context.Context, w io.Writer, src gallery.Fetcher, v query.View, pageSize int, format report.Format) error {
	snap, err := load(ctx, src)
	if err != nil {
		return err
	}

	results := query.Apply(snap.Images, v.Search, v.Sort)
	return report.WritePage(w, format, report.NewPage(v, query.Run(v, results, pageSize)))
}

func executeShow(ctx context.Context, w io.Writer, src gallery.Fetcher, filename string, format report.Format) error {
	snap, err := load(ctx, src)
	if err != nil {
		return err
	}

	name := images.Filename(filename)
	for _, rec := range snap.Images {
		if images.Filename(rec.Key) == name {
			return report.WriteDetail(w, format, report.NewDetail(rec))
		}
	}
	return fmt.Errorf("image not found: %s", name)
}

func executeSpecies(ctx context.Context, w io.Writer, src gallery.Fetcher, format report.Format) error {
	snap, err := load(ctx, src)
	if err != nil {
		return err
	}
	return report.WriteSpecies(w, format, species.Totals(snap.Images))
}

func executeExport(ctx context.Context, src gallery.Fetcher, outputPath string) error {
	snap, err := load(ctx, src)
	if err != nil {
		return err
	}

	if err := snapshot.Export(outputPath, snap); err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}

	slog.Info("Catalog exported", "path", outputPath, "images", len(snap.Images))
	return nil
}

func executeDownload(ctx context.Context, w io.Writer, src gallery.Fetcher, fetcher *images.Fetcher, v query.View, pageSize int, all bool, outputDir string) error {
	snap, err := load(ctx, src)
	if err != nil {
		return err
	}

	selected := query.Apply(snap.Images, v.Search, v.Sort)
	if !all {
		selected = query.Paginate(selected, pageSize, v.Page)
	}
	if len(selected) == 0 {
		fmt.Fprintln(w, "No images to download.")
		return nil
	}

	urls := make([]string, len(selected))
	for i, rec := range selected {
		urls[i] = rec.URL
	}

	results, err := fetcher.DownloadAll(ctx, urls, outputDir)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAILED  %s: %v\n", images.Filename(r.URL), r.Err)
			continue
		}
		fmt.Fprintf(w, "saved   %s (%s)\n", r.Path, report.FormatSize(r.Bytes))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(results))
	}
	return nil
}
