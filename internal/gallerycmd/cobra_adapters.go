package gallerycmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/images"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/query"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/report"
)

// NewListCmd creates the list command for browsing the catalog
func NewListCmd(loadConfig ConfigLoader) *cobra.Command {
	var search string
	var sortKey string
	var page int
	var format string
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog images, one page at a time",
		Long: `List the images in the gallery bucket.

Images can be filtered by species (common or scientific name, case
insensitive) and ordered by capture date or number of detected animals.
Capture dates come from the camera filename and fall back to the upload
time.`,
		Example: `  # Newest images first
  buckshot gallery list

  # Second page of deer pictures with the most animals first
  buckshot gallery list --search deer --sort animals-desc --page 2

  # Browse an exported snapshot as CSV
  buckshot gallery list --snapshot catalog.parquet --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			key, ok := query.ParseSort(sortKey)
			if !ok {
				return fmt.Errorf("unsupported sort: %s", sortKey)
			}

			v := query.NewView().WithSearch(search).WithSort(key).WithPage(page)
			return executeList(cmd.Context(), cmd.OutOrStdout(), NewFetcher(cfg, snapshotPath), v, cfg.PageSize, f)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show images with a matching species")
	cmd.Flags().StringVar(&sortKey, "sort", string(query.DefaultSort), "Sort order (date-desc, date-asc, animals-desc, animals-asc)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	addCommonFlags(cmd, &format, &snapshotPath)

	return cmd
}

// NewShowCmd creates the show command for a single image
func NewShowCmd(loadConfig ConfigLoader) *cobra.Command {
	var format string
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Show capture date, size and detected species of one image",
		Args:  cobra.ExactArgs(1),
		Example: `  buckshot gallery show 2026-01-19_13:48:20.123456.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return executeShow(cmd.Context(), cmd.OutOrStdout(), NewFetcher(cfg, snapshotPath), args[0], f)
		},
	}

	addCommonFlags(cmd, &format, &snapshotPath)

	return cmd
}

// NewSpeciesCmd creates the species command for catalog-wide totals
func NewSpeciesCmd(loadConfig ConfigLoader) *cobra.Command {
	var format string
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "species",
		Short: "Count detected species across the whole catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return executeSpecies(cmd.Context(), cmd.OutOrStdout(), NewFetcher(cfg, snapshotPath), f)
		},
	}

	addCommonFlags(cmd, &format, &snapshotPath)

	return cmd
}

// NewExportCmd creates the export command for writing a catalog snapshot
func NewExportCmd(loadConfig ConfigLoader) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch the catalog and write it to a Parquet or JSONL file",
		Long: `Fetch the full catalog, including every sidecar detection record, and
write it to a file. The file format follows the extension (.parquet or
.jsonl). Exported files can be browsed offline with --snapshot.`,
		Example: `  buckshot gallery export --output catalog.parquet
  buckshot gallery list --snapshot catalog.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return executeExport(cmd.Context(), NewFetcher(cfg, ""), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "catalog.parquet", "Output file (.parquet or .jsonl)")

	return cmd
}

// NewDownloadCmd creates the download command for saving images locally
func NewDownloadCmd(loadConfig ConfigLoader) *cobra.Command {
	var search string
	var sortKey string
	var page int
	var all bool
	var outputDir string
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the images of a results page from the CDN",
		Long: `Download the images selected by --search, --sort and --page into a
local directory. With --all every matching image is downloaded.`,
		Example: `  # Save the newest page of images
  buckshot gallery download --output ./images

  # Save every image with a fox in it
  buckshot gallery download --search fox --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			key, ok := query.ParseSort(sortKey)
			if !ok {
				return fmt.Errorf("unsupported sort: %s", sortKey)
			}

			v := query.NewView().WithSearch(search).WithSort(key).WithPage(page)
			fetcher := images.NewFetcher(cfg.RequestTimeout, cfg.MetadataConcurrency)
			return executeDownload(cmd.Context(), cmd.OutOrStdout(), NewFetcher(cfg, snapshotPath), fetcher, v, cfg.PageSize, all, outputDir)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only download images with a matching species")
	cmd.Flags().StringVar(&sortKey, "sort", string(query.DefaultSort), "Sort order (date-desc, date-asc, animals-desc, animals-asc)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().BoolVar(&all, "all", false, "Download every matching image, not just one page")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "images", "Output directory")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Read an exported snapshot instead of the bucket")

	return cmd
}

func addCommonFlags(cmd *cobra.Command, format, snapshotPath *string) {
	cmd.Flags().StringVarP(format, "format", "f", "text", "Output format (text, json, csv, yaml)")
	cmd.Flags().StringVar(snapshotPath, "snapshot", "", "Read an exported snapshot instead of the bucket")
}
