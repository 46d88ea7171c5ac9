package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/gallerycmd"
)

func newGalleryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Query the image catalog from the command line",
		Long: `Fetch the catalog and print it as text, JSON, CSV or YAML.

Every command lists the bucket and joins the sidecar detection records
afresh unless --snapshot points at a file written by "gallery export".`,
	}

	cmd.AddCommand(gallerycmd.NewListCmd(opts.loadConfig))
	cmd.AddCommand(gallerycmd.NewShowCmd(opts.loadConfig))
	cmd.AddCommand(gallerycmd.NewSpeciesCmd(opts.loadConfig))
	cmd.AddCommand(gallerycmd.NewExportCmd(opts.loadConfig))
	cmd.AddCommand(gallerycmd.NewDownloadCmd(opts.loadConfig))

	return cmd
}
