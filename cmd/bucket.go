package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lebenh/rfi-triage/internal/bucket"
)

var bucketFlags struct {
	catalogPath string
	localRoot   string
	destRoot    string
	dryRun      bool
	limit       int
}

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Copy cataloged PDFs into per-signal review folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := bucket.Options{
			CatalogPath: bucketFlags.catalogPath,
			LocalRoot:   bucketFlags.localRoot,
			DestRoot:    bucketFlags.destRoot,
			DryRun:      bucketFlags.dryRun,
			Limit:       bucketFlags.limit,
		}
		if opts.CatalogPath == "" {
			opts.CatalogPath = cfg.Catalog.OutXLSX
		}
		if opts.LocalRoot == "" {
			opts.LocalRoot = cfg.Ingest.LocalRoot
		}

		sum, err := bucket.Sort(opts, logger)
		if err != nil {
			return err
		}
		fmt.Printf("rows=%d copied=%d non_pdf_skipped=%d missing_sources=%d\n",
			sum.Rows, sum.Copied, sum.SkippedNonPDF, sum.MissingSource)
		return nil
	},
}

func init() {
	f := bucketCmd.Flags()
	f.StringVar(&bucketFlags.catalogPath, "catalog", "", "catalog workbook to read (default $OUT_XLSX)")
	f.StringVar(&bucketFlags.localRoot, "local-root", "", "base folder for relative paths (default $LOCAL_ROOT)")
	f.StringVar(&bucketFlags.destRoot, "dest", "Signal Buckets", "destination root for the bucket folders")
	f.BoolVar(&bucketFlags.dryRun, "dry-run", false, "preview without copying")
	f.IntVar(&bucketFlags.limit, "limit", 0, "cap the number of rows (0 = all)")
	rootCmd.AddCommand(bucketCmd)
}
