// Package cmd wires the CLI. Configuration comes from the environment (with
// an optional .env file); flags override per invocation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lebenh/rfi-triage/internal/common"
	"github.com/lebenh/rfi-triage/internal/observability/logging"
)

var version = "1.0.0"

var (
	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "rfi-triage",
	Short:   "Triage construction RFI PDFs into a reviewed catalog",
	Version: version,
	Long: `rfi-triage extracts text from RFI response PDFs, decides whether each
one requires a drawing revision, and writes the results to an Excel
catalog plus a per-document audit CSV.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// absent .env is fine; the environment still applies
		_ = godotenv.Load()
		cfg = common.LoadConfig()
		logger = logging.NewJSONLogger("rfi-triage", cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
