package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lebenh/rfi-triage/internal/repository"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent triage runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := repository.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.Init(cmd.Context()); err != nil {
			return err
		}

		runs, err := store.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  docs=%d revise=%d ocr=%d errors=%d  %s\n",
				r.StartedAt.Format(time.RFC3339),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
				r.Documents, r.RequiresRevision, r.OCRUsed, r.Errors,
				r.OutPath)
		}
		return nil
	},
}

var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := repository.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.Init(cmd.Context()); err != nil {
			return err
		}

		n, err := store.ClearRuns(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d runs\n", n)
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsClearCmd)
	rootCmd.AddCommand(runsCmd)
}
