/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/storage"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Decode the load order and write it to the record index",
	Long: `Decode the configured load order and store every record in the pebble
index under index_dir. Files are written in load order, so a record
overridden by a later plugin keeps the later plugin's version.

Each pass is recorded as a run that 'espkit serve' lists under /api/v1/runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := loadPlugins(cmd.Context())
		if err != nil {
			return err
		}

		ix, err := storage.Open(cfg.IndexDir)
		if err != nil {
			return err
		}
		defer ix.Close()

		runID, err := ix.BeginRun(result.LoadOrder.Names())
		if err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}

		var summary storage.Run
		for _, f := range result.Files {
			n, err := ix.PutFile(f)
			if err != nil {
				return fmt.Errorf("failed to index %s: %w", f.Name, err)
			}
			summary.Records += n
			summary.Unknown += len(f.Unknown)
			summary.Failures += len(f.Failures)
			container.GetLogger().Debug("indexed plugin", "plugin", f.Name, "records", n)
		}

		if err := ix.FinishRun(runID, summary); err != nil {
			return fmt.Errorf("failed to finish run: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d records from %d plugins (%d unknown, %d failed)\n",
			runID, summary.Records, len(result.Files), summary.Unknown, summary.Failures)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
