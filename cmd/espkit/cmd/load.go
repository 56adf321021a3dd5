/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/loader"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Decode the whole load order",
	Long: `Decode every plugin of the configured load order concurrently, resolving
FormIDs across the load order, and print a summary per file.

The load order comes from --load-order, the config's load_order, or the
plugins.txt named by plugins_file, in that order.

Examples:
  espkit load
  espkit load --load-order Skyrim.esm,Update.esm --workers 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := loadPlugins(cmd.Context())
		if err != nil {
			return err
		}
		return printLoad(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func loadPlugins(ctx context.Context) (*loader.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	names, err := cfg.Plugins()
	if err != nil {
		return nil, err
	}
	result, err := loader.Load(ctx, names, loader.Options{
		Dir:             cfg.DataDir,
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		Registry:        container.GetPluginRegistry(),
		Logger:          container.GetLogger(),
		Metrics:         container.GetDecodeMetrics(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load plugins: %w", err)
	}
	return result, nil
}

func printLoad(w io.Writer, result *loader.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDX\tPLUGIN\tRECORDS\tUNKNOWN\tFAILED")
	for i, f := range result.Files {
		fmt.Fprintf(tw, "%02X\t%s\t%d\t%d\t%d\n", i, f.Name, len(f.Records), len(f.Unknown), len(f.Failures))
	}
	return tw.Flush()
}
