/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/config"
	"github.com/ssargent/espkit/pkg/di"
)

var (
	container *di.Container
	// cfg is the configuration resolved by the root command before any
	// subcommand runs.
	cfg *config.Config
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "espkit",
	Short: "espkit - Bethesda plugin decoder",
	Long: `espkit decodes Bethesda plugin files (ESP/ESM/ESL) into typed records,
resolves FormIDs across a load order and keeps a queryable index of the result.

Settings come from a YAML config file (see 'espkit init'); flags override it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		configPath, _ := cmd.Flags().GetString("config")
		loaded, err := resolveConfig(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err := loaded.Logging.NewLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		container.SetLogger(logger)
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default is $HOME/.config/espkit/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Directory holding the plugin files")
	rootCmd.PersistentFlags().String("index-dir", "", "Directory of the record index")
	rootCmd.PersistentFlags().StringSlice("load-order", nil, "Plugins in load order, overriding the config")
	rootCmd.PersistentFlags().Int("workers", 0, "Files decoded concurrently")
	rootCmd.PersistentFlags().Bool("continue-on-error", false, "Collect record failures instead of aborting")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// resolveConfig loads the config file. The default path is optional; an
// explicit one must exist.
func resolveConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
		if !config.ConfigExists(configPath) {
			return config.DefaultConfig(), nil
		}
	}
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return loaded, nil
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		c.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("index-dir") {
		c.IndexDir, _ = flags.GetString("index-dir")
	}
	if flags.Changed("load-order") {
		c.LoadOrder, _ = flags.GetStringSlice("load-order")
	}
	if flags.Changed("workers") {
		c.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("continue-on-error") {
		c.ContinueOnError, _ = flags.GetBool("continue-on-error")
	}
	if flags.Changed("log-level") {
		c.Logging.Level, _ = flags.GetString("log-level")
	}
}
