/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tagsCmd represents the tags command
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the record types espkit knows",
	Long: `List every registered record tag in registration order with its status:
"decoder" tags decode into typed records, "placeholder" tags are known but
fail with a not-implemented error. Any other tag is kept as an opaque
unknown record.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		registry := container.GetPluginRegistry()
		for _, tag := range registry.Tags() {
			_, status := registry.Lookup(tag)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", tag, status)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
