/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/storage"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <editor-id>",
	Short: "Find indexed records by editor ID",
	Long: `List the indexed records whose editor ID matches, ignoring case. A record
renamed by an override is only found under its new name.

Examples:
  espkit find GameHour`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := storage.Open(cfg.IndexDir)
		if err != nil {
			return err
		}
		defer ix.Close()

		entries, err := ix.FindEditorID(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no record named %q in the index", args[0])
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FORMID\tTAG\tEDITOR ID\tPLUGIN")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.FormID, e.Tag, e.EditorID, e.Plugin)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}
