/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/record"
	"github.com/ssargent/espkit/pkg/records"
)

// mastersCmd represents the masters command
var mastersCmd = &cobra.Command{
	Use:   "masters <file>",
	Short: "Print the masters a plugin declares",
	Long: `Read only the file header of a plugin and print its declared masters in
slot order. The rest of the file is not decoded.

Examples:
  espkit masters Dawnguard.esm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		header, err := readFileHeader(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (version %.2f, %d records)\n", filepath.Base(args[0]), header.Stats.Version, header.Stats.NumRecords)
		for i, m := range header.Masters {
			fmt.Fprintf(cmd.OutOrStdout(), "  %02X  %s\n", i, m.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mastersCmd)
}

func readFileHeader(path string) (*records.TES4, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	r := codec.NewReader(data)
	tag, err := r.Tag()
	if err != nil || tag != records.TES4Tag {
		return nil, fmt.Errorf("%s: %w", path, codec.ErrMissingFileHeader)
	}
	h, payload, err := record.ReadRecord(r, tag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec, err := records.DecodeTES4(h, field.NewCursor(payload), &records.Context{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec.(*records.TES4), nil
}
