/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/storage"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <plugin> <local-id>",
	Short: "Look up one record in the index",
	Long: `Print the indexed record with the given FormID. The plugin is a name from
the load order or its hex index; the local ID is hex.

Examples:
  espkit get Skyrim.esm 000F
  espkit get 01 0x0012AB`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := cfg.Plugins()
		if err != nil {
			return err
		}
		id, err := parseFormID(formid.NewLoadOrder(names...), args[0], args[1])
		if err != nil {
			return err
		}

		ix, err := storage.Open(cfg.IndexDir)
		if err != nil {
			return err
		}
		defer ix.Close()

		entry, err := ix.Get(id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no record %s in the index", id)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func parseFormID(lo *formid.LoadOrder, plugin, local string) (formid.ID, error) {
	idx, ok := lo.Index(plugin)
	if !ok {
		n, err := parseHex(plugin)
		if err != nil || int(n) >= lo.Len() {
			return formid.ID{}, fmt.Errorf("plugin %q is not in the load order", plugin)
		}
		idx = n
	}
	l, err := parseHex(local)
	if err != nil || l > 0xFFFFFF {
		return formid.ID{}, fmt.Errorf("invalid local id %q", local)
	}
	return formid.ID{Plugin: idx, Local: l}, nil
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 32)
	return uint32(n), err
}
