/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/plugin"
	"github.com/ssargent/espkit/pkg/storage"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Decode one plugin file and print its records",
	Long: `Decode a single plugin file on its own, resolving FormIDs against its
declared masters only, and print a per-tag summary or the records as JSON.

Examples:
  espkit dump Dawnguard.esm
  espkit dump Dawnguard.esm --json --tag GMST
  espkit dump Broken.esp --continue-on-error`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		f, err := plugin.DecodeFile(args[0], container.DecodeOptions(cfg.ContinueOnError))
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[0], err)
		}
		if asJSON {
			return dumpJSON(cmd.OutOrStdout(), f, tags)
		}
		return dumpSummary(cmd.OutOrStdout(), f)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("json", false, "Print records as JSON instead of a summary")
	dumpCmd.Flags().StringSlice("tag", nil, "Only print records with these tags")
}

type dumpOutput struct {
	Name     string                 `json:"name"`
	Masters  []string               `json:"masters"`
	Records  []*storage.Entry       `json:"records"`
	Unknown  []plugin.UnknownMarker `json:"unknown,omitempty"`
	Failures []dumpFailure          `json:"failures,omitempty"`
}

type dumpFailure struct {
	Tag    codec.Tag `json:"tag"`
	Offset int       `json:"offset"`
	FormID uint32    `json:"form_id"`
	Kind   string    `json:"kind"`
	Error  string    `json:"error"`
}

func dumpJSON(w io.Writer, f *plugin.File, tags []string) error {
	keep := make(map[string]bool, len(tags))
	for _, t := range tags {
		keep[strings.ToUpper(t)] = true
	}

	out := dumpOutput{Name: f.Name, Masters: f.Masters, Records: make([]*storage.Entry, 0, len(f.Records)), Unknown: f.Unknown}
	for _, rec := range f.Records {
		if len(keep) > 0 && !keep[rec.RecordHeader().Type.String()] {
			continue
		}
		e, err := storage.NewEntry(f.Name, rec)
		if err != nil {
			return err
		}
		out.Records = append(out.Records, e)
	}
	for _, fail := range f.Failures {
		out.Failures = append(out.Failures, dumpFailure{
			Tag:    fail.Tag,
			Offset: fail.Offset,
			FormID: fail.FormID,
			Kind:   fail.Kind().String(),
			Error:  fail.Err.Error(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func dumpSummary(w io.Writer, f *plugin.File) error {
	counts := make(map[string]int)
	for _, rec := range f.Records {
		counts[rec.RecordHeader().Type.String()]++
	}
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	fmt.Fprintf(w, "%s: %d records, %d unknown, %d failed\n", f.Name, len(f.Records), len(f.Unknown), len(f.Failures))
	if len(f.Masters) > 0 {
		fmt.Fprintf(w, "masters: %s\n", strings.Join(f.Masters, ", "))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tags {
		fmt.Fprintf(tw, "  %s\t%d\n", t, counts[t])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, fail := range f.Failures {
		fmt.Fprintf(w, "failed: %s\n", fail.Error())
	}
	return nil
}
