package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

func parseCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse one export and print its message records",
		Long: `Parse an exported chat transcript without touching the index.
Use "-" to read from stdin. TSV output has one header row followed by
one row per message; tabs and newlines inside sender and body are escaped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "tsv" {
				return fmt.Errorf("unknown format %q (want json or tsv)", format)
			}
			_, p, err := loadConfig()
			if err != nil {
				return err
			}

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			records, err := p.ParseBytes(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return writeRecords(cmd.OutOrStdout(), records, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or tsv")

	return cmd
}

func writeRecords(w io.Writer, records []parse.MessageRecord, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if _, err := fmt.Fprintln(w, strings.Join(parse.Columns, "\t")); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintln(w, strings.Join(r.Row(), "\t")); err != nil {
			return err
		}
	}
	return nil
}
