package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/province-map/internal/province"
)

var provincesFormat string

var provincesCmd = &cobra.Command{
	Use:   "provinces",
	Short: "List provinces joined to their boundary features",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "ensure")
		if err != nil {
			return err
		}
		defer env.Close()

		_, records, err := env.loadRecords(cmd.Context(), cfg.Data.ProvincesPath)
		if err != nil {
			return err
		}
		return writeRecords(cmd.OutOrStdout(), records, provincesFormat)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <province>",
	Short: "Print the cultural notes of one province",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "ensure")
		if err != nil {
			return err
		}
		defer env.Close()

		_, records, err := env.loadRecords(cmd.Context(), cfg.Data.ProvincesPath)
		if err != nil {
			return err
		}

		rec, ok := province.Select(records, args[0])
		if !ok {
			return eris.Errorf("unknown province %q", args[0])
		}
		formatRecord(cmd.OutOrStdout(), rec)
		return nil
	},
}

// writeRecords renders records as a table, JSON, or YAML.
func writeRecords(out io.Writer, records []province.Record, format string) error {
	switch format {
	case "", "table":
		formatRecordsTable(out, records)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(records), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	default:
		return eris.Errorf("unknown format %q (want table, json, or yaml)", format)
	}
}

// formatRecordsTable writes a tabular list of records to w.
func formatRecordsTable(out io.Writer, records []province.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROVINCE\tFEATURE\tMATCHED\tCULTURE")
	_, _ = fmt.Fprintln(w, "--------\t-------\t-------\t-------")
	for _, r := range records {
		matched := "yes"
		if !r.Matched {
			matched = "no"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.FeatureName, matched, truncate(r.Culture, 50))
	}
	_ = w.Flush()
}

// formatRecord writes one record's cultural notes to out.
func formatRecord(out io.Writer, r province.Record) {
	_, _ = fmt.Fprintf(out, "%s kültürel tanıtım\n\n%s\n", r.Name, r.Culture)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

func init() {
	provincesCmd.Flags().StringVar(&provincesFormat, "format", "table", "output format: table, json, or yaml")
	rootCmd.AddCommand(provincesCmd)
	rootCmd.AddCommand(showCmd)
}
