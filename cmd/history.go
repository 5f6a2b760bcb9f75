package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/province-map/internal/model"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent boundary provisioning attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "ensure")
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Store == nil {
			return eris.New("history is disabled (store.database_url is empty)")
		}

		rows, err := env.Store.ListProvisions(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		formatProvisions(cmd.OutOrStdout(), rows)
		return nil
	},
}

// formatProvisions writes a tabular list of provisions to w.
func formatProvisions(out io.Writer, rows []model.Provision) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "No provisioning attempts recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tSIZE\tCREATED\tURL\tERROR")
	_, _ = fmt.Fprintln(w, "--\t------\t----\t-------\t---\t-----")
	for _, p := range rows {
		size := ""
		if p.Bytes > 0 {
			size = humanize.Bytes(uint64(p.Bytes))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(p.ID),
			p.Status,
			size,
			p.CreatedAt.Format("2006-01-02 15:04"),
			p.URL,
			truncate(p.Error, 60),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of attempts to show")
	rootCmd.AddCommand(historyCmd)
}
