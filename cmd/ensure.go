package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sells-group/province-map/internal/boundary"
)

var ensureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Download the boundary dataset if it is not cached",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "ensure")
		if err != nil {
			return err
		}
		defer env.Close()

		ds, err := env.Provisioner.Load(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d features, %s, key %s\n",
			env.Provisioner.Path(),
			len(ds.Features),
			humanize.Bytes(uint64(ds.Size)),
			boundary.ResolveFeatureKey(ds),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureCmd)
}
