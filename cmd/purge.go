package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var purgeSource string

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all billboards from one ingestion source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if purgeSource == "" {
			return eris.New("purge: --source is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		deleted, err := st.DeleteBillboardsBySource(ctx, purgeSource)
		if err != nil {
			return eris.Wrapf(err, "purge source %s", purgeSource)
		}

		fmt.Printf("Deleted %d billboard(s) with source %q\n", deleted, purgeSource)
		return nil
	},
}

func init() {
	purgeCmd.Flags().StringVar(&purgeSource, "source", "", "source tag to delete (e.g. seed, blip_digital)")
	rootCmd.AddCommand(purgeCmd)
}
