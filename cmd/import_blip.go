package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lonestar-outdoor/boardmap/internal/ingest"
	"github.com/lonestar-outdoor/boardmap/internal/observability"
)

var importBlipCmd = &cobra.Command{
	Use:   "blip <file>",
	Short: "Import digital billboards from a Blip feed",
	Long:  "Normalizes a Blip JSON feed into digital billboards, resolving each record's state and city from its content and creating cities on first sight.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		if _, err := os.Stat(path); err != nil {
			return eris.Wrapf(err, "input file %s", path)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		feed, err := ingest.ReadBlipFile(path)
		if err != nil {
			return err
		}
		zap.L().Info("blip feed read",
			zap.String("path", path),
			zap.Int("records", len(feed)),
		)

		resolver, err := ingest.NewCityResolver(ctx, st)
		if err != nil {
			return err
		}

		records := make([]ingest.SourceRecord, len(feed))
		for i, rec := range feed {
			records[i] = rec
		}

		loader := ingest.NewLoader(st, resolver, ingest.Options{
			BatchSize: cfg.Ingest.BatchSize,
		}, observability.NewMetrics())

		res, err := loader.Run(ctx, sourceBlipDigital, records)
		if err != nil {
			return err
		}

		fmt.Printf("Done. Inserted %d digital billboards, skipped %d.\n", res.Inserted, res.Skipped)
		return nil
	},
}

func init() {
	importCmd.AddCommand(importBlipCmd)
}
