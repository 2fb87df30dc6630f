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

var geojsonCityID string

var importGeoJSONCmd = &cobra.Command{
	Use:   "geojson <file>",
	Short: "Import static billboards from a GeoJSON export",
	Long:  "Normalizes every point feature in the file into a static billboard assigned to one city (default: the seeded Houston city).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		if _, err := os.Stat(path); err != nil {
			return eris.Wrapf(err, "input file %s", path)
		}

		cityID := geojsonCityID
		if cityID == "" {
			cityID = cfg.Ingest.DefaultCityID
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fc, err := ingest.ReadFeatureCollection(path)
		if err != nil {
			return err
		}
		zap.L().Info("geojson read",
			zap.String("path", path),
			zap.Int("features", len(fc.Features)),
		)

		records := make([]ingest.SourceRecord, len(fc.Features))
		for i, f := range fc.Features {
			records[i] = f
		}

		loader := ingest.NewLoader(st, nil, ingest.Options{
			BatchSize:   cfg.Ingest.BatchSize,
			FixedCityID: cityID,
		}, observability.NewMetrics())

		res, err := loader.Run(ctx, sourceHoustonGeoJSON, records)
		if err != nil {
			return err
		}

		fmt.Printf("Done. Inserted %d billboards, skipped %d.\n", res.Inserted, res.Skipped)
		return nil
	},
}

func init() {
	importGeoJSONCmd.Flags().StringVar(&geojsonCityID, "city-id", "", "target city id (default from config)")
	importCmd.AddCommand(importGeoJSONCmd)
}
