package main

import (
	"github.com/spf13/cobra"
)

// Source tags partitioning the billboards table per importer.
const (
	sourceHoustonGeoJSON = "houston_geojson"
	sourceBlipDigital    = "blip_digital"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Batch importers for billboard inventory sources",
	Long:  "Each importer fully replaces its own source partition: existing rows with the importer's source tag are deleted, then the normalized contents of the input file are inserted.",
}

func init() {
	rootCmd.AddCommand(importCmd)
}
