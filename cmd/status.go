package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lonestar-outdoor/boardmap/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts per ingestion source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		counts, err := st.CountBySource(ctx)
		if err != nil {
			return err
		}

		if len(counts) == 0 {
			fmt.Println("No billboards loaded.")
		} else {
			var total int64
			fmt.Println("Billboards by source:")
			for _, c := range counts {
				fmt.Printf("  %-20s %d\n", c.Source, c.Count)
				total += c.Count
			}
			fmt.Printf("  %-20s %d\n", "total", total)
		}

		states, err := st.ListStates(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("States: %d\n", len(states))

		cityID := cfg.Ingest.DefaultCityID
		if cityID == "" {
			cityID = config.DefaultCityID
		}
		found := false
		for _, state := range states {
			cities, err := st.ListCities(ctx, state.ID)
			if err != nil {
				return err
			}
			for _, c := range cities {
				if c.ID == cityID {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if found {
			fmt.Printf("Default city %s is present.\n", cityID)
		} else {
			fmt.Printf("Default city %s is missing; run `boardmap seed`.\n", cityID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
