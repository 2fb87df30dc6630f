package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lonestar-outdoor/boardmap/internal/model"
	"github.com/lonestar-outdoor/boardmap/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the state lookup table and sample data",
	Long:  "Upserts the 50-state lookup table, creates the default Houston city, and inserts a few sample billboards tagged source=seed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		states, err := seed.States()
		if err != nil {
			return err
		}
		if err := st.UpsertStates(ctx, states); err != nil {
			return eris.Wrap(err, "seed: upsert states")
		}
		zap.L().Info("states seeded", zap.Int("count", len(states)))

		// Re-read so we hold the stored Texas row, not the fixture.
		stored, err := st.ListStates(ctx)
		if err != nil {
			return eris.Wrap(err, "seed: list states")
		}
		var texas *model.State
		for i := range stored {
			if stored[i].StateCode == "TX" {
				texas = &stored[i]
				break
			}
		}
		if texas == nil {
			return eris.New("seed: Texas missing after state seed")
		}

		houston, err := st.FindCity(ctx, texas.ID, "Houston")
		if err != nil {
			return eris.Wrap(err, "seed: find Houston")
		}
		if houston == nil {
			houston, err = st.CreateCity(ctx, seed.HoustonCity(*texas))
			if err != nil {
				return eris.Wrap(err, "seed: create Houston")
			}
			zap.L().Info("default city created", zap.String("city_id", houston.ID))
		}

		if _, err := st.DeleteBillboardsBySource(ctx, seed.SourceTag); err != nil {
			return eris.Wrap(err, "seed: clear previous sample billboards")
		}
		samples := seed.Billboards(houston.ID)
		if err := st.InsertBillboards(ctx, samples); err != nil {
			return eris.Wrap(err, "seed: insert sample billboards")
		}

		fmt.Printf("Seeded %d states and %d sample billboards\n", len(states), len(samples))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
