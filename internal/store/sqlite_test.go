package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedLocation(t *testing.T, st *SQLiteStore) (stateID, cityID string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.UpsertStates(ctx, []model.State{{Name: "Texas", StateCode: "TX"}}))
	states, err := st.ListStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)

	city, err := st.CreateCity(ctx, model.City{Name: "Houston", StateID: states[0].ID, StateCode: "TX"})
	require.NoError(t, err)
	return states[0].ID, city.ID
}

func TestSQLiteStore_StatesRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertStates(ctx, []model.State{
		{Name: "Texas", StateCode: "TX"},
		{Name: "Oklahoma", StateCode: "OK"},
	}))

	states, err := st.ListStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "Oklahoma", states[0].Name)
	assert.Equal(t, "Texas", states[1].Name)

	// Upserting again keeps the row count and the assigned IDs stable.
	require.NoError(t, st.UpsertStates(ctx, []model.State{{Name: "Texas", StateCode: "TX"}}))
	again, err := st.ListStates(ctx)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, states[1].ID, again[1].ID)
}

func TestSQLiteStore_Cities(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	stateID, cityID := seedLocation(t, st)

	found, err := st.FindCity(ctx, stateID, "Houston")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cityID, found.ID)

	missing, err := st.FindCity(ctx, stateID, "Dallas")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = st.CreateCity(ctx, model.City{Name: "Houston", StateID: stateID, StateCode: "TX"})
	assert.ErrorIs(t, err, ErrCityExists)

	cities, err := st.ListCities(ctx, stateID)
	require.NoError(t, err)
	assert.Len(t, cities, 1)
}

func TestSQLiteStore_BillboardLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	_, cityID := seedLocation(t, st)

	name := "I-10 East"
	zip1, zip2 := "77002", "77011"
	require.NoError(t, st.InsertBillboards(ctx, []model.Billboard{
		{
			CityID: cityID, Name: &name, Zipcode: &zip1,
			Latitude: 29.75, Longitude: -95.36,
			BoardType: model.BoardTypeDigital, TrafficTier: model.TrafficTierPrime, PriceTier: model.PriceTierTop,
			Source:           "blip_digital",
			SourceProperties: model.RawProperties{"raw": "value"},
		},
		{
			CityID: cityID, Zipcode: &zip2,
			Latitude: 29.76, Longitude: -95.29,
			BoardType: model.BoardTypeStatic, TrafficTier: model.TrafficTierMedium, PriceTier: model.PriceTierStandard,
			Source: "houston_geojson",
		},
	}))

	all, err := st.ListBillboards(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	digital, err := st.ListBillboards(ctx, Filter{BoardType: model.BoardTypeDigital, CityIDs: []string{cityID}})
	require.NoError(t, err)
	require.Len(t, digital, 1)
	assert.Equal(t, "I-10 East", *digital[0].Name)
	assert.Equal(t, "value", digital[0].SourceProperties["raw"])
	assert.Nil(t, digital[0].Traffic)

	count, err := st.CountBillboards(ctx, Filter{Zipcodes: []string{"77002", "77011"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	zips, err := st.ListZipcodes(ctx, []string{cityID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"77002", "77011"}, zips)

	counts, err := st.CountBySource(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, SourceCount{Source: "blip_digital", Count: 1}, counts[0])

	deleted, err := st.DeleteBillboardsBySource(ctx, "blip_digital")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := st.CountBillboards(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

func TestSQLiteStore_LimitApplied(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	_, cityID := seedLocation(t, st)

	rows := make([]model.Billboard, 10)
	for i := range rows {
		rows[i] = model.Billboard{
			CityID: cityID, Latitude: 29.7, Longitude: -95.3,
			BoardType: model.BoardTypeStatic, TrafficTier: model.TrafficTierLow, PriceTier: model.PriceTierBudget,
			Source: "seed",
		}
	}
	require.NoError(t, st.InsertBillboards(ctx, rows))

	page, err := st.ListBillboards(ctx, Filter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page, 3)
}
