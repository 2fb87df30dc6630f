package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonestar-outdoor/boardmap/internal/model"
	"github.com/lonestar-outdoor/boardmap/internal/store"
)

// fakeDirectory is an in-memory CityDirectory that counts store calls and
// can simulate a concurrent writer winning the city insert.
type fakeDirectory struct {
	states []model.State
	cities map[string]model.City // key stateID:name

	findCalls   int
	createCalls int

	conflictOnCreate bool
	createErr        error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		states: []model.State{
			{ID: "st-tx", Name: "Texas", StateCode: "TX"},
			{ID: "st-ok", Name: "Oklahoma", StateCode: "OK"},
		},
		cities: map[string]model.City{},
	}
}

func (d *fakeDirectory) ListStates(ctx context.Context) ([]model.State, error) {
	return d.states, nil
}

func (d *fakeDirectory) FindCity(ctx context.Context, stateID, name string) (*model.City, error) {
	d.findCalls++
	if c, ok := d.cities[stateID+":"+name]; ok {
		return &c, nil
	}
	return nil, nil
}

func (d *fakeDirectory) CreateCity(ctx context.Context, city model.City) (*model.City, error) {
	d.createCalls++
	if d.createErr != nil {
		return nil, d.createErr
	}
	key := city.StateID + ":" + city.Name
	if d.conflictOnCreate {
		// A concurrent run inserted the row between find and create.
		d.cities[key] = model.City{ID: "winner-id", Name: city.Name, StateID: city.StateID, StateCode: city.StateCode}
		return nil, store.ErrCityExists
	}
	city.ID = "created-" + city.Name
	d.cities[key] = city
	return &city, nil
}

func TestCityResolverCreatesOnFirstSight(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()

	r, err := NewCityResolver(ctx, dir)
	require.NoError(t, err)

	id, err := r.Resolve(ctx, "Texas", "Houston")
	require.NoError(t, err)
	assert.Equal(t, "created-Houston", id)
	assert.Equal(t, 1, dir.createCalls)
}

func TestCityResolverCachesRepeats(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()

	r, err := NewCityResolver(ctx, dir)
	require.NoError(t, err)

	first, err := r.Resolve(ctx, "Texas", "Houston")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		id, err := r.Resolve(ctx, "Texas", "Houston")
		require.NoError(t, err)
		assert.Equal(t, first, id)
	}

	assert.Equal(t, 1, dir.findCalls)
	assert.Equal(t, 1, dir.createCalls)
}

func TestCityResolverFindsExisting(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.cities["st-tx:Austin"] = model.City{ID: "city-austin", Name: "Austin", StateID: "st-tx", StateCode: "TX"}

	r, err := NewCityResolver(ctx, dir)
	require.NoError(t, err)

	id, err := r.Resolve(ctx, "Texas", "Austin")
	require.NoError(t, err)
	assert.Equal(t, "city-austin", id)
	assert.Zero(t, dir.createCalls)
}

func TestCityResolverUnknownState(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()

	r, err := NewCityResolver(ctx, dir)
	require.NoError(t, err)

	_, err = r.Resolve(ctx, "Atlantis", "Lost City")
	assert.ErrorIs(t, err, ErrUnknownState)
	assert.Zero(t, dir.findCalls)
}

func TestCityResolverInsertConflictRefetchesWinner(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.conflictOnCreate = true

	r, err := NewCityResolver(ctx, dir)
	require.NoError(t, err)

	id, err := r.Resolve(ctx, "Texas", "Houston")
	require.NoError(t, err)
	assert.Equal(t, "winner-id", id)
	assert.Equal(t, 2, dir.findCalls)

	// The winner's id is cached for subsequent records.
	again, err := r.Resolve(ctx, "Texas", "Houston")
	require.NoError(t, err)
	assert.Equal(t, "winner-id", again)
	assert.Equal(t, 2, dir.findCalls)
}

func TestCityResolverCreateError(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.createErr = assert.AnError

	r, err := NewCityResolver(ctx, dir)
	require.NoError(t, err)

	_, err = r.Resolve(ctx, "Texas", "Houston")
	assert.ErrorIs(t, err, assert.AnError)
}
