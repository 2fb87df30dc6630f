package ingest

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lonestar-outdoor/boardmap/internal/model"
	"github.com/lonestar-outdoor/boardmap/internal/store"
)

// ErrUnknownState rejects a record whose state name is not in the
// preloaded state table.
var ErrUnknownState = eris.New("ingest: unknown state")

// CityDirectory is the store surface the resolver needs.
type CityDirectory interface {
	ListStates(ctx context.Context) ([]model.State, error)
	FindCity(ctx context.Context, stateID, name string) (*model.City, error)
	CreateCity(ctx context.Context, city model.City) (*model.City, error)
}

// CityResolver resolves (state name, city name) pairs to city IDs,
// creating cities on first sight. The cache is scoped to one resolver,
// which the loader owns for exactly one run.
type CityResolver struct {
	dir          CityDirectory
	statesByName map[string]model.State
	cache        map[string]string
}

// NewCityResolver loads the state table once and returns a resolver with
// an empty per-run cache.
func NewCityResolver(ctx context.Context, dir CityDirectory) (*CityResolver, error) {
	states, err := dir.ListStates(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: load states")
	}

	byName := make(map[string]model.State, len(states))
	for _, s := range states {
		byName[s.Name] = s
	}

	return &CityResolver{
		dir:          dir,
		statesByName: byName,
		cache:        make(map[string]string),
	}, nil
}

// Resolve returns the city ID for a (state name, city name) pair. The
// city is created on first sight; a uniqueness conflict from a concurrent
// writer is resolved by re-fetching the winner's row.
func (r *CityResolver) Resolve(ctx context.Context, stateName, cityName string) (string, error) {
	state, ok := r.statesByName[stateName]
	if !ok {
		return "", ErrUnknownState
	}

	key := state.ID + ":" + cityName
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	existing, err := r.dir.FindCity(ctx, state.ID, cityName)
	if err != nil {
		return "", eris.Wrapf(err, "ingest: find city %s", cityName)
	}
	if existing != nil {
		r.cache[key] = existing.ID
		return existing.ID, nil
	}

	created, err := r.dir.CreateCity(ctx, model.City{
		Name:      cityName,
		StateID:   state.ID,
		StateCode: state.StateCode,
	})
	if errors.Is(err, store.ErrCityExists) {
		// Lost a race with a concurrent run; the row exists now.
		zap.L().Debug("city insert conflict, refetching",
			zap.String("city", cityName),
			zap.String("state", stateName),
		)
		winner, ferr := r.dir.FindCity(ctx, state.ID, cityName)
		if ferr != nil {
			return "", eris.Wrapf(ferr, "ingest: refetch city %s after conflict", cityName)
		}
		if winner == nil {
			return "", eris.Errorf("ingest: city %s vanished after insert conflict", cityName)
		}
		r.cache[key] = winner.ID
		return winner.ID, nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "ingest: create city %s", cityName)
	}

	r.cache[key] = created.ID
	return created.ID, nil
}
