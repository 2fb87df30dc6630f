// Package store persists billboard inventory in Postgres or SQLite.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

// ErrCityExists reports a uniqueness conflict on (state_id, name) during
// city creation, meaning a concurrent writer inserted the same city first.
var ErrCityExists = eris.New("store: city already exists")

// Filter selects billboards by equality and set-membership tests over
// indexed columns. Zero values mean "no constraint".
type Filter struct {
	CityIDs     []string
	BoardType   model.BoardType
	TrafficTier model.TrafficTier
	PriceTier   model.PriceTier
	Zipcodes    []string
	Limit       int
}

// SourceCount is a per-source row count for the status command.
type SourceCount struct {
	Source string
	Count  int64
}

// Store defines the persistence interface shared by the ingestion
// pipeline and the query service.
type Store interface {
	// Lookup tables
	ListStates(ctx context.Context) ([]model.State, error)
	UpsertStates(ctx context.Context, states []model.State) error
	ListCities(ctx context.Context, stateID string) ([]model.City, error)
	FindCity(ctx context.Context, stateID, name string) (*model.City, error)
	CreateCity(ctx context.Context, city model.City) (*model.City, error)

	// Billboards
	DeleteBillboardsBySource(ctx context.Context, source string) (int64, error)
	InsertBillboards(ctx context.Context, rows []model.Billboard) error
	ListBillboards(ctx context.Context, f Filter) ([]model.Billboard, error)
	CountBillboards(ctx context.Context, f Filter) (int64, error)
	ListZipcodes(ctx context.Context, cityIDs []string) ([]string, error)
	CountBySource(ctx context.Context) ([]SourceCount, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// billboardColumns is the column list shared by insert and select paths.
var billboardColumns = []string{
	"id", "city_id", "name", "vendor", "address", "zipcode",
	"latitude", "longitude", "board_type", "traffic_tier", "price_tier",
	"image_url", "source", "source_properties", "traffic", "price_cents",
}
