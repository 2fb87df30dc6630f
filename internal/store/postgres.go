package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/lonestar-outdoor/boardmap/internal/db"
	"github.com/lonestar-outdoor/boardmap/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgresStore wraps an existing pool. The caller owns the pool's
// lifecycle.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS states (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL UNIQUE,
	state_code TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cities (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	state_id   TEXT NOT NULL REFERENCES states(id),
	state_code TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_cities_state_name ON cities(state_id, name);

CREATE TABLE IF NOT EXISTS billboards (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	city_id           TEXT NOT NULL REFERENCES cities(id),
	name              TEXT,
	vendor            TEXT,
	address           TEXT,
	zipcode           TEXT,
	latitude          DOUBLE PRECISION NOT NULL,
	longitude         DOUBLE PRECISION NOT NULL,
	board_type        TEXT NOT NULL,
	traffic_tier      TEXT NOT NULL,
	price_tier        TEXT NOT NULL,
	image_url         TEXT,
	source            TEXT NOT NULL,
	source_properties JSONB,
	traffic           BIGINT,
	price_cents       BIGINT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_billboards_source ON billboards(source);
CREATE INDEX IF NOT EXISTS idx_billboards_city_id ON billboards(city_id);
CREATE INDEX IF NOT EXISTS idx_billboards_board_type ON billboards(board_type);
CREATE INDEX IF NOT EXISTS idx_billboards_traffic_tier ON billboards(traffic_tier);
CREATE INDEX IF NOT EXISTS idx_billboards_price_tier ON billboards(price_tier);
CREATE INDEX IF NOT EXISTS idx_billboards_zipcode ON billboards(zipcode);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListStates(ctx context.Context) ([]model.State, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, state_code FROM states ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list states")
	}
	defer rows.Close()

	var states []model.State
	for rows.Next() {
		var st model.State
		if err := rows.Scan(&st.ID, &st.Name, &st.StateCode); err != nil {
			return nil, eris.Wrap(err, "postgres: scan state")
		}
		states = append(states, st)
	}
	return states, eris.Wrap(rows.Err(), "postgres: list states iterate")
}

func (s *PostgresStore) UpsertStates(ctx context.Context, states []model.State) error {
	for _, st := range states {
		id := st.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO states (id, name, state_code) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET state_code = EXCLUDED.state_code`,
			id, st.Name, st.StateCode,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert state %s", st.Name)
		}
	}
	return nil
}

func (s *PostgresStore) ListCities(ctx context.Context, stateID string) ([]model.City, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, state_id, state_code FROM cities WHERE state_id = $1 ORDER BY name`,
		stateID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cities")
	}
	defer rows.Close()

	var cities []model.City
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.StateID, &c.StateCode); err != nil {
			return nil, eris.Wrap(err, "postgres: scan city")
		}
		cities = append(cities, c)
	}
	return cities, eris.Wrap(rows.Err(), "postgres: list cities iterate")
}

func (s *PostgresStore) FindCity(ctx context.Context, stateID, name string) (*model.City, error) {
	var c model.City
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, state_id, state_code FROM cities WHERE state_id = $1 AND name = $2`,
		stateID, name,
	).Scan(&c.ID, &c.Name, &c.StateID, &c.StateCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: find city %s", name)
	}
	return &c, nil
}

func (s *PostgresStore) CreateCity(ctx context.Context, city model.City) (*model.City, error) {
	if city.ID == "" {
		city.ID = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO cities (id, name, state_id, state_code) VALUES ($1, $2, $3, $4)`,
		city.ID, city.Name, city.StateID, city.StateCode,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrCityExists
		}
		return nil, eris.Wrapf(err, "postgres: insert city %s", city.Name)
	}
	return &city, nil
}

func (s *PostgresStore) DeleteBillboardsBySource(ctx context.Context, source string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM billboards WHERE source = $1`, source)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: delete billboards for source %s", source)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) InsertBillboards(ctx context.Context, billboards []model.Billboard) error {
	rows := make([][]any, 0, len(billboards))
	for _, b := range billboards {
		id := b.ID
		if id == "" {
			id = uuid.New().String()
		}

		var props []byte
		if b.SourceProperties != nil {
			var err error
			props, err = json.Marshal(b.SourceProperties)
			if err != nil {
				return eris.Wrap(err, "postgres: marshal source properties")
			}
		}

		rows = append(rows, []any{
			id, b.CityID, b.Name, b.Vendor, b.Address, b.Zipcode,
			b.Latitude, b.Longitude, string(b.BoardType), string(b.TrafficTier), string(b.PriceTier),
			b.ImageURL, b.Source, props, b.Traffic, b.PriceCents,
		})
	}

	if _, err := db.CopyFrom(ctx, s.pool, "billboards", billboardColumns, rows); err != nil {
		return eris.Wrap(err, "postgres: insert billboards")
	}
	return nil
}

// whereClause builds the conjunction of filter predicates, appending
// arguments to args and returning the SQL fragment.
func whereClause(f Filter, args *[]any) string {
	var sb strings.Builder
	sb.WriteString(" WHERE true")

	add := func(clause string, val any) {
		*args = append(*args, val)
		fmt.Fprintf(&sb, " AND "+clause, len(*args))
	}

	if len(f.CityIDs) > 0 {
		add("city_id = ANY($%d)", f.CityIDs)
	}
	if f.BoardType != "" {
		add("board_type = $%d", string(f.BoardType))
	}
	if f.TrafficTier != "" {
		add("traffic_tier = $%d", string(f.TrafficTier))
	}
	if f.PriceTier != "" {
		add("price_tier = $%d", string(f.PriceTier))
	}
	if len(f.Zipcodes) > 0 {
		add("zipcode = ANY($%d)", f.Zipcodes)
	}
	return sb.String()
}

func (s *PostgresStore) ListBillboards(ctx context.Context, f Filter) ([]model.Billboard, error) {
	var args []any
	query := `SELECT ` + strings.Join(billboardColumns, ", ") + ` FROM billboards` + whereClause(f, &args)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list billboards")
	}
	defer rows.Close()

	var billboards []model.Billboard
	for rows.Next() {
		var b model.Billboard
		var props []byte
		if err := rows.Scan(
			&b.ID, &b.CityID, &b.Name, &b.Vendor, &b.Address, &b.Zipcode,
			&b.Latitude, &b.Longitude, &b.BoardType, &b.TrafficTier, &b.PriceTier,
			&b.ImageURL, &b.Source, &props, &b.Traffic, &b.PriceCents,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan billboard")
		}
		if len(props) > 0 {
			if err := json.Unmarshal(props, &b.SourceProperties); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal source properties")
			}
		}
		billboards = append(billboards, b)
	}
	return billboards, eris.Wrap(rows.Err(), "postgres: list billboards iterate")
}

func (s *PostgresStore) CountBillboards(ctx context.Context, f Filter) (int64, error) {
	var args []any
	query := `SELECT COUNT(*) FROM billboards` + whereClause(f, &args)

	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, eris.Wrap(err, "postgres: count billboards")
	}
	return count, nil
}

func (s *PostgresStore) ListZipcodes(ctx context.Context, cityIDs []string) ([]string, error) {
	query := `SELECT DISTINCT zipcode FROM billboards WHERE zipcode IS NOT NULL`
	var args []any
	if len(cityIDs) > 0 {
		args = append(args, cityIDs)
		query += ` AND city_id = ANY($1)`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list zipcodes")
	}
	defer rows.Close()

	var zipcodes []string
	for rows.Next() {
		var z string
		if err := rows.Scan(&z); err != nil {
			return nil, eris.Wrap(err, "postgres: scan zipcode")
		}
		zipcodes = append(zipcodes, z)
	}
	return zipcodes, eris.Wrap(rows.Err(), "postgres: list zipcodes iterate")
}

func (s *PostgresStore) CountBySource(ctx context.Context) ([]SourceCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source, COUNT(*) FROM billboards GROUP BY source ORDER BY source`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by source")
	}
	defer rows.Close()

	var counts []SourceCount
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan source count")
		}
		counts = append(counts, sc)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count by source iterate")
}
