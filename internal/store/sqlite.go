package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local
// development and end-to-end tests without a Postgres server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS states (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	state_code TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cities (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	state_id   TEXT NOT NULL REFERENCES states(id),
	state_code TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_cities_state_name ON cities(state_id, name);

CREATE TABLE IF NOT EXISTS billboards (
	id                TEXT PRIMARY KEY,
	city_id           TEXT NOT NULL REFERENCES cities(id),
	name              TEXT,
	vendor            TEXT,
	address           TEXT,
	zipcode           TEXT,
	latitude          REAL NOT NULL,
	longitude         REAL NOT NULL,
	board_type        TEXT NOT NULL,
	traffic_tier      TEXT NOT NULL,
	price_tier        TEXT NOT NULL,
	image_url         TEXT,
	source            TEXT NOT NULL,
	source_properties TEXT,
	traffic           INTEGER,
	price_cents       INTEGER,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_billboards_source ON billboards(source);
CREATE INDEX IF NOT EXISTS idx_billboards_city_id ON billboards(city_id);
CREATE INDEX IF NOT EXISTS idx_billboards_board_type ON billboards(board_type);
CREATE INDEX IF NOT EXISTS idx_billboards_traffic_tier ON billboards(traffic_tier);
CREATE INDEX IF NOT EXISTS idx_billboards_price_tier ON billboards(price_tier);
CREATE INDEX IF NOT EXISTS idx_billboards_zipcode ON billboards(zipcode);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListStates(ctx context.Context) ([]model.State, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, state_code FROM states ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list states")
	}
	defer rows.Close()

	var states []model.State
	for rows.Next() {
		var st model.State
		if err := rows.Scan(&st.ID, &st.Name, &st.StateCode); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan state")
		}
		states = append(states, st)
	}
	return states, eris.Wrap(rows.Err(), "sqlite: list states iterate")
}

func (s *SQLiteStore) UpsertStates(ctx context.Context, states []model.State) error {
	for _, st := range states {
		id := st.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO states (id, name, state_code) VALUES (?, ?, ?)
			 ON CONFLICT (name) DO UPDATE SET state_code = excluded.state_code`,
			id, st.Name, st.StateCode,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert state %s", st.Name)
		}
	}
	return nil
}

func (s *SQLiteStore) ListCities(ctx context.Context, stateID string) ([]model.City, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, state_id, state_code FROM cities WHERE state_id = ? ORDER BY name`,
		stateID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cities")
	}
	defer rows.Close()

	var cities []model.City
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.StateID, &c.StateCode); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan city")
		}
		cities = append(cities, c)
	}
	return cities, eris.Wrap(rows.Err(), "sqlite: list cities iterate")
}

func (s *SQLiteStore) FindCity(ctx context.Context, stateID, name string) (*model.City, error) {
	var c model.City
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, state_id, state_code FROM cities WHERE state_id = ? AND name = ?`,
		stateID, name,
	).Scan(&c.ID, &c.Name, &c.StateID, &c.StateCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: find city %s", name)
	}
	return &c, nil
}

func (s *SQLiteStore) CreateCity(ctx context.Context, city model.City) (*model.City, error) {
	if city.ID == "" {
		city.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cities (id, name, state_id, state_code) VALUES (?, ?, ?, ?)`,
		city.ID, city.Name, city.StateID, city.StateCode,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrCityExists
		}
		return nil, eris.Wrapf(err, "sqlite: insert city %s", city.Name)
	}
	return &city, nil
}

func (s *SQLiteStore) DeleteBillboardsBySource(ctx context.Context, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM billboards WHERE source = ?`, source)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete billboards for source %s", source)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return n, nil
}

func (s *SQLiteStore) InsertBillboards(ctx context.Context, billboards []model.Billboard) error {
	if len(billboards) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO billboards (`+strings.Join(billboardColumns, ", ")+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, b := range billboards {
		id := b.ID
		if id == "" {
			id = uuid.New().String()
		}

		var props any
		if b.SourceProperties != nil {
			raw, err := json.Marshal(b.SourceProperties)
			if err != nil {
				return eris.Wrap(err, "sqlite: marshal source properties")
			}
			props = string(raw)
		}

		_, err := stmt.ExecContext(ctx,
			id, b.CityID, b.Name, b.Vendor, b.Address, b.Zipcode,
			b.Latitude, b.Longitude, string(b.BoardType), string(b.TrafficTier), string(b.PriceTier),
			b.ImageURL, b.Source, props, b.Traffic, b.PriceCents,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert billboard")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit insert tx")
}

// sqliteWhere builds the conjunction of filter predicates with ?
// placeholders.
func sqliteWhere(f Filter, args *[]any) string {
	var sb strings.Builder
	sb.WriteString(" WHERE 1=1")

	in := func(column string, vals []string) {
		sb.WriteString(" AND " + column + " IN (" + placeholders(len(vals)) + ")")
		for _, v := range vals {
			*args = append(*args, v)
		}
	}

	if len(f.CityIDs) > 0 {
		in("city_id", f.CityIDs)
	}
	if f.BoardType != "" {
		sb.WriteString(" AND board_type = ?")
		*args = append(*args, string(f.BoardType))
	}
	if f.TrafficTier != "" {
		sb.WriteString(" AND traffic_tier = ?")
		*args = append(*args, string(f.TrafficTier))
	}
	if f.PriceTier != "" {
		sb.WriteString(" AND price_tier = ?")
		*args = append(*args, string(f.PriceTier))
	}
	if len(f.Zipcodes) > 0 {
		in("zipcode", f.Zipcodes)
	}
	return sb.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *SQLiteStore) ListBillboards(ctx context.Context, f Filter) ([]model.Billboard, error) {
	var args []any
	query := `SELECT ` + strings.Join(billboardColumns, ", ") + ` FROM billboards` + sqliteWhere(f, &args)
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list billboards")
	}
	defer rows.Close()

	var billboards []model.Billboard
	for rows.Next() {
		var b model.Billboard
		var name, vendor, address, zipcode, imageURL, props sql.NullString
		var traffic, priceCents sql.NullInt64
		if err := rows.Scan(
			&b.ID, &b.CityID, &name, &vendor, &address, &zipcode,
			&b.Latitude, &b.Longitude, &b.BoardType, &b.TrafficTier, &b.PriceTier,
			&imageURL, &b.Source, &props, &traffic, &priceCents,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan billboard")
		}
		b.Name = nullableString(name)
		b.Vendor = nullableString(vendor)
		b.Address = nullableString(address)
		b.Zipcode = nullableString(zipcode)
		b.ImageURL = nullableString(imageURL)
		b.Traffic = nullableInt64(traffic)
		b.PriceCents = nullableInt64(priceCents)
		if props.Valid && props.String != "" {
			if err := json.Unmarshal([]byte(props.String), &b.SourceProperties); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal source properties")
			}
		}
		billboards = append(billboards, b)
	}
	return billboards, eris.Wrap(rows.Err(), "sqlite: list billboards iterate")
}

func (s *SQLiteStore) CountBillboards(ctx context.Context, f Filter) (int64, error) {
	var args []any
	query := `SELECT COUNT(*) FROM billboards` + sqliteWhere(f, &args)

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, eris.Wrap(err, "sqlite: count billboards")
	}
	return count, nil
}

func (s *SQLiteStore) ListZipcodes(ctx context.Context, cityIDs []string) ([]string, error) {
	query := `SELECT DISTINCT zipcode FROM billboards WHERE zipcode IS NOT NULL`
	var args []any
	if len(cityIDs) > 0 {
		query += ` AND city_id IN (` + placeholders(len(cityIDs)) + `)`
		for _, id := range cityIDs {
			args = append(args, id)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list zipcodes")
	}
	defer rows.Close()

	var zipcodes []string
	for rows.Next() {
		var z string
		if err := rows.Scan(&z); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan zipcode")
		}
		zipcodes = append(zipcodes, z)
	}
	return zipcodes, eris.Wrap(rows.Err(), "sqlite: list zipcodes iterate")
}

func (s *SQLiteStore) CountBySource(ctx context.Context) ([]SourceCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COUNT(*) FROM billboards GROUP BY source ORDER BY source`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by source")
	}
	defer rows.Close()

	var counts []SourceCount
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan source count")
		}
		counts = append(counts, sc)
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count by source iterate")
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
