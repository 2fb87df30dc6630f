package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonestar-outdoor/boardmap/internal/model"
	"github.com/lonestar-outdoor/boardmap/internal/observability"
)

// fakeRecord is a SourceRecord with scripted behavior.
type fakeRecord struct {
	state, city  string
	located      bool
	normalizeErr error
}

func (f fakeRecord) Location() (string, string, bool) {
	return f.state, f.city, f.located
}

func (f fakeRecord) Normalize(cityID string) (*model.Billboard, error) {
	if f.normalizeErr != nil {
		return nil, f.normalizeErr
	}
	return &model.Billboard{CityID: cityID, BoardType: model.BoardTypeStatic}, nil
}

// fakeWriter records the order and shape of store calls.
type fakeWriter struct {
	calls       []string
	batchSizes  []int
	inserted    []model.Billboard
	deleteErr   error
	insertErr   error
	failOnBatch int // 1-based; 0 means never fail
}

func (w *fakeWriter) DeleteBillboardsBySource(ctx context.Context, source string) (int64, error) {
	w.calls = append(w.calls, "delete:"+source)
	if w.deleteErr != nil {
		return 0, w.deleteErr
	}
	return 0, nil
}

func (w *fakeWriter) InsertBillboards(ctx context.Context, rows []model.Billboard) error {
	w.calls = append(w.calls, "insert")
	w.batchSizes = append(w.batchSizes, len(rows))
	if w.failOnBatch > 0 && len(w.batchSizes) == w.failOnBatch {
		return w.insertErr
	}
	w.inserted = append(w.inserted, rows...)
	return nil
}

func fixedRecords(n int) []SourceRecord {
	records := make([]SourceRecord, n)
	for i := range records {
		records[i] = fakeRecord{}
	}
	return records
}

func TestLoaderDeletesBeforeInserting(t *testing.T) {
	w := &fakeWriter{}
	l := NewLoader(w, nil, Options{FixedCityID: "city-1"}, observability.NewMetricsForTesting())

	res, err := l.Run(context.Background(), "houston_geojson", fixedRecords(3))
	require.NoError(t, err)

	assert.Equal(t, Result{Inserted: 3}, res)
	require.Len(t, w.calls, 2)
	assert.Equal(t, "delete:houston_geojson", w.calls[0])
	assert.Equal(t, "insert", w.calls[1])
	for _, row := range w.inserted {
		assert.Equal(t, "houston_geojson", row.Source)
		assert.Equal(t, "city-1", row.CityID)
	}
}

func TestLoaderBatching(t *testing.T) {
	w := &fakeWriter{}
	l := NewLoader(w, nil, Options{BatchSize: 100, FixedCityID: "c"}, observability.NewMetricsForTesting())

	res, err := l.Run(context.Background(), "src", fixedRecords(205))
	require.NoError(t, err)

	assert.Equal(t, 205, res.Inserted)
	assert.Equal(t, []int{100, 100, 5}, w.batchSizes)
}

func TestLoaderSkipsBadRecords(t *testing.T) {
	records := []SourceRecord{
		fakeRecord{},
		fakeRecord{normalizeErr: ErrNoCoordinates},
		fakeRecord{normalizeErr: fmt.Errorf("bad field")},
		fakeRecord{},
	}

	w := &fakeWriter{}
	l := NewLoader(w, nil, Options{FixedCityID: "c"}, observability.NewMetricsForTesting())

	res, err := l.Run(context.Background(), "src", records)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 2, Skipped: 2}, res)
}

func TestLoaderResolverSkips(t *testing.T) {
	dir := newFakeDirectory()
	resolver, err := NewCityResolver(context.Background(), dir)
	require.NoError(t, err)

	records := []SourceRecord{
		fakeRecord{state: "Texas", city: "Houston", located: true},
		fakeRecord{located: false},
		fakeRecord{state: "Atlantis", city: "Lost City", located: true},
	}

	w := &fakeWriter{}
	l := NewLoader(w, resolver, Options{}, observability.NewMetricsForTesting())

	res, err := l.Run(context.Background(), "blip_digital", records)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 1, Skipped: 2}, res)
	require.Len(t, w.inserted, 1)
	assert.Equal(t, "created-Houston", w.inserted[0].CityID)
}

func TestLoaderRequiresCityTarget(t *testing.T) {
	l := NewLoader(&fakeWriter{}, nil, Options{}, observability.NewMetricsForTesting())

	_, err := l.Run(context.Background(), "src", fixedRecords(1))
	assert.Error(t, err)
}

func TestLoaderDeleteFailureAbortsRun(t *testing.T) {
	w := &fakeWriter{deleteErr: assert.AnError}
	l := NewLoader(w, nil, Options{FixedCityID: "c"}, observability.NewMetricsForTesting())

	_, err := l.Run(context.Background(), "src", fixedRecords(2))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"delete:src"}, w.calls)
}

func TestLoaderBatchFailureReturnsPartialResult(t *testing.T) {
	w := &fakeWriter{insertErr: assert.AnError, failOnBatch: 2}
	l := NewLoader(w, nil, Options{BatchSize: 50, FixedCityID: "c"}, observability.NewMetricsForTesting())

	res, err := l.Run(context.Background(), "src", fixedRecords(120))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 50, res.Inserted)
}
