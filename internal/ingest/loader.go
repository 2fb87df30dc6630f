package ingest

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lonestar-outdoor/boardmap/internal/model"
	"github.com/lonestar-outdoor/boardmap/internal/observability"
)

// BillboardWriter is the store surface the loader needs.
type BillboardWriter interface {
	DeleteBillboardsBySource(ctx context.Context, source string) (int64, error)
	InsertBillboards(ctx context.Context, rows []model.Billboard) error
}

// Options configures one load run.
type Options struct {
	// BatchSize is the bulk-insert batch size (default 100).
	BatchSize int
	// FixedCityID assigns every record to one city. Required when the
	// loader has no resolver; ignored otherwise.
	FixedCityID string
}

// Result reports what happened to the input records.
type Result struct {
	Inserted int
	Skipped  int
}

const defaultBatchSize = 100

// Loader replaces one source partition of the billboards table with the
// normalized contents of an input file.
type Loader struct {
	writer   BillboardWriter
	resolver *CityResolver
	opts     Options
	metrics  *observability.Metrics
}

// NewLoader creates a loader. resolver may be nil for sources loaded into
// a fixed city, in which case opts.FixedCityID must be set.
func NewLoader(w BillboardWriter, resolver *CityResolver, opts Options, metrics *observability.Metrics) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Loader{writer: w, resolver: resolver, opts: opts, metrics: metrics}
}

// Run deletes all rows carrying sourceTag, normalizes every input record,
// and bulk-inserts the survivors in fixed-size batches. Per-record
// failures are skips; a failed batch insert aborts the run (batches
// already committed stay committed).
func (l *Loader) Run(ctx context.Context, sourceTag string, records []SourceRecord) (Result, error) {
	log := zap.L().With(
		zap.String("component", "ingest.loader"),
		zap.String("source", sourceTag),
	)

	if l.resolver == nil && l.opts.FixedCityID == "" {
		return Result{}, eris.New("ingest: loader needs a resolver or a fixed city")
	}

	deleted, err := l.writer.DeleteBillboardsBySource(ctx, sourceTag)
	if err != nil {
		return Result{}, eris.Wrapf(err, "ingest: delete source %s", sourceTag)
	}
	log.Info("source partition cleared", zap.Int64("deleted", deleted))

	var res Result
	rows := make([]model.Billboard, 0, len(records))
	for _, rec := range records {
		l.metrics.RecordsRead.WithLabelValues(sourceTag).Inc()

		cityID, ok := l.cityFor(ctx, rec, log)
		if !ok {
			res.Skipped++
			l.metrics.RecordsSkipped.WithLabelValues(sourceTag, "location").Inc()
			continue
		}

		row, err := rec.Normalize(cityID)
		if err != nil {
			res.Skipped++
			l.metrics.RecordsSkipped.WithLabelValues(sourceTag, "normalize").Inc()
			if !errors.Is(err, ErrNoCoordinates) {
				log.Warn("record normalization failed", zap.Error(err))
			}
			continue
		}
		row.Source = sourceTag
		rows = append(rows, *row)
	}

	log.Info("records normalized",
		zap.Int("rows", len(rows)),
		zap.Int("skipped", res.Skipped),
	)

	for start := 0; start < len(rows); start += l.opts.BatchSize {
		end := min(start+l.opts.BatchSize, len(rows))
		batch := rows[start:end]

		if err := l.writer.InsertBillboards(ctx, batch); err != nil {
			return res, eris.Wrapf(err, "ingest: insert batch %d for source %s",
				start/l.opts.BatchSize+1, sourceTag)
		}
		res.Inserted += len(batch)
		l.metrics.BatchSize.Observe(float64(len(batch)))
		l.metrics.RecordsInserted.WithLabelValues(sourceTag).Add(float64(len(batch)))
		log.Info("batch inserted", zap.Int("inserted", res.Inserted), zap.Int("total", len(rows)))
	}

	log.Info("load complete", zap.Int("inserted", res.Inserted), zap.Int("skipped", res.Skipped))
	return res, nil
}

// cityFor resolves the target city for one record. Resolution failures
// are per-record: logged and reported as a skip.
func (l *Loader) cityFor(ctx context.Context, rec SourceRecord, log *zap.Logger) (string, bool) {
	if l.resolver == nil {
		return l.opts.FixedCityID, true
	}

	stateName, cityName, ok := rec.Location()
	if !ok {
		return "", false
	}

	cityID, err := l.resolver.Resolve(ctx, stateName, cityName)
	if err != nil {
		if !errors.Is(err, ErrUnknownState) {
			log.Warn("city resolution failed",
				zap.String("state", stateName),
				zap.String("city", cityName),
				zap.Error(err),
			)
		}
		return "", false
	}
	return cityID, true
}
