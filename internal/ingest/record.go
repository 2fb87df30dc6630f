package ingest

import (
	"github.com/rotisserie/eris"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

// ErrNoCoordinates rejects a source record lacking usable numeric
// coordinates. Rejection is a per-record skip, never a run failure.
var ErrNoCoordinates = eris.New("ingest: record has no usable coordinates")

// SourceRecord is one raw record from an ingestion source. Location
// reports the record's own state/city names when the source carries them;
// ok is false for sources loaded into a fixed city.
type SourceRecord interface {
	Location() (stateName, cityName string, ok bool)
	Normalize(cityID string) (*model.Billboard, error)
}
