package ingest

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ReadFeatureCollection reads and decodes a GeoJSON file.
func ReadFeatureCollection(path string) (*FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open geojson %s", path)
	}
	defer f.Close()

	var fc FeatureCollection
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&fc); err != nil {
		return nil, eris.Wrapf(err, "ingest: decode geojson %s", path)
	}
	return &fc, nil
}

// ReadBlipFile reads a Blip feed file, a single JSON array of records.
// Elements are decoded one at a time so a large feed never needs a second
// in-memory copy of the raw document.
func ReadBlipFile(path string) ([]BlipRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open blip feed %s", path)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))

	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read blip opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, eris.Errorf("ingest: blip feed root must be an array, got %v", tok)
	}

	var records []BlipRecord
	for dec.More() {
		var rec BlipRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, eris.Wrap(err, "ingest: decode blip record")
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "ingest: read blip closing token")
	}
	return records, nil
}
