package ingest

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

// FeatureCollection is the top-level shape of a GeoJSON billboard export.
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON feature. Properties are kept as an opaque map so
// the raw record survives verbatim into source_properties.
type Feature struct {
	Geometry   json.RawMessage `json:"geometry"`
	Properties model.RawProperties `json:"properties"`
}

// Location reports no per-record location: GeoJSON exports are loaded
// into a single caller-supplied city.
func (f Feature) Location() (string, string, bool) {
	return "", "", false
}

// Normalize maps a GeoJSON feature to a canonical row. The export carries
// no type, traffic, or pricing signal, so every row gets the static /
// medium / $$ defaults.
func (f Feature) Normalize(cityID string) (*model.Billboard, error) {
	lng, lat, err := f.point()
	if err != nil {
		return nil, err
	}

	address := f.address()
	name := f.prop("ID_NUMBER")
	if name == nil {
		name = f.prop("KEY")
	}
	if name == nil {
		name = address
	}

	return &model.Billboard{
		CityID:           cityID,
		Name:             name,
		Vendor:           f.prop("SIGN_CO"),
		Address:          address,
		Zipcode:          f.prop("ZIP"),
		Latitude:         lat,
		Longitude:        lng,
		BoardType:        model.BoardTypeStatic,
		TrafficTier:      model.TrafficTierMedium,
		PriceTier:        model.PriceTierStandard,
		SourceProperties: f.Properties,
	}, nil
}

// point decodes the feature geometry, rejecting anything that is not a
// plain point with numeric coordinates.
func (f Feature) point() (lng, lat float64, err error) {
	if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
		return 0, 0, ErrNoCoordinates
	}
	var g geom.T
	if err := geojson.Unmarshal(f.Geometry, &g); err != nil {
		return 0, 0, ErrNoCoordinates
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return 0, 0, ErrNoCoordinates
	}
	coords := pt.Coords()
	if len(coords) < 2 {
		return 0, 0, ErrNoCoordinates
	}
	return coords[0], coords[1], nil
}

// address picks the best available address by priority: the pre-formatted
// match address, the permitted address, the street number + street name
// concatenation, then whichever of the two parts exists alone.
func (f Feature) address() *string {
	if a := f.prop("MATCH_ADDR"); a != nil {
		return a
	}
	if a := f.prop("PERMITTED"); a != nil {
		return a
	}
	num := f.prop("ACTUAL_ADD")
	street := f.prop("STREET_NAM")
	if num != nil && street != nil {
		joined := *num + " " + *street
		return &joined
	}
	if num != nil {
		return num
	}
	return street
}

func (f Feature) prop(key string) *string {
	return model.TrimToNull(f.Properties[key])
}
