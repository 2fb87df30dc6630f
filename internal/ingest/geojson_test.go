package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

func pointGeometry(lng, lat float64) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{
		"type":        "Point",
		"coordinates": []float64{lng, lat},
	})
	return raw
}

func TestFeatureNormalize(t *testing.T) {
	f := Feature{
		Geometry: pointGeometry(-95.369, 29.760),
		Properties: model.RawProperties{
			"ID_NUMBER":  "BB-1042",
			"SIGN_CO":    "Lamar",
			"MATCH_ADDR": "123 Main St",
			"ZIP":        "77002",
		},
	}

	b, err := f.Normalize("city-1")
	require.NoError(t, err)

	assert.Equal(t, "city-1", b.CityID)
	assert.Equal(t, "BB-1042", *b.Name)
	assert.Equal(t, "Lamar", *b.Vendor)
	assert.Equal(t, "123 Main St", *b.Address)
	assert.Equal(t, "77002", *b.Zipcode)
	assert.Equal(t, -95.369, b.Longitude)
	assert.Equal(t, 29.760, b.Latitude)
	assert.Equal(t, model.BoardTypeStatic, b.BoardType)
	assert.Equal(t, model.TrafficTierMedium, b.TrafficTier)
	assert.Equal(t, model.PriceTierStandard, b.PriceTier)
	assert.Nil(t, b.ImageURL)
	assert.Equal(t, f.Properties, b.SourceProperties)
}

func TestFeatureNormalize_RejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name     string
		geometry json.RawMessage
	}{
		{name: "missing geometry", geometry: nil},
		{name: "null geometry", geometry: json.RawMessage(`null`)},
		{name: "not a point", geometry: json.RawMessage(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`)},
		{name: "malformed json", geometry: json.RawMessage(`{"type":`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Feature{Geometry: tt.geometry, Properties: model.RawProperties{}}
			_, err := f.Normalize("city-1")
			assert.ErrorIs(t, err, ErrNoCoordinates)
		})
	}
}

func TestFeatureAddressFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		properties model.RawProperties
		expected   *string
	}{
		{
			name: "match address wins",
			properties: model.RawProperties{
				"MATCH_ADDR": "1 Match Way",
				"PERMITTED":  "2 Permit Rd",
				"ACTUAL_ADD": "300",
				"STREET_NAM": "Elm St",
			},
			expected: strPtr("1 Match Way"),
		},
		{
			name: "permitted address second",
			properties: model.RawProperties{
				"PERMITTED":  "2 Permit Rd",
				"ACTUAL_ADD": "300",
			},
			expected: strPtr("2 Permit Rd"),
		},
		{
			name: "number plus street concatenation",
			properties: model.RawProperties{
				"ACTUAL_ADD": "300",
				"STREET_NAM": "Elm St",
			},
			expected: strPtr("300 Elm St"),
		},
		{
			name:       "street name alone",
			properties: model.RawProperties{"STREET_NAM": "Elm St"},
			expected:   strPtr("Elm St"),
		},
		{
			name:       "whitespace values become nil",
			properties: model.RawProperties{"MATCH_ADDR": "   ", "PERMITTED": ""},
			expected:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Feature{Geometry: pointGeometry(0, 0), Properties: tt.properties}
			b, err := f.Normalize("city-1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b.Address)
		})
	}
}

func TestFeatureNameFallbacks(t *testing.T) {
	// No ID_NUMBER or KEY: the name falls back to the address.
	f := Feature{
		Geometry:   pointGeometry(0, 0),
		Properties: model.RawProperties{"MATCH_ADDR": "9 Oak Ave"},
	}
	b, err := f.Normalize("city-1")
	require.NoError(t, err)
	assert.Equal(t, "9 Oak Ave", *b.Name)

	f.Properties["KEY"] = "K-77"
	b, err = f.Normalize("city-1")
	require.NoError(t, err)
	assert.Equal(t, "K-77", *b.Name)
}

func TestFeatureLocation(t *testing.T) {
	_, _, ok := Feature{}.Location()
	assert.False(t, ok)
}

func strPtr(s string) *string { return &s }
