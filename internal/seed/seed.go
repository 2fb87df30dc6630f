// Package seed holds the embedded fixture data installed by the seed
// command: the state lookup table, the default Houston city, and a few
// sample billboards for empty-database smoke testing.
package seed

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

//go:embed states.yaml
var statesYAML []byte

// HoustonCityID is the fixture city every GeoJSON import defaults to.
const HoustonCityID = "00000000-0000-0000-0000-000000000001"

// SourceTag marks seeded billboards so they can be purged before a real
// import.
const SourceTag = "seed"

type stateFixture struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// States parses the embedded state fixtures. IDs are left empty; the
// store assigns them on first insert and the upsert keeps them stable
// afterwards.
func States() ([]model.State, error) {
	var fixtures []stateFixture
	if err := yaml.Unmarshal(statesYAML, &fixtures); err != nil {
		return nil, eris.Wrap(err, "seed: parse states fixture")
	}

	states := make([]model.State, 0, len(fixtures))
	for _, f := range fixtures {
		states = append(states, model.State{Name: f.Name, StateCode: f.Code})
	}
	return states, nil
}

// HoustonCity returns the fixture city bound to the given Texas state row.
func HoustonCity(texas model.State) model.City {
	return model.City{
		ID:        HoustonCityID,
		Name:      "Houston",
		StateID:   texas.ID,
		StateCode: texas.StateCode,
	}
}

// Billboards returns the sample rows inserted by the seed command.
func Billboards(cityID string) []model.Billboard {
	str := func(s string) *string { return &s }

	return []model.Billboard{
		{
			CityID:      cityID,
			Name:        str("I-10 East Gateway"),
			Vendor:      str("Clear Channel"),
			Address:     str("7500 East Fwy"),
			Zipcode:     str("77011"),
			Latitude:    29.7520,
			Longitude:   -95.2915,
			BoardType:   model.BoardTypeStatic,
			TrafficTier: model.TrafficTierHigh,
			PriceTier:   model.PriceTierPremium,
			Source:      SourceTag,
		},
		{
			CityID:      cityID,
			Name:        str("Downtown Digital Spectacular"),
			Vendor:      str("Outfront"),
			Address:     str("1200 Main St"),
			Zipcode:     str("77002"),
			Latitude:    29.7536,
			Longitude:   -95.3620,
			BoardType:   model.BoardTypeDigital,
			TrafficTier: model.TrafficTierPrime,
			PriceTier:   model.PriceTierTop,
			Source:      SourceTag,
		},
		{
			CityID:      cityID,
			Name:        str("Westheimer & Montrose"),
			Vendor:      str("Lamar"),
			Address:     str("1100 Westheimer Rd"),
			Zipcode:     str("77006"),
			Latitude:    29.7430,
			Longitude:   -95.3905,
			BoardType:   model.BoardTypeStatic,
			TrafficTier: model.TrafficTierMedium,
			PriceTier:   model.PriceTierStandard,
			Source:      SourceTag,
		},
	}
}
