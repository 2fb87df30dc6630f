package ingest

import (
	"math"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

// BlipRecord is one object from the Blip digital-inventory feed, kept as
// an opaque map so the raw record survives verbatim into
// source_properties.
type BlipRecord map[string]any

const blipVendor = "Blip"

// Location returns the record's province and city names. Records missing
// either are skipped by the loader.
func (b BlipRecord) Location() (string, string, bool) {
	state := model.TrimToNull(b["province"])
	city := model.TrimToNull(b["city"])
	if state == nil || city == nil {
		return "", "", false
	}
	return *state, *city, true
}

// Normalize maps a Blip record to a canonical row. Every Blip board is
// digital; traffic and price tiers come from the feed's impression and
// pricing signals.
func (b BlipRecord) Normalize(cityID string) (*model.Billboard, error) {
	lat, okLat := b.number("lat")
	lon, okLon := b.number("lon")
	if !okLat || !okLon {
		return nil, ErrNoCoordinates
	}

	name := model.TrimToNull(b["display_name"])
	if name == nil {
		name = model.TrimToNull(b["name"])
	}

	vendor := blipVendor
	return &model.Billboard{
		CityID:           cityID,
		Name:             name,
		Vendor:           &vendor,
		Address:          model.TrimToNull(b["address"]),
		Zipcode:          model.TrimToNull(b["postal_code"]),
		Latitude:         lat,
		Longitude:        lon,
		BoardType:        model.BoardTypeDigital,
		TrafficTier:      b.trafficTier(),
		PriceTier:        b.priceTier(),
		ImageURL:         b.imageURL(),
		SourceProperties: model.RawProperties(b),
	}, nil
}

func (b BlipRecord) trafficTier() model.TrafficTier {
	if imp, ok := b.number("daily_impressions"); ok {
		return TrafficTierFromImpressions(&imp)
	}
	return TrafficTierFromImpressions(nil)
}

// priceTier prefers the CPM range (high end first), then the minimum
// price, then the neutral $$ default.
func (b BlipRecord) priceTier() model.PriceTier {
	if rng, ok := b["cpm_range"].(map[string]any); ok {
		if cpm, ok := numberValue(rng["high_cpm"]); ok {
			return PriceTierFromCPM(cpm)
		}
		if cpm, ok := numberValue(rng["low_cpm"]); ok {
			return PriceTierFromCPM(cpm)
		}
	}
	if minPrice, ok := b.number("max_minimum_price"); ok {
		return PriceTierFromMinPrice(minPrice)
	}
	return model.PriceTierStandard
}

// imageURL picks the first photo's thumbnail, falling back to its full
// URL.
func (b BlipRecord) imageURL() *string {
	photos, ok := b["photos"].([]any)
	if !ok || len(photos) == 0 {
		return nil
	}
	first, ok := photos[0].(map[string]any)
	if !ok {
		return nil
	}
	if u := model.TrimToNull(first["thumbnail_url"]); u != nil {
		return u
	}
	return model.TrimToNull(first["url"])
}

func (b BlipRecord) number(key string) (float64, bool) {
	return numberValue(b[key])
}

func numberValue(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
