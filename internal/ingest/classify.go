// Package ingest normalizes heterogeneous billboard source records into
// canonical rows and batch-loads them into the store.
package ingest

import (
	"math"

	"github.com/lonestar-outdoor/boardmap/internal/model"
)

// Daily-impression thresholds for traffic tier classification.
const (
	trafficLowCeiling  = 10_000
	trafficMedCeiling  = 50_000
	trafficHighCeiling = 200_000
)

// TrafficTierFromImpressions buckets daily impressions into a tier.
// A missing or non-numeric value lands in the neutral medium bucket.
func TrafficTierFromImpressions(daily *float64) model.TrafficTier {
	if daily == nil || math.IsNaN(*daily) {
		return model.TrafficTierMedium
	}
	switch {
	case *daily < trafficLowCeiling:
		return model.TrafficTierLow
	case *daily < trafficMedCeiling:
		return model.TrafficTierMedium
	case *daily < trafficHighCeiling:
		return model.TrafficTierHigh
	default:
		return model.TrafficTierPrime
	}
}

// PriceTierFromCPM buckets a cost-per-mille value into a tier.
func PriceTierFromCPM(cpm float64) model.PriceTier {
	switch {
	case cpm < 5:
		return model.PriceTierBudget
	case cpm < 10:
		return model.PriceTierStandard
	case cpm < 20:
		return model.PriceTierPremium
	default:
		return model.PriceTierTop
	}
}

// PriceTierFromMinPrice buckets a per-play minimum price into a tier.
func PriceTierFromMinPrice(price float64) model.PriceTier {
	switch {
	case price < 0.10:
		return model.PriceTierBudget
	case price < 0.30:
		return model.PriceTierStandard
	case price < 0.70:
		return model.PriceTierPremium
	default:
		return model.PriceTierTop
	}
}
