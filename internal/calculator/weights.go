package calculator

import "TranchePlanner/internal/model"

// Base weights around a target price: buy small above it, large below it,
// nothing exactly at it.
const (
	WeightAboveTarget = 1.0
	WeightBelowTarget = 5.0
	WeightAtTarget    = 0.0
)

// BaseWeight returns the unscaled purchase weight of a level relative to target.
func BaseWeight(price model.PriceLevel, target float64) float64 {
	p := float64(price)
	switch {
	case p > target:
		return WeightAboveTarget
	case p < target:
		return WeightBelowTarget
	default:
		return WeightAtTarget
	}
}

// BaseWeights maps BaseWeight over levels.
func BaseWeights(levels []model.PriceLevel, target float64) []float64 {
	weights := make([]float64, len(levels))
	for i, p := range levels {
		weights[i] = BaseWeight(p, target)
	}
	return weights
}

// RegionalLots assigns fixed lots per region around r.Cutoff, multiplied by r.Scale.
func RegionalLots(levels []model.PriceLevel, r model.RegionLots) []float64 {
	lots := make([]float64, len(levels))
	for i, price := range levels {
		p := float64(price)
		var base float64
		switch {
		case p > r.Cutoff:
			base = r.Above
		case p == r.Cutoff:
			base = r.At
		default:
			base = r.Below
		}
		lots[i] = base * r.Scale
	}
	return lots
}
