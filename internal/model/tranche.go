package model

// WeightingMode selects how a tranche turns price levels into lots.
type WeightingMode string

const (
	// WeightScaled assigns base weights around a target price and scales them to a lot total.
	WeightScaled WeightingMode = "SCALED"
	// WeightRegional assigns fixed per-region lots around a cutoff price.
	WeightRegional WeightingMode = "REGIONAL"
)

// RegionLots holds fixed lots for the regions above, at and below a cutoff.
type RegionLots struct {
	Cutoff float64
	Above  float64
	At     float64
	Below  float64
	Scale  float64
}

// LotOverride multiplies scaled lots depending on which side of a cutoff a level sits.
// Levels strictly above Cutoff use AboveFactor, the rest use AtOrBelowFactor.
type LotOverride struct {
	Cutoff          float64
	AboveFactor     float64
	AtOrBelowFactor float64
}

// TrancheSpec configures one tranche for a single run.
type TrancheSpec struct {
	Tag         TrancheTag
	Start       float64
	End         float64
	Step        int
	Weighting   WeightingMode
	TargetPrice float64
	DesiredLots float64
	Regions     *RegionLots
	Override    *LotOverride
}
