package calculator

import (
	"gonum.org/v1/gonum/floats"

	"TranchePlanner/internal/model"
)

// Allocation is the per-level quantity and partial cost of one tranche.
type Allocation struct {
	Levels []model.PriceLevel
	Lots   []float64
	Costs  []float64
}

// Len returns the number of levels in the allocation.
func (a Allocation) Len() int { return len(a.Levels) }

// TotalLots returns the sum of lots across all levels.
func (a Allocation) TotalLots() float64 { return floats.Sum(a.Lots) }

// ScaleFactor returns desired / sum(weights), or 0 when the weights sum to 0.
func ScaleFactor(weights []float64, desired float64) float64 {
	sum := floats.Sum(weights)
	if sum == 0 {
		return 0
	}
	return desired / sum
}

// ScaleToLots normalizes weights so the tranche buys exactly desired lots.
func ScaleToLots(levels []model.PriceLevel, weights []float64, desired float64) Allocation {
	if len(levels) != len(weights) {
		panic("calculator: levels and weights length mismatch")
	}
	lots := make([]float64, len(weights))
	floats.ScaleTo(lots, ScaleFactor(weights, desired), weights)
	return NewAllocation(levels, lots)
}

// NewAllocation pairs lots with their levels and derives partial costs.
func NewAllocation(levels []model.PriceLevel, lots []float64) Allocation {
	if len(levels) != len(lots) {
		panic("calculator: levels and lots length mismatch")
	}
	return Allocation{
		Levels: levels,
		Lots:   lots,
		Costs:  PartialCosts(levels, lots),
	}
}

// PartialCosts returns price * lots * LotSize for each level.
func PartialCosts(levels []model.PriceLevel, lots []float64) []float64 {
	costs := make([]float64, len(levels))
	for i, p := range levels {
		costs[i] = float64(p) * lots[i] * model.LotSize
	}
	return costs
}

// Override returns a new allocation with lots multiplied by the override
// factors and partial costs recomputed from the overridden lots.
func Override(a Allocation, o model.LotOverride) Allocation {
	lots := make([]float64, len(a.Lots))
	for i, p := range a.Levels {
		if float64(p) > o.Cutoff {
			lots[i] = a.Lots[i] * o.AboveFactor
		} else {
			lots[i] = a.Lots[i] * o.AtOrBelowFactor
		}
	}
	return NewAllocation(a.Levels, lots)
}
