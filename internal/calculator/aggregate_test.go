package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TranchePlanner/internal/model"
)

func TestAggregate_RunningBreakEven(t *testing.T) {
	alloc := NewAllocation([]model.PriceLevel{100, 90}, []float64{1, 1})

	rows, out := Aggregate(model.Tranche1, alloc, model.RunAccumulator{})

	require.Len(t, rows, 2)
	assert.Equal(t, model.Tranche1, rows[0].Tranche)
	assert.Equal(t, 1.0, rows[0].CumulativeLots)
	assert.InDelta(t, 100, rows[0].BreakEven, 1e-12)
	assert.InDelta(t, 0, rows[0].FloatingPnL, 1e-9)

	assert.Equal(t, 2.0, rows[1].CumulativeLots)
	assert.InDelta(t, 95, rows[1].BreakEven, 1e-12)
	assert.InDelta(t, -1000, rows[1].FloatingPnL, 1e-9)

	assert.Equal(t, model.RunAccumulator{Cost: 19000, Lots: 2}, out)
}

func TestAggregate_CarriesPriorTotals(t *testing.T) {
	carried := model.RunAccumulator{Cost: 20000, Lots: 2}
	alloc := NewAllocation([]model.PriceLevel{90}, []float64{2})

	rows, out := Aggregate(model.Tranche2, alloc, carried)

	require.Len(t, rows, 1)
	assert.Equal(t, 4.0, rows[0].CumulativeLots)
	assert.InDelta(t, 38000, rows[0].CumulativeCost, 1e-9)
	assert.InDelta(t, 95, rows[0].BreakEven, 1e-12)
	assert.InDelta(t, -2000, rows[0].FloatingPnL, 1e-9)
	assert.Equal(t, out.Lots, rows[0].CumulativeLots)
}

func TestAggregate_ZeroAllocationKeepsPriorBreakEven(t *testing.T) {
	carried := model.RunAccumulator{Cost: 20000, Lots: 2}
	alloc := NewAllocation([]model.PriceLevel{80}, []float64{0})

	rows, out := Aggregate(model.Tranche3, alloc, carried)

	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].CumulativeLots)
	assert.InDelta(t, 100, rows[0].BreakEven, 1e-12)
	assert.InDelta(t, -4000, rows[0].FloatingPnL, 1e-9)
	assert.Equal(t, carried, out)
}

func TestAggregate_NothingHeld(t *testing.T) {
	alloc := NewAllocation([]model.PriceLevel{2525}, []float64{0})

	rows, out := Aggregate(model.Tranche1, alloc, model.RunAccumulator{})

	assert.Equal(t, 0.0, rows[0].BreakEven)
	assert.Equal(t, 0.0, rows[0].FloatingPnL)
	assert.Equal(t, model.RunAccumulator{}, out)
}

func TestAggregate_EmptyAllocationReturnsCarried(t *testing.T) {
	carried := model.RunAccumulator{Cost: 1, Lots: 1}
	rows, out := Aggregate(model.Tranche1, Allocation{}, carried)
	assert.Empty(t, rows)
	assert.Equal(t, carried, out)
}
