package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TranchePlanner/internal/calculator"
	"TranchePlanner/internal/model"
	"TranchePlanner/internal/strategy"
)

func TestBuild_RowCountMatchesLevels(t *testing.T) {
	for _, p := range []float64{2700, 2702.7, 1850.25, 400} {
		for _, rs := range []strategy.RuleSet{strategy.RulesA, strategy.RulesB} {
			steps, err := Steps(p, rs)
			require.NoError(t, err)

			want := 0
			for _, st := range steps {
				levels, err := calculator.PriceLevels(st.Spec.Start, st.Spec.End, st.Spec.Step)
				require.NoError(t, err)
				want += len(levels)
			}

			plan, err := Build(p, rs)
			require.NoError(t, err)
			assert.Len(t, plan.Rows, want, "p=%.2f variant %s", p, rs.Variant)
		}
	}
}

func TestBuild_VariantBScenario(t *testing.T) {
	plan, err := Build(2700, strategy.RulesB)
	require.NoError(t, err)
	require.Len(t, plan.Rows, 63)
	assert.Equal(t, "B", plan.Variant)

	t1 := plan.Tranches[0]
	assert.Equal(t, model.Tranche1, t1.Tag)
	assert.Equal(t, 21, t1.Levels)
	assert.Equal(t, 2.5, t1.Lots)
	// tranche 1 is weighted to land exactly on its target
	assert.InDelta(t, 2630, t1.ClosingBreakEven, 1e-4)

	assert.Equal(t, model.PriceLevel(2700), plan.Rows[0].Price)
	assert.Equal(t, model.PriceLevel(2600), plan.Rows[20].Price)
	assert.Equal(t, 2.5, plan.Rows[20].CumulativeLots)
	assert.Equal(t, 0.0, plan.Rows[14].Lots, "2630 buys nothing")

	assert.Equal(t, 5.05, plan.Tranches[1].Lots)
	assert.Equal(t, 7.5, plan.Tranches[2].Lots)
	assert.Equal(t, 15.05, plan.Summary.CumulativeLots)

	last := plan.Rows[len(plan.Rows)-1]
	assert.Equal(t, last.BreakEven, plan.Summary.BreakEven)
	assert.Equal(t, last.FloatingPnL, plan.Summary.FloatingPnL)
	assert.Equal(t, model.PriceLevel(2400), last.Price)
}

func TestBuild_VariantAScenario(t *testing.T) {
	plan, err := Build(2700, strategy.RulesA)
	require.NoError(t, err)
	require.Len(t, plan.Rows, 63)

	assert.Equal(t, 2.5, plan.Tranches[0].Lots)
	assert.InDelta(t, 4.999706, plan.Tranches[1].Lots, 1e-9)
	assert.InDelta(t, 7.499577, plan.Tranches[2].Lots, 1e-9)
	assert.InDelta(t, 14.999283, plan.Summary.CumulativeLots, 1e-9)
}

func TestBuild_Tranche1HitsDesiredLots(t *testing.T) {
	for _, rs := range []strategy.RuleSet{strategy.RulesA, strategy.RulesB} {
		steps, err := Steps(2702.7, rs)
		require.NoError(t, err)
		assert.InDelta(t, 2.5, steps[0].CarriedOut.Lots, 1e-12, rs.Name)
	}
}

func TestSteps_CumulativeLotsNonDecreasing(t *testing.T) {
	for _, rs := range []strategy.RuleSet{strategy.RulesA, strategy.RulesB} {
		steps, err := Steps(2700, rs)
		require.NoError(t, err)

		prev := 0.0
		for _, st := range steps {
			for _, r := range st.Rows {
				assert.GreaterOrEqual(t, r.CumulativeLots, prev)
				prev = r.CumulativeLots
			}
		}
	}
}

func TestSteps_CrossTrancheContinuity(t *testing.T) {
	for _, rs := range []strategy.RuleSet{strategy.RulesA, strategy.RulesB} {
		steps, err := Steps(2700, rs)
		require.NoError(t, err)

		carried := model.RunAccumulator{}
		for _, st := range steps {
			assert.Equal(t, carried, st.CarriedIn)

			var ownCost, ownLots float64
			for i := range st.Allocation.Levels {
				ownCost += st.Allocation.Costs[i]
				ownLots += st.Allocation.Lots[i]
			}
			cost := st.CarriedIn.Cost + ownCost
			lots := st.CarriedIn.Lots + ownLots
			last := st.Rows[len(st.Rows)-1]
			assert.Equal(t, cost/(lots*model.LotSize), last.BreakEven, "%s %s", rs.Variant, st.Spec.Tag)
			assert.Equal(t, model.RunAccumulator{Cost: last.CumulativeCost, Lots: last.CumulativeLots}, st.CarriedOut)
			carried = st.CarriedOut
		}
	}
}

func TestSteps_ZeroWeightTranche(t *testing.T) {
	rules := strategy.RulesB
	// tranche 2 collapses to the single level 2600, which is also its target
	rules.Rules[1] = strategy.TrancheRule{
		Tag:          model.Tranche2,
		UpperOffset:  100,
		LowerOffset:  100,
		Weighting:    model.WeightScaled,
		TargetOffset: 100,
		DesiredLots:  5,
	}

	steps, err := Steps(2700, rules)
	require.NoError(t, err)

	t1, t2 := steps[0], steps[1]
	require.Len(t, t2.Rows, 1)
	assert.Equal(t, 0.0, t2.Allocation.Lots[0])
	assert.Equal(t, 0.0, t2.Allocation.Costs[0])
	assert.Equal(t, t1.CarriedOut, t2.CarriedOut)
	assert.Equal(t, t1.CarriedOut.BreakEven(), t2.Rows[0].BreakEven)

	// tranche 1 rows are untouched by the empty tranche
	plain, err := Steps(2700, strategy.RulesB)
	require.NoError(t, err)
	assert.Equal(t, plain[0].Rows, t1.Rows)
}

func TestSteps_ZeroWeightFirstTranche(t *testing.T) {
	rules := strategy.RulesB
	rules.Rules[0] = strategy.TrancheRule{
		Tag:          model.Tranche1,
		UpperOffset:  0,
		LowerOffset:  0,
		Weighting:    model.WeightScaled,
		TargetOffset: 0,
		DesiredLots:  2.5,
	}

	steps, err := Steps(2700, rules)
	require.NoError(t, err)
	assert.Equal(t, 0.0, steps[0].Rows[0].BreakEven)
	assert.Equal(t, 0.0, steps[0].Rows[0].FloatingPnL)
	assert.Equal(t, model.RunAccumulator{}, steps[0].CarriedOut)
}

func TestBuild_InvalidStartingPrice(t *testing.T) {
	for _, p := range []float64{0, -10, 250, 300, math.NaN(), math.Inf(1), math.Inf(-1), 1e30, calculator.MaxBound + 1} {
		plan, err := Build(p, strategy.RulesB)
		require.Error(t, err, "p=%v", p)
		assert.Nil(t, plan)
		assert.ErrorIs(t, err, ErrInvalidStartingPrice)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "starting_price", cfgErr.Field)
	}
}

func TestBuild_InvalidStartingPriceMessages(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{250, "lowest tranche stays above zero"},
		{-10, "must be positive"},
		{math.NaN(), "not a finite number"},
		{1e30, "above the maximum"},
	}
	for _, tt := range tests {
		_, err := Build(tt.price, strategy.RulesA)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want, "p=%v", tt.price)
	}
}

func TestBuild_LargestAcceptedPrice(t *testing.T) {
	plan, err := Build(calculator.MaxBound, strategy.RulesB)
	require.NoError(t, err)
	assert.Len(t, plan.Rows, 63)
}

func TestRound_HalfToEven(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   float64
	}{
		{0.125, 2, 0.12},
		{0.135, 2, 0.14},
		{2.5, 0, 2},
		{-0.125, 2, -0.12},
		{0.0568181818, 4, 0.0568},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, round(tt.v, tt.places), "round(%v, %d)", tt.v, tt.places)
	}
}

func TestBuild_InvalidStep(t *testing.T) {
	rules := strategy.RulesA
	rules.Step = 0

	_, err := Build(2700, rules)
	assert.ErrorIs(t, err, calculator.ErrInvalidStep)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "step", cfgErr.Field)
}

func TestBuild_RoundsForPresentation(t *testing.T) {
	plan, err := Build(2700, strategy.RulesB)
	require.NoError(t, err)
	// 2.5/44 = 0.0568181818...
	assert.Equal(t, 0.0568, plan.Rows[0].Lots)

	planA, err := Build(2700, strategy.RulesA)
	require.NoError(t, err)
	assert.Equal(t, 0.056818, planA.Rows[0].Lots)
	// 0.0568 * 1.3542 = 0.07691856
	assert.Equal(t, 0.076919, planA.Rows[21].Lots)
}

func TestBuild_IndependentRuns(t *testing.T) {
	a, err := Build(2700, strategy.RulesB)
	require.NoError(t, err)
	b, err := Build(2700, strategy.RulesB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
