package planner

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"TranchePlanner/internal/calculator"
	"TranchePlanner/internal/model"
	"TranchePlanner/internal/strategy"
)

var (
	ErrInvalidStartingPrice = errors.New("invalid starting price")
	ErrEmptyBand            = errors.New("tranche band has no price levels")
)

// ConfigError reports a plan that cannot be built from its inputs.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("plan config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Presentation precision, in decimal places.
const (
	PriceDecimals     = 2
	BreakEvenDecimals = 4
	PnLDecimals       = 2
)

// Step is the unrounded result of one tranche: what it was carried in, what
// it allocated, and the totals it hands to the next tranche.
type Step struct {
	Spec       model.TrancheSpec
	Allocation calculator.Allocation
	CarriedIn  model.RunAccumulator
	CarriedOut model.RunAccumulator
	Rows       []model.AllocationRow
}

// Steps runs the tranches of rules in order for startingPrice, each one
// starting from the totals the previous one closed with.
func Steps(startingPrice float64, rules strategy.RuleSet) ([]Step, error) {
	switch span := rules.Span(); {
	case math.IsNaN(startingPrice) || math.IsInf(startingPrice, 0):
		return nil, &ConfigError{
			Field: "starting_price",
			Err:   fmt.Errorf("%w: %v is not a finite number", ErrInvalidStartingPrice, startingPrice),
		}
	case startingPrice > calculator.MaxBound:
		return nil, &ConfigError{
			Field: "starting_price",
			Err:   fmt.Errorf("%w: %.2f is above the maximum of %d", ErrInvalidStartingPrice, startingPrice, calculator.MaxBound),
		}
	case startingPrice <= 0:
		return nil, &ConfigError{
			Field: "starting_price",
			Err:   fmt.Errorf("%w: %.2f must be positive", ErrInvalidStartingPrice, startingPrice),
		}
	case startingPrice-span <= 0:
		return nil, &ConfigError{
			Field: "starting_price",
			Err: fmt.Errorf("%w: %.2f must exceed the plan span of %.0f so the lowest tranche stays above zero",
				ErrInvalidStartingPrice, startingPrice, span),
		}
	}

	var (
		steps []Step
		acc   model.RunAccumulator
	)
	for _, spec := range rules.Tranches(startingPrice) {
		alloc, err := strategy.Allocate(spec)
		if err != nil {
			switch {
			case errors.Is(err, calculator.ErrInvalidStep):
				return nil, &ConfigError{Field: "step", Err: err}
			case errors.Is(err, calculator.ErrBoundOutOfRange):
				return nil, &ConfigError{Field: "starting_price", Err: err}
			}
			return nil, err
		}
		if alloc.Len() == 0 {
			return nil, &ConfigError{
				Field: string(spec.Tag),
				Err:   fmt.Errorf("%w: %.2f to %.2f", ErrEmptyBand, spec.Start, spec.End),
			}
		}

		rows, out := calculator.Aggregate(spec.Tag, alloc, acc)
		steps = append(steps, Step{
			Spec:       spec,
			Allocation: alloc,
			CarriedIn:  acc,
			CarriedOut: out,
			Rows:       rows,
		})
		acc = out
	}
	return steps, nil
}

// Build computes the presented plan for startingPrice under rules.
func Build(startingPrice float64, rules strategy.RuleSet) (*model.Plan, error) {
	steps, err := Steps(startingPrice, rules)
	if err != nil {
		return nil, err
	}

	var (
		rows     []model.AllocationRow
		tranches []model.TrancheSummary
	)
	for _, st := range steps {
		for _, r := range st.Rows {
			rows = append(rows, roundRow(r, rules.LotDecimals))
		}
		tranches = append(tranches, summarizeTranche(st, rules.LotDecimals))
	}
	last := rows[len(rows)-1]

	return &model.Plan{
		StartingPrice: startingPrice,
		Variant:       string(rules.Variant),
		LotDecimals:   rules.LotDecimals,
		Rows:          rows,
		Tranches:      tranches,
		Summary: model.Summary{
			BreakEven:      last.BreakEven,
			FloatingPnL:    last.FloatingPnL,
			CumulativeLots: last.CumulativeLots,
		},
	}, nil
}

func summarizeTranche(st Step, lotDecimals int32) model.TrancheSummary {
	closing := st.Rows[len(st.Rows)-1]
	return model.TrancheSummary{
		Tag:                st.Spec.Tag,
		Levels:             st.Allocation.Len(),
		Lots:               round(st.Allocation.TotalLots(), lotDecimals),
		ClosingBreakEven:   round(closing.BreakEven, BreakEvenDecimals),
		ClosingFloatingPnL: round(closing.FloatingPnL, PnLDecimals),
	}
}

// roundRow returns a copy of r rounded for presentation. CumulativeCost is
// left exact.
func roundRow(r model.AllocationRow, lotDecimals int32) model.AllocationRow {
	r.Price = model.PriceLevel(round(float64(r.Price), PriceDecimals))
	r.Lots = round(r.Lots, lotDecimals)
	r.CumulativeLots = round(r.CumulativeLots, lotDecimals)
	r.BreakEven = round(r.BreakEven, BreakEvenDecimals)
	r.FloatingPnL = round(r.FloatingPnL, PnLDecimals)
	return r
}

// round uses banker's rounding on the shortest decimal form of v, so ties go
// to the even digit.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}
