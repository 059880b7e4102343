package strategy

import (
	"errors"
	"fmt"
	"strings"

	"TranchePlanner/internal/calculator"
	"TranchePlanner/internal/model"
)

// ErrUnknownVariant is returned by ParseVariant for names other than A or B.
var ErrUnknownVariant = errors.New("unknown rule variant")

// Variant names a tranche rule set.
type Variant string

const (
	VariantA Variant = "A" // targeted scaling for tranche 1, fixed regional lots for 2 and 3
	VariantB Variant = "B" // targeted scaling for all tranches, override on tranche 2
)

// ParseVariant maps a user-supplied name to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return VariantA, nil
	case "B":
		return VariantB, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// TrancheRule configures one tranche relative to the starting price p.
// The band runs from p-UpperOffset down to p-LowerOffset.
type TrancheRule struct {
	Tag         model.TrancheTag
	UpperOffset float64
	LowerOffset float64
	Weighting   model.WeightingMode

	// WeightScaled
	TargetOffset float64
	DesiredLots  float64
	Override     *model.LotOverride

	// WeightRegional
	CutoffOffset float64
	AboveLots    float64
	AtLots       float64
	BelowLots    float64
	RegionScale  float64
}

// RuleSet is one complete tranche policy.
type RuleSet struct {
	Variant Variant
	Name    string
	Step    int
	Rules   [3]TrancheRule

	// Decimal places for lots and cumulative lots in the presented table.
	LotDecimals int32
}

// RulesA is the targeted-scaling rule set.
var RulesA = RuleSet{
	Variant:     VariantA,
	Name:        "targeted scaling",
	Step:        5,
	LotDecimals: 6,
	Rules: [3]TrancheRule{
		{
			Tag:          model.Tranche1,
			UpperOffset:  0,
			LowerOffset:  100,
			Weighting:    model.WeightScaled,
			TargetOffset: 70,
			DesiredLots:  2 * 1.25,
		},
		{
			Tag:          model.Tranche2,
			UpperOffset:  100,
			LowerOffset:  200,
			Weighting:    model.WeightRegional,
			CutoffOffset: 175,
			AboveLots:    0.0568,
			AtLots:       0,
			BelowLots:    0.568,
			RegionScale:  1.3542,
		},
		{
			Tag:          model.Tranche3,
			UpperOffset:  200,
			LowerOffset:  300,
			Weighting:    model.WeightRegional,
			CutoffOffset: 280,
			AboveLots:    0.0568,
			AtLots:       0,
			BelowLots:    0.852,
			RegionScale:  1.7373,
		},
	},
}

// RulesB is the generalized rule set.
var RulesB = RuleSet{
	Variant:     VariantB,
	Name:        "generalized scaling",
	Step:        5,
	LotDecimals: 4,
	Rules: [3]TrancheRule{
		{
			Tag:          model.Tranche1,
			UpperOffset:  0,
			LowerOffset:  100,
			Weighting:    model.WeightScaled,
			TargetOffset: 70,
			DesiredLots:  2.5,
		},
		{
			Tag:          model.Tranche2,
			UpperOffset:  100,
			LowerOffset:  200,
			Weighting:    model.WeightScaled,
			TargetOffset: 175,
			DesiredLots:  5.0,
			// Cutoff is an absolute price, not an offset from p.
			Override: &model.LotOverride{
				Cutoff:          2560,
				AboveFactor:     0.93,
				AtOrBelowFactor: 1.03,
			},
		},
		{
			Tag:          model.Tranche3,
			UpperOffset:  200,
			LowerOffset:  300,
			Weighting:    model.WeightScaled,
			TargetOffset: 280,
			DesiredLots:  7.5,
		},
	},
}

// ForVariant returns the rule set for v.
func ForVariant(v Variant) (RuleSet, error) {
	switch v {
	case VariantA:
		return RulesA, nil
	case VariantB:
		return RulesB, nil
	default:
		return RuleSet{}, fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
}

// Span returns how far below the starting price the plan reaches.
func (rs RuleSet) Span() float64 {
	span := 0.0
	for _, r := range rs.Rules {
		if r.LowerOffset > span {
			span = r.LowerOffset
		}
	}
	return span
}

// Tranches builds the tranche specs for starting price p.
func (rs RuleSet) Tranches(p float64) []model.TrancheSpec {
	specs := make([]model.TrancheSpec, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		spec := model.TrancheSpec{
			Tag:       r.Tag,
			Start:     p - r.UpperOffset,
			End:       p - r.LowerOffset,
			Step:      rs.Step,
			Weighting: r.Weighting,
		}
		switch r.Weighting {
		case model.WeightScaled:
			spec.TargetPrice = p - r.TargetOffset
			spec.DesiredLots = r.DesiredLots
			if r.Override != nil {
				o := *r.Override
				spec.Override = &o
			}
		case model.WeightRegional:
			spec.Regions = &model.RegionLots{
				Cutoff: p - r.CutoffOffset,
				Above:  r.AboveLots,
				At:     r.AtLots,
				Below:  r.BelowLots,
				Scale:  r.RegionScale,
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

// Allocate turns a tranche spec into per-level lots and partial costs.
func Allocate(spec model.TrancheSpec) (calculator.Allocation, error) {
	levels, err := calculator.PriceLevels(spec.Start, spec.End, spec.Step)
	if err != nil {
		return calculator.Allocation{}, fmt.Errorf("%s levels: %w", spec.Tag, err)
	}

	switch spec.Weighting {
	case model.WeightScaled:
		weights := calculator.BaseWeights(levels, spec.TargetPrice)
		alloc := calculator.ScaleToLots(levels, weights, spec.DesiredLots)
		if spec.Override != nil {
			alloc = calculator.Override(alloc, *spec.Override)
		}
		return alloc, nil
	case model.WeightRegional:
		if spec.Regions == nil {
			return calculator.Allocation{}, fmt.Errorf("%s: regional weighting without regions", spec.Tag)
		}
		return calculator.NewAllocation(levels, calculator.RegionalLots(levels, *spec.Regions)), nil
	default:
		return calculator.Allocation{}, fmt.Errorf("%s: unsupported weighting %q", spec.Tag, spec.Weighting)
	}
}
