package model

// LotSize is the number of underlying units in one lot.
const LotSize = 100

// PriceLevel is a single quoted price at which a purchase decision is made.
type PriceLevel float64

// TrancheTag identifies which tranche produced a row.
type TrancheTag string

const (
	Tranche1 TrancheTag = "Tranche 1"
	Tranche2 TrancheTag = "Tranche 2"
	Tranche3 TrancheTag = "Tranche 3"
)

// Short returns the compact label used in narrow tables.
func (t TrancheTag) Short() string {
	switch t {
	case Tranche1:
		return "T1"
	case Tranche2:
		return "T2"
	case Tranche3:
		return "T3"
	default:
		return string(t)
	}
}

// RunAccumulator is the running cost and quantity carried between tranches.
type RunAccumulator struct {
	Cost float64
	Lots float64
}

// BreakEven returns the weighted-average entry price, or 0 with no lots held.
func (a RunAccumulator) BreakEven() float64 {
	if a.Lots == 0 {
		return 0
	}
	return a.Cost / (a.Lots * LotSize)
}

// AllocationRow is one row of the plan table.
type AllocationRow struct {
	Tranche        TrancheTag
	Price          PriceLevel
	Lots           float64
	CumulativeLots float64
	CumulativeCost float64
	BreakEven      float64
	FloatingPnL    float64
}

// Summary holds the closing scalars of a plan.
type Summary struct {
	BreakEven      float64
	FloatingPnL    float64
	CumulativeLots float64
}

// TrancheSummary is the per-tranche subtotal shown under the table.
type TrancheSummary struct {
	Tag                TrancheTag
	Levels             int
	Lots               float64
	ClosingBreakEven   float64
	ClosingFloatingPnL float64
}

// Plan is the full output of one run.
type Plan struct {
	StartingPrice float64
	Variant       string
	LotDecimals   int32
	Rows          []AllocationRow
	Tranches      []TrancheSummary
	Summary       Summary
}
