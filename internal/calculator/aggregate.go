package calculator

import "TranchePlanner/internal/model"

// Aggregate folds a tranche allocation into cumulative rows, starting from the
// totals carried in from earlier tranches. It returns the rows and the totals
// to carry into the next tranche.
func Aggregate(tag model.TrancheTag, a Allocation, carried model.RunAccumulator) ([]model.AllocationRow, model.RunAccumulator) {
	rows := make([]model.AllocationRow, 0, a.Len())
	var runLots, runCost float64
	acc := carried
	for i, price := range a.Levels {
		runLots += a.Lots[i]
		runCost += a.Costs[i]
		acc = model.RunAccumulator{
			Cost: carried.Cost + runCost,
			Lots: carried.Lots + runLots,
		}
		be := acc.BreakEven()
		rows = append(rows, model.AllocationRow{
			Tranche:        tag,
			Price:          price,
			Lots:           a.Lots[i],
			CumulativeLots: acc.Lots,
			CumulativeCost: acc.Cost,
			BreakEven:      be,
			FloatingPnL:    FloatingPnL(price, be, acc.Lots),
		})
	}
	return rows, acc
}

// FloatingPnL returns the unrealized gain or loss of lots held at breakEven
// when marked at price.
func FloatingPnL(price model.PriceLevel, breakEven, lots float64) float64 {
	return (float64(price) - breakEven) * (lots * model.LotSize)
}
