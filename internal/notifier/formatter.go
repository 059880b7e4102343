package notifier

import (
	"fmt"
	"html"
	"strings"

	"TranchePlanner/internal/calculator"
	"TranchePlanner/internal/model"
	"TranchePlanner/internal/strategy"
)

// FormatPlan renders the allocation table as fixed-width text.
func FormatPlan(plan *model.Plan) string {
	var b strings.Builder
	d := int(plan.LotDecimals)

	b.WriteString(fmt.Sprintf("%-10s %10s %12s %14s %12s %14s\n",
		"Tranche", "Price", "Lots", "Cum. lots", "Break-even", "Floating P&L"))
	b.WriteString(strings.Repeat("─", 77) + "\n")
	for _, r := range plan.Rows {
		b.WriteString(fmt.Sprintf("%-10s %10.2f %12.*f %14.*f %12.4f %14.2f\n",
			r.Tranche, float64(r.Price), d, r.Lots, d, r.CumulativeLots, r.BreakEven, r.FloatingPnL))
	}
	return b.String()
}

// formatCompactPlan renders the table narrow enough to fit a chat message.
func formatCompactPlan(plan *model.Plan) string {
	var b strings.Builder
	d := int(plan.LotDecimals)
	b.WriteString(fmt.Sprintf("%-2s %8s %9s %10s %11s\n", "", "Price", "Lots", "BE", "P&L"))
	for _, r := range plan.Rows {
		b.WriteString(fmt.Sprintf("%-2s %8.2f %9.*f %10.4f %11.2f\n",
			r.Tranche.Short(), float64(r.Price), d, r.Lots, r.BreakEven, r.FloatingPnL))
	}
	return b.String()
}

// FormatTrancheBreakdown renders one subtotal line per tranche.
func FormatTrancheBreakdown(plan *model.Plan) string {
	var b strings.Builder
	d := int(plan.LotDecimals)
	for _, t := range plan.Tranches {
		b.WriteString(fmt.Sprintf("%s: %d levels, %.*f lots, break-even %.4f, floating %.2f\n",
			t.Tag, t.Levels, d, t.Lots, t.ClosingBreakEven, t.ClosingFloatingPnL))
	}
	return b.String()
}

// FormatSummary renders the closing scalars of a plan.
func FormatSummary(plan *model.Plan) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Starting price: %.2f (variant %s)\n", plan.StartingPrice, plan.Variant))
	b.WriteString(fmt.Sprintf("Final break-even: %.4f\n", plan.Summary.BreakEven))
	b.WriteString(fmt.Sprintf("Total floating P&L: %.2f\n", plan.Summary.FloatingPnL))
	b.WriteString(fmt.Sprintf("Total lots: %.*f\n", int(plan.LotDecimals), plan.Summary.CumulativeLots))
	return b.String()
}

// FormatPlanMessage formats a plan as a Telegram HTML message, which is
// limited to 4096 characters.
func FormatPlanMessage(plan *model.Plan) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Tranche plan</b> | p=%.2f | variant %s\n\n",
		plan.StartingPrice, html.EscapeString(plan.Variant)))
	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(formatCompactPlan(plan)))
	b.WriteString("</pre>\n")
	b.WriteString(html.EscapeString(FormatTrancheBreakdown(plan)))
	b.WriteString("\n")
	b.WriteString(html.EscapeString(FormatSummary(plan)))
	return b.String()
}

// FormatVariants describes each rule set and its constants.
func FormatVariants(sets ...strategy.RuleSet) string {
	var b strings.Builder
	for i, rs := range sets {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("Variant %s (%s), step %d, lots to %d places\n",
			rs.Variant, rs.Name, rs.Step, rs.LotDecimals))
		for _, r := range rs.Rules {
			b.WriteString(fmt.Sprintf("  %s: p-%.0f to p-%.0f, ", r.Tag, r.UpperOffset, r.LowerOffset))
			switch r.Weighting {
			case model.WeightScaled:
				b.WriteString(fmt.Sprintf("weights %g/%g/%g around p-%.0f scaled to %g lots",
					calculator.WeightAboveTarget, calculator.WeightAtTarget, calculator.WeightBelowTarget, r.TargetOffset, r.DesiredLots))
				if r.Override != nil {
					b.WriteString(fmt.Sprintf(", x%g above %.0f, x%g at or below",
						r.Override.AboveFactor, r.Override.Cutoff, r.Override.AtOrBelowFactor))
				}
			case model.WeightRegional:
				b.WriteString(fmt.Sprintf("lots %g/%g/%g around p-%.0f, x%g",
					r.AboveLots, r.AtLots, r.BelowLots, r.CutoffOffset, r.RegionScale))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
