package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TranchePlanner/internal/notifier"
	"TranchePlanner/internal/planner"
	"TranchePlanner/internal/recorder"
	"TranchePlanner/internal/strategy"
)

var (
	planPrice   float64
	planVariant string
	planRecord  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the tranche plan for a starting price",
	Long: `Computes the three-tranche plan and prints the allocation table,
the per-tranche breakdown and the closing break-even, floating P&L and lots.

Flags fall back to plan.starting_price and plan.variant from the config.

Example:
  planner plan --price 2700 --variant B`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().Float64VarP(&planPrice, "price", "p", 0, "starting price")
	planCmd.Flags().StringVar(&planVariant, "variant", "", "rule variant (A|B)")
	planCmd.Flags().BoolVar(&planRecord, "record", false, "store the plan in the SQLite journal")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("price") {
		cfg.Plan.StartingPrice = planPrice
	}
	if planVariant != "" {
		cfg.Plan.Variant = planVariant
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	rules, err := cfg.RuleSet()
	if err != nil {
		return err
	}
	plan, err := planner.Build(cfg.Plan.StartingPrice, rules)
	if err != nil {
		return err
	}
	log.Debug().
		Float64("starting_price", plan.StartingPrice).
		Str("variant", plan.Variant).
		Int("rows", len(plan.Rows)).
		Msg("plan built")

	out := cmd.OutOrStdout()
	fmt.Fprint(out, notifier.FormatPlan(plan))
	fmt.Fprintln(out)
	fmt.Fprint(out, notifier.FormatTrancheBreakdown(plan))
	fmt.Fprintln(out)
	fmt.Fprint(out, notifier.FormatSummary(plan))

	if planRecord {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer rec.Close()
		id, err := rec.RecordPlan(&recorder.PlanRun{Source: recorder.SourceCLI, Plan: plan})
		if err != nil {
			return fmt.Errorf("record plan: %w", err)
		}
		log.Info().Int64("run_id", id).Msg("plan recorded")
	}
	return nil
}

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the tranche rule variants and their constants",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprint(cmd.OutOrStdout(), notifier.FormatVariants(strategy.RulesA, strategy.RulesB))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}
