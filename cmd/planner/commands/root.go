package commands

import (
	"os"

	"github.com/spf13/cobra"

	"TranchePlanner/internal/config"
	"TranchePlanner/internal/logger"
)

var (
	// Global flags
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Tiered DCA tranche planner",
	Long: `Tiered dollar-cost-averaging planner.

Splits the 300 points below a starting price into three tranches, allocates
lots per 5-point level and tracks the running break-even and floating P&L.

Examples:
  planner plan --price 2700
  planner plan --price 2700 --variant A --record
  planner variants
  planner bot`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default configs/config.yaml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug|info|warn|error)")
}

// loadConfig resolves the config path, loads it and sets up logging.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
