package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TranchePlanner/internal/notifier"
	"TranchePlanner/internal/recorder"
	"TranchePlanner/internal/scheduler"
)

var botRunOnStart bool

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve plans over Telegram",
	Long: `Answers /plan, /variants and /history in the configured Telegram chat
and, when schedule.broadcast_cron is set, sends the standing plan on schedule.
Stops on SIGINT or SIGTERM.`,
	RunE: runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.Flags().BoolVar(&botRunOnStart, "run-on-start", false, "send the standing plan once at startup")
}

func runBot(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	rules, err := cfg.RuleSet()
	if err != nil {
		return err
	}

	log.Info().Msg("tranche planner bot starting")

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, tn, rec, scheduler.Standing{
		StartingPrice: cfg.Plan.StartingPrice,
		Rules:         rules,
	})
	if err := sched.RegisterBroadcast(cfg.Schedule.BroadcastCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if botRunOnStart || os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("sending standing plan at startup")
		go sched.RunBroadcastNow()
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
