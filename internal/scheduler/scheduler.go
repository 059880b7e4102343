package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TranchePlanner/internal/model"
	"TranchePlanner/internal/notifier"
	"TranchePlanner/internal/planner"
	"TranchePlanner/internal/recorder"
	"TranchePlanner/internal/strategy"
)

// Sender delivers a formatted message to the chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Standing is the plan the scheduled broadcast sends.
type Standing struct {
	StartingPrice float64
	Rules         strategy.RuleSet
}

// Scheduler runs the standing-plan broadcast and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Notifier Sender
	Recorder recorder.Recorder
	Standing Standing
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sender Sender, rec recorder.Recorder, standing Standing) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Notifier: sender,
		Recorder: rec,
		Standing: standing,
		Ctx:      ctx,
	}
}

// RegisterBroadcast schedules the standing plan. An empty spec registers nothing.
func (s *Scheduler) RegisterBroadcast(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(spec, s.broadcastTask); err != nil {
		return fmt.Errorf("register broadcast task: %w", err)
	}
	log.Info().Str("cron", spec).Msg("standing plan broadcast registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunBroadcastNow sends the standing plan immediately.
func (s *Scheduler) RunBroadcastNow() {
	s.broadcastTask()
}

func (s *Scheduler) broadcastTask() {
	log.Info().
		Float64("starting_price", s.Standing.StartingPrice).
		Str("variant", string(s.Standing.Rules.Variant)).
		Msg("running standing plan broadcast")

	plan, err := planner.Build(s.Standing.StartingPrice, s.Standing.Rules)
	if err != nil {
		log.Error().Err(err).Msg("build standing plan")
		s.trySend(fmt.Sprintf("❌ standing plan failed: %v", err))
		return
	}
	s.trySend(notifier.FormatPlanMessage(plan))
	s.record(recorder.SourceBroadcast, plan)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/plan":
		plan, err := s.planFromArgs(fields[1:])
		if err != nil {
			return fmt.Sprintf("❌ %v\n\n%s", err, helpText)
		}
		s.record(recorder.SourceCommand, plan)
		return notifier.FormatPlanMessage(plan)
	case "/variants":
		return "<pre>" + notifier.FormatVariants(strategy.RulesA, strategy.RulesB) + "</pre>"
	case "/history":
		return s.history()
	default:
		return helpText
	}
}

const helpText = "Commands:\n" +
	"• /plan [price] [A|B] — tranche plan (defaults to the standing plan)\n" +
	"• /variants — rule set constants\n" +
	"• /history — recent plans"

func (s *Scheduler) planFromArgs(args []string) (*model.Plan, error) {
	price := s.Standing.StartingPrice
	rules := s.Standing.Rules
	if len(args) > 0 {
		p, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q", args[0])
		}
		price = p
	}
	if len(args) > 1 {
		v, err := strategy.ParseVariant(args[1])
		if err != nil {
			return nil, err
		}
		if rules, err = strategy.ForVariant(v); err != nil {
			return nil, err
		}
	}
	return planner.Build(price, rules)
}

func (s *Scheduler) history() string {
	runs, err := s.Recorder.RecentRuns(5)
	if err != nil {
		log.Error().Err(err).Msg("read plan history")
		return "❌ history unavailable"
	}
	if len(runs) == 0 {
		return "No plans recorded yet."
	}
	var b strings.Builder
	b.WriteString("<b>Recent plans</b>\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("#%d %s p=%.2f %s: break-even %.4f, lots %g, floating %.2f\n",
			r.ID, r.Source, r.StartingPrice, r.Variant, r.BreakEven, r.CumulativeLots, r.FloatingPnL))
	}
	return b.String()
}

func (s *Scheduler) record(source string, plan *model.Plan) {
	if _, err := s.Recorder.RecordPlan(&recorder.PlanRun{Source: source, Plan: plan}); err != nil {
		log.Error().Err(err).Str("source", source).Msg("record plan")
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
