package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TacticalSentinel/internal/collector"
	"TacticalSentinel/internal/metrics"
	"TacticalSentinel/internal/model"
	"TacticalSentinel/internal/notifier"
	"TacticalSentinel/internal/recorder"
	"TacticalSentinel/internal/strategy"
)

// Result is the outcome of one run: either a report or an error, never both.
type Result struct {
	RunID      string
	Allocation *model.Allocation
	Report     string
	Err        error
}

// Scheduler manages the daily allocation task.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Params    model.Params
	Notifier  notifier.Sender
	Recorder  recorder.Recorder
	Metrics   *metrics.Registry
	Latest    *metrics.Latest
	Retries   int
}

// NewScheduler creates a new Scheduler. Notifier, metrics and latest may be nil.
func NewScheduler(col *collector.Collector, params model.Params, sender notifier.Sender, rec recorder.Recorder, reg *metrics.Registry, latest *metrics.Latest) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Params:    params.Clone(),
		Notifier:  sender,
		Recorder:  rec,
		Metrics:   reg,
		Latest:    latest,
		Retries:   3,
	}
}

// RegisterDaily schedules the allocation run on spec (six-field cron, seconds first).
func (s *Scheduler) RegisterDaily(ctx context.Context, spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() {
		s.Run(ctx, model.TriggerScheduled)
	}); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// Compute fetches the window and evaluates it without any side effects.
func (s *Scheduler) Compute(ctx context.Context) (*model.Allocation, error) {
	panel, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	alloc, err := strategy.Evaluate(panel, s.Params)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return alloc, nil
}

// Run executes one full cycle: compute, notify, record and publish metrics.
func (s *Scheduler) Run(ctx context.Context, trigger model.TriggerType) Result {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Str("trigger", string(trigger)).Logger()
	logger.Info().Msg("running allocation task")

	alloc, err := s.Compute(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("allocation run failed")
		s.trySend(ctx, notifier.FormatError(err))
		if recErr := s.Recorder.RecordFailure(ctx, runID, trigger, err); recErr != nil {
			logger.Error().Err(recErr).Msg("record failure")
		}
		if s.Metrics != nil {
			s.Metrics.ObserveFailure()
		}
		return Result{RunID: runID, Err: err}
	}

	report := notifier.FormatDailyReport(alloc)
	s.trySend(ctx, report)

	if err := s.Recorder.RecordAllocation(ctx, &recorder.RunRecord{RunID: runID, Trigger: trigger, Allocation: alloc}); err != nil {
		logger.Error().Err(err).Msg("record allocation")
	}
	if s.Metrics != nil {
		s.Metrics.ObserveAllocation(alloc)
	}
	if s.Latest != nil {
		s.Latest.Set(runID, alloc)
	}

	logger.Info().
		Time("as_of", alloc.AsOf).
		Str("bond", alloc.Regime.BondSymbol).
		Float64("cash_weight", alloc.CashWeight).
		Float64("total", alloc.Total).
		Msg("allocation computed")
	return Result{RunID: runID, Allocation: alloc, Report: report}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch strings.ToLower(fields[0]) {
	case "/report", "/weights":
		// Run sends the report (or the failure) itself.
		s.Run(ctx, model.TriggerCommand)
		return ""
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, s.Retries); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
