package scheduler

import (
	"context"
	"fmt"
	"time"

	"container_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 30 * time.Minute

// BroadcastRunner is the set of timer-driven broadcasts, implemented by app.ScheduledBroadcaster.
type BroadcastRunner interface {
	RunDailyChatBroadcast(ctx context.Context) (app.FanoutReport, error)
	RunDailyChannelBroadcast(ctx context.Context) (app.FanoutReport, error)
	RunWeeklyBroadcast(ctx context.Context) (app.FanoutReport, error)
}

type BroadcastScheduler struct {
	cronEngine     *cron.Cron
	runner         BroadcastRunner
	logger         *logrus.Entry
	cronSpecDaily  string
	cronSpecWeekly string
}

func NewBroadcastScheduler(
	runner BroadcastRunner,
	logger *logrus.Entry,
	cronSpecDaily string, // e.g., "0 6 * * *" (6:00 AM daily)
	cronSpecWeekly string, // e.g., "0 10 * * 1" (10:00 AM on Mondays)
) *BroadcastScheduler {
	return &BroadcastScheduler{
		cronEngine:     cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		runner:         runner,
		logger:         logger.WithField("component", "scheduler"),
		cronSpecDaily:  cronSpecDaily,
		cronSpecWeekly: cronSpecWeekly,
	}
}

// Start registers the jobs and starts the cron engine. A bad cron spec is returned as an error.
func (s *BroadcastScheduler) Start() error {
	s.logger.Info("Starting broadcast scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecDaily, s.runJob("daily", s.runDaily)); err != nil {
		return fmt.Errorf("could not add daily broadcast cron job %q: %w", s.cronSpecDaily, err)
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecWeekly, s.runJob("weekly", s.runWeekly)); err != nil {
		return fmt.Errorf("could not add weekly broadcast cron job %q: %w", s.cronSpecWeekly, err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{"daily": s.cronSpecDaily, "weekly": s.cronSpecWeekly}).Info("Broadcast scheduler started with jobs.")
	return nil
}

func (s *BroadcastScheduler) runJob(name string, job func(ctx context.Context)) func() {
	return func() {
		logCtx := s.logger.WithField("job", name)
		defer func() {
			if p := recover(); p != nil {
				logCtx.WithField("panic", p).Error("Recovered from panic in cron job")
			}
		}()
		logCtx.Info("Cron job triggered")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		job(ctx)
	}
}

// runDaily posts to the group chat, then to the channel. A failure of the first does not skip the second.
func (s *BroadcastScheduler) runDaily(ctx context.Context) {
	if _, err := s.runner.RunDailyChatBroadcast(ctx); err != nil {
		s.logger.WithError(err).Error("Daily chat broadcast failed")
	}
	if _, err := s.runner.RunDailyChannelBroadcast(ctx); err != nil {
		s.logger.WithError(err).Error("Daily channel broadcast failed")
	}
}

func (s *BroadcastScheduler) runWeekly(ctx context.Context) {
	if _, err := s.runner.RunWeeklyBroadcast(ctx); err != nil {
		s.logger.WithError(err).Error("Weekly broadcast failed")
	}
}

func (s *BroadcastScheduler) Stop() {
	s.logger.Info("Stopping broadcast scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Broadcast scheduler gracefully stopped.")
}
