package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"parcellocker/internal/core/application/usecases/commands"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"

	"github.com/robfig/cron/v3"
)

// leaseGrace keeps the lease alive a little past the sweep budget, so a run
// that is just finishing is not overlapped by the next one.
const leaseGrace = 30 * time.Second

type (
	overdueExpirer interface {
		Handle(ctx context.Context, command commands.ExpireOverdueParcelsCommand) (commands.SweepReport, error)
	}

	reminderSender interface {
		Handle(ctx context.Context, command commands.SendRemindersCommand) (commands.SweepReport, error)
	}
)

// SchedulerConfig controls how often the sweep runs and how much it may do.
type SchedulerConfig struct {
	Interval  time.Duration
	Budget    time.Duration
	BatchSize int
}

func (c SchedulerConfig) Validate() error {
	var errList []error
	if c.Interval <= 0 {
		errList = append(errList, fmt.Errorf("sweep interval must be positive, got %s", c.Interval))
	}
	if c.Budget <= 0 {
		errList = append(errList, fmt.Errorf("sweep budget must be positive, got %s", c.Budget))
	}
	if c.BatchSize <= 0 {
		errList = append(errList, fmt.Errorf("sweep batch size must be positive, got %d", c.BatchSize))
	}
	return errors.Join(errList...)
}

// SweepResult is what one run did. Skipped means another run held the lease.
type SweepResult struct {
	Skipped   bool
	Expired   commands.SweepReport
	Reminders commands.SweepReport
}

// ReminderScheduler runs the background sweep on a fixed interval: overdue
// parcels are returned to sender first, then due reminders are sent. Runs never
// overlap, neither inside the process (cron SkipIfStillRunning) nor across
// replicas (the lease).
type ReminderScheduler struct {
	expire overdueExpirer
	remind reminderSender
	lease  ports.SweepLease
	config SchedulerConfig
	logger *slog.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

func NewReminderScheduler(
	expire overdueExpirer,
	remind reminderSender,
	lease ports.SweepLease,
	config SchedulerConfig,
	logger *slog.Logger,
) (*ReminderScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if expire == nil || remind == nil || lease == nil {
		return nil, errors.New("reminder scheduler requires both sweep handlers and a lease")
	}
	return &ReminderScheduler{
		expire: expire,
		remind: remind,
		lease:  lease,
		config: config,
		logger: logger.With("component", "reminder_scheduler"),
	}, nil
}

// Start schedules the sweep every Interval. The first run happens one interval
// after Start.
func (s *ReminderScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("reminder scheduler already started")
	}

	cronLogger := newCronLogger(s.logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.AddFunc("@every "+s.config.Interval.String(), func() {
		if _, runErr := s.RunOnce(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			s.logger.ErrorContext(ctx, "sweep failed", "error", runErr)
		}
	})
	if err != nil {
		cancel()
		return err
	}

	c.Start()
	s.cron = c
	s.cancel = cancel
	s.logger.Info("reminder scheduler started", "interval", s.config.Interval.String())
	return nil
}

// Stop cancels a running sweep and waits for it to return.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
}

// RunOnce performs one sweep synchronously under the lease and the time budget.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (SweepResult, error) {
	token, acquired, err := s.lease.Acquire(ctx, s.config.Budget+leaseGrace)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("failed").Inc()
		return SweepResult{}, fmt.Errorf("acquire sweep lease: %w", err)
	}
	if !acquired {
		metrics.SweepRunsTotal.WithLabelValues("skipped").Inc()
		s.logger.DebugContext(ctx, "sweep skipped, another run holds the lease")
		return SweepResult{Skipped: true}, nil
	}

	defer func() {
		if releaseErr := s.lease.Release(context.WithoutCancel(ctx), token); releaseErr != nil {
			s.logger.WarnContext(ctx, "failed to release sweep lease", "error", releaseErr)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.config.Budget)
	defer cancel()

	started := time.Now()
	result, err := s.sweep(runCtx)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("failed").Inc()
		return result, err
	}

	metrics.SweepRunsTotal.WithLabelValues("completed").Inc()
	metrics.SweepDuration.Observe(time.Since(started).Seconds())

	attrs := []any{
		"expired", result.Expired.Succeeded,
		"expire_failures", result.Expired.Failed,
		"reminded", result.Reminders.Succeeded,
		"reminder_failures", result.Reminders.Failed,
	}
	if result.Expired.Interrupted || result.Reminders.Interrupted {
		s.logger.WarnContext(ctx, "sweep ran out of budget", append(attrs, "budget", s.config.Budget.String())...)
	} else {
		s.logger.InfoContext(ctx, "sweep completed", attrs...)
	}
	return result, nil
}

func (s *ReminderScheduler) sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	expireCmd, err := commands.NewExpireOverdueParcelsCommand(s.config.BatchSize)
	if err != nil {
		return result, err
	}
	result.Expired, err = drain(ctx, s.config.BatchSize, func(ctx context.Context) (commands.SweepReport, error) {
		return s.expire.Handle(ctx, expireCmd)
	})
	if err != nil {
		return result, fmt.Errorf("expire overdue parcels: %w", err)
	}
	if result.Expired.Interrupted {
		return result, nil
	}

	remindCmd, err := commands.NewSendRemindersCommand(s.config.BatchSize)
	if err != nil {
		return result, err
	}
	result.Reminders, err = drain(ctx, s.config.BatchSize, func(ctx context.Context) (commands.SweepReport, error) {
		return s.remind.Handle(ctx, remindCmd)
	})
	if err != nil {
		return result, fmt.Errorf("send reminders: %w", err)
	}
	return result, nil
}

// drain repeats a batch while full batches keep committing claims. A batch whose
// sends all failed still counts as progress: those parcels are not found again.
func drain(
	ctx context.Context,
	batchSize int,
	batch func(ctx context.Context) (commands.SweepReport, error),
) (commands.SweepReport, error) {
	var total commands.SweepReport
	for {
		report, err := batch(ctx)
		if err != nil {
			return total, err
		}

		total.Found += report.Found
		total.Claimed += report.Claimed
		total.Succeeded += report.Succeeded
		total.Failed += report.Failed
		total.Skipped += report.Skipped
		total.Interrupted = report.Interrupted

		if report.Interrupted || report.Found < batchSize || report.Claimed == 0 {
			return total, nil
		}
		if ctx.Err() != nil {
			total.Interrupted = true
			return total, nil
		}
	}
}
