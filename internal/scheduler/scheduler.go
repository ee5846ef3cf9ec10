package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"tutor-mail-dispatch-go/internal/config"
	"tutor-mail-dispatch-go/internal/mailer"
	"tutor-mail-dispatch-go/internal/metrics"
	"tutor-mail-dispatch-go/internal/model"
)

// QueueStore is the durable queue the dispatcher drains. ClaimPending must be
// atomic: a row it returns is no longer visible to any other claim.
type QueueStore interface {
	ClaimPending(ctx context.Context, limit int) ([]model.QueuedEmail, error)
	MarkSent(ctx context.Context, id uint, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uint, errMsg string) error
	Stats(ctx context.Context) (model.QueueStats, error)
}

// Scheduler runs the email dispatch cycle on a fixed interval
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.DispatcherConfig
	store     QueueStore
	sender    mailer.MailSender
	metrics   *metrics.Metrics
	limiter   *rate.Limiter
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	cycleMu   sync.Mutex
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.DispatcherConfig, store QueueStore, sender mailer.MailSender, m *metrics.Metrics) *Scheduler {
	var limiter *rate.Limiter
	if cfg.SendsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SendsPerSecond), cfg.SendsPerSecond)
	}

	return &Scheduler{
		config:  cfg,
		store:   store,
		sender:  sender,
		metrics: m,
		limiter: limiter,
	}
}

// Start starts the scheduler. One cycle runs immediately, then cycles repeat
// every configured interval.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(cron.WithSeconds())

	schedule := fmt.Sprintf("@every %ds", s.config.IntervalSeconds)

	entryID, err := s.cron.AddFunc(schedule, s.processQueue)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	go s.processQueue()

	logrus.Infof("Dispatcher started with interval: %ds, batch size: %d",
		s.config.IntervalSeconds, s.config.BatchSize)
	return nil
}

// Stop stops the scheduler. The in-flight cycle is given time to finish
// before the context is cancelled.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-stopCtx.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("Dispatcher stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Dispatcher stop timeout, forcing shutdown")
	}

	s.cancel()
	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunOnce runs one dispatch cycle immediately (for manual triggering)
func (s *Scheduler) RunOnce() error {
	logrus.Info("Running dispatch cycle once")
	s.processQueue()
	return nil
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Next
}

// GetLastRun returns the time of the last run
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Prev
}

// Wait waits for in-flight cycles to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
