package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tutor-mail-dispatch-go/internal/model"
)

// processQueue is the cron entry point. A tick is skipped when the previous
// cycle is still running, so cycles never overlap and a slow batch cannot
// cause duplicate claims.
func (s *Scheduler) processQueue() {
	if !s.cycleMu.TryLock() {
		logrus.Warn("Previous dispatch cycle still running, skipping tick")
		s.metrics.CyclesSkipped.Inc()
		return
	}
	defer s.cycleMu.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	s.RunCycle(ctx)
}

// RunCycle executes one fetch-attempt-update sequence. Every row claimed at
// the start of the cycle leaves it as sent or failed; a failed batch claim
// aborts the cycle with no side effects and the next tick retries it.
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := time.Now()
	s.metrics.CycleCount.Inc()

	batch, err := s.store.ClaimPending(ctx, s.config.BatchSize)
	if err != nil {
		logrus.Errorf("Failed to claim pending emails: %v", err)
		s.metrics.FetchFailures.Inc()
		return
	}

	if len(batch) == 0 {
		logrus.Debug("No pending emails")
	} else {
		logrus.Infof("Claimed %d pending emails", len(batch))
		for _, email := range batch {
			s.dispatch(ctx, email)
		}
	}

	if stats, err := s.store.Stats(ctx); err == nil {
		s.metrics.QueueDepth.Set(float64(stats.Pending))
	}

	s.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	logrus.Debugf("Dispatch cycle completed in %v", time.Since(start))
}

// dispatch attempts delivery of a single claimed email and records the
// outcome. Errors never propagate past this method, so one bad row cannot
// block the rest of the batch.
func (s *Scheduler) dispatch(ctx context.Context, email model.QueuedEmail) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			logrus.Warnf("Rate limiter interrupted for email %d: %v", email.ID, err)
			s.markFailed(ctx, email, err.Error())
			return
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	err := s.sender.Send(sendCtx, email.ToEmail, email.Subject, email.Body)
	cancel()

	if err != nil {
		logrus.Errorf("Failed to send email %d to %s: %v", email.ID, email.ToEmail, err)
		s.markFailed(ctx, email, err.Error())
		return
	}

	sentAt := time.Now().UTC()
	if err := s.store.MarkSent(ctx, email.ID, sentAt); err != nil {
		// The mail went out but the row could not be updated. Leave it in
		// the claimed state rather than marking it failed: a claimed row is
		// never picked up again, so no duplicate send can happen, and
		// operators can tell this case apart from a real failure.
		logrus.Errorf("Email %d delivered but status update failed, row left in sending state: %v", email.ID, err)
		s.metrics.DeliveredUnrecorded.Inc()
		return
	}

	logrus.Infof("Email %d sent to %s", email.ID, email.ToEmail)
	s.metrics.EmailsSent.Inc()
}

func (s *Scheduler) markFailed(ctx context.Context, email model.QueuedEmail, errMsg string) {
	if err := s.store.MarkFailed(ctx, email.ID, errMsg); err != nil {
		logrus.Errorf("Failed to mark email %d as failed: %v", email.ID, err)
	}
	s.metrics.EmailsFailed.Inc()
}
