package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutor-mail-dispatch-go/internal/model"
)

// ErrNotRequeueable is returned when a requeue targets a row that is not in
// a failed or stuck sending state.
var ErrNotRequeueable = errors.New("email is not in a requeueable state")

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Enqueue inserts a new pending email into the queue.
func (r *Repository) Enqueue(ctx context.Context, email *model.QueuedEmail) error {
	email.Status = model.StatusPending
	email.SentAt = nil
	if result := r.db.WithContext(ctx).Create(email); result.Error != nil {
		return fmt.Errorf("failed to enqueue email: %w", result.Error)
	}
	return nil
}

// ClaimPending atomically moves up to limit of the oldest pending rows to the
// sending state and returns them. The claim is a single conditional UPDATE
// tagged with a fresh token, so two concurrent workers can never claim the
// same row.
func (r *Repository) ClaimPending(ctx context.Context, limit int) ([]model.QueuedEmail, error) {
	token := uuid.NewString()

	result := r.db.WithContext(ctx).Exec(
		`UPDATE email_queue
		 SET status = ?, claim_token = ?, updated_at = NOW()
		 WHERE status = ?
		 ORDER BY created_at, id
		 LIMIT ?`,
		model.StatusSending, token, model.StatusPending, limit,
	)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim pending emails: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var emails []model.QueuedEmail
	if err := r.db.WithContext(ctx).
		Where("claim_token = ? AND status = ?", token, model.StatusSending).
		Order("created_at, id").
		Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to load claimed emails: %w", err)
	}
	return emails, nil
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uint, sentAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.QueuedEmail{}).
		Where("id = ? AND status = ?", id, model.StatusSending).
		Updates(map[string]interface{}{
			"status":  model.StatusSent,
			"sent_at": sentAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark email %d as sent: %w", id, result.Error)
	}
	return nil
}

// MarkFailed records a rejected delivery attempt. The row stays in the queue
// until an operator requeues it; it is never retried automatically.
func (r *Repository) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	result := r.db.WithContext(ctx).Model(&model.QueuedEmail{}).
		Where("id = ? AND status = ?", id, model.StatusSending).
		Updates(map[string]interface{}{
			"status":    model.StatusFailed,
			"error_msg": errMsg,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark email %d as failed: %w", id, result.Error)
	}
	return nil
}

// Requeue resets a failed or stuck row back to pending so the next cycle
// picks it up again. Sent rows cannot be requeued.
func (r *Repository) Requeue(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&model.QueuedEmail{}).
		Where("id = ? AND status IN ?", id, []model.EmailStatus{model.StatusFailed, model.StatusSending}).
		Updates(map[string]interface{}{
			"status":      model.StatusPending,
			"error_msg":   "",
			"claim_token": "",
			"sent_at":     nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to requeue email %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotRequeueable
	}
	return nil
}

// ListByStatus returns the newest rows, optionally filtered by status.
func (r *Repository) ListByStatus(ctx context.Context, status model.EmailStatus, limit int) ([]model.QueuedEmail, error) {
	query := r.db.WithContext(ctx).Model(&model.QueuedEmail{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var emails []model.QueuedEmail
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&emails).Error; err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

// Stats returns per-status row counts for the queue.
func (r *Repository) Stats(ctx context.Context) (model.QueueStats, error) {
	var rows []struct {
		Status model.EmailStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&model.QueuedEmail{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return model.QueueStats{}, fmt.Errorf("failed to count emails: %w", err)
	}

	var stats model.QueueStats
	for _, row := range rows {
		switch row.Status {
		case model.StatusPending:
			stats.Pending = row.Count
		case model.StatusSending:
			stats.Sending = row.Count
		case model.StatusSent:
			stats.Sent = row.Count
		case model.StatusFailed:
			stats.Failed = row.Count
		}
	}
	return stats, nil
}
