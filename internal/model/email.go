package model

import (
	"time"
)

// EmailStatus represents the delivery state of a queued email.
type EmailStatus string

const (
	// StatusPending marks a row that has not been attempted yet.
	StatusPending EmailStatus = "pending"
	// StatusSending marks a row claimed by a dispatch cycle. Rows in this
	// state are never re-claimed; a healthy cycle always moves them on to
	// sent or failed before it returns.
	StatusSending EmailStatus = "sending"
	// StatusSent marks a delivered row. SentAt is set iff status is sent.
	StatusSent EmailStatus = "sent"
	// StatusFailed marks a row whose delivery attempt was rejected. It is
	// not retried automatically; an operator may requeue it.
	StatusFailed EmailStatus = "failed"
)

// QueuedEmail represents one outbound message in the dispatch queue.
// Producers insert rows with status pending; the dispatcher owns every
// mutation after that. Rows are never deleted by the dispatcher.
type QueuedEmail struct {
	ID         uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	ToEmail    string      `json:"to_email" gorm:"type:varchar(255);not null"`
	Subject    string      `json:"subject" gorm:"type:varchar(998);not null"`
	Body       string      `json:"body" gorm:"type:mediumtext;not null"`
	Status     EmailStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index:idx_status_created,priority:1"`
	ErrorMsg   string      `json:"error_msg,omitempty" gorm:"type:text"`
	ClaimToken string      `json:"-" gorm:"type:varchar(36);index"`
	CreatedAt  time.Time   `json:"created_at" gorm:"index:idx_status_created,priority:2"`
	UpdatedAt  time.Time   `json:"updated_at"`
	SentAt     *time.Time  `json:"sent_at,omitempty"`
}

// TableName specifies the table name for QueuedEmail
func (QueuedEmail) TableName() string {
	return "email_queue"
}

// EnqueueRequest represents the request structure for enqueueing an email
type EnqueueRequest struct {
	ToEmail string `json:"to_email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// QueueStats holds per-status row counts for the queue
type QueueStats struct {
	Pending int64 `json:"pending"`
	Sending int64 `json:"sending"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Details   map[string]string `json:"details,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
