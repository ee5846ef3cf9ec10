package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tutor-mail-dispatch-go/internal/model"
	"tutor-mail-dispatch-go/internal/repository"
)

const defaultListLimit = 50

// EnqueueEmail inserts a new pending email into the queue
func (h *Handlers) EnqueueEmail(c *gin.Context) {
	var req model.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	email := model.QueuedEmail{
		ToEmail: req.ToEmail,
		Subject: req.Subject,
		Body:    req.Body,
	}

	if err := h.repo.Enqueue(c.Request.Context(), &email); err != nil {
		logrus.Errorf("Failed to enqueue email: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "failed to enqueue email"})
		return
	}

	c.JSON(http.StatusCreated, email)
}

// ListEmails returns queue rows, optionally filtered by status
func (h *Handlers) ListEmails(c *gin.Context) {
	status := model.EmailStatus(c.Query("status"))
	switch status {
	case "", model.StatusPending, model.StatusSending, model.StatusSent, model.StatusFailed:
	default:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid status filter"})
		return
	}

	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	emails, err := h.repo.ListByStatus(c.Request.Context(), status, limit)
	if err != nil {
		logrus.Errorf("Failed to list emails: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "failed to list emails"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"emails": emails, "count": len(emails)})
}

// QueueStatsHandler returns per-status row counts
func (h *Handlers) QueueStatsHandler(c *gin.Context) {
	stats, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		logrus.Errorf("Failed to get queue stats: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "failed to get queue stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RequeueEmail resets a failed or stuck email back to pending
func (h *Handlers) RequeueEmail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid email id"})
		return
	}

	if err := h.repo.Requeue(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotRequeueable) {
			c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
			return
		}
		logrus.Errorf("Failed to requeue email %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "failed to requeue email"})
		return
	}

	c.Status(http.StatusNoContent)
}
