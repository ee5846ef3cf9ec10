package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tutor-mail-dispatch-go/internal/model"
)

// QueueRepository is the slice of the repository the HTTP layer needs.
type QueueRepository interface {
	Enqueue(ctx context.Context, email *model.QueuedEmail) error
	Requeue(ctx context.Context, id uint) error
	ListByStatus(ctx context.Context, status model.EmailStatus, limit int) ([]model.QueuedEmail, error)
	Stats(ctx context.Context) (model.QueueStats, error)
}

// DispatchControl exposes the scheduler lifecycle to the HTTP layer.
type DispatchControl interface {
	Start() error
	Stop() error
	RunOnce() error
	IsRunning() bool
	GetNextRun() time.Time
	GetLastRun() time.Time
}

// Handlers contains all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	repo      QueueRepository
	scheduler DispatchControl
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, repo QueueRepository, s DispatchControl) *Handlers {
	return &Handlers{db: db, repo: repo, scheduler: s}
}

// SetupRoutes registers all routes on the router
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api/v1")
	{
		api.POST("/emails", h.EnqueueEmail)
		api.GET("/emails", h.ListEmails)
		api.GET("/emails/stats", h.QueueStatsHandler)
		api.POST("/emails/:id/requeue", h.RequeueEmail)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run", h.RunOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}
