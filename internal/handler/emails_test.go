package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-mail-dispatch-go/internal/model"
	"tutor-mail-dispatch-go/internal/repository"
)

type fakeRepo struct {
	enqueued   []model.QueuedEmail
	requeueErr error
	listed     []model.QueuedEmail
}

func (f *fakeRepo) Enqueue(ctx context.Context, email *model.QueuedEmail) error {
	email.ID = uint(len(f.enqueued) + 1)
	email.Status = model.StatusPending
	f.enqueued = append(f.enqueued, *email)
	return nil
}

func (f *fakeRepo) Requeue(ctx context.Context, id uint) error {
	return f.requeueErr
}

func (f *fakeRepo) ListByStatus(ctx context.Context, status model.EmailStatus, limit int) ([]model.QueuedEmail, error) {
	return f.listed, nil
}

func (f *fakeRepo) Stats(ctx context.Context) (model.QueueStats, error) {
	return model.QueueStats{Pending: 2, Sent: 5}, nil
}

type fakeControl struct {
	running bool
}

func (f *fakeControl) Start() error          { f.running = true; return nil }
func (f *fakeControl) Stop() error           { f.running = false; return nil }
func (f *fakeControl) RunOnce() error        { return nil }
func (f *fakeControl) IsRunning() bool       { return f.running }
func (f *fakeControl) GetNextRun() time.Time { return time.Time{} }
func (f *fakeControl) GetLastRun() time.Time { return time.Time{} }

func newTestRouter(repo *fakeRepo, ctrl *fakeControl) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandlers(nil, repo, ctrl)
	h.SetupRoutes(router)
	return router
}

func TestEnqueueEmail(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(repo, &fakeControl{})

	body := `{"to_email":"parent@school.test","subject":"Session confirmed","body":"<p>See you Tuesday</p>"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emails", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.enqueued, 1)
	assert.Equal(t, "parent@school.test", repo.enqueued[0].ToEmail)
	assert.Equal(t, model.StatusPending, repo.enqueued[0].Status)
}

func TestEnqueueEmailRejectsBadAddress(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(repo, &fakeControl{})

	body := `{"to_email":"not-an-address","subject":"x","body":"y"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emails", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.enqueued)
}

func TestListEmailsRejectsUnknownStatus(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, &fakeControl{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emails?status=bounced", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequeueConflict(t *testing.T) {
	repo := &fakeRepo{requeueErr: repository.ErrNotRequeueable}
	router := newTestRouter(repo, &fakeControl{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/emails/7/requeue", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRequeueSuccess(t *testing.T) {
	router := newTestRouter(&fakeRepo{}, &fakeControl{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/emails/7/requeue", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSchedulerStatus(t *testing.T) {
	ctrl := &fakeControl{running: true}
	router := newTestRouter(&fakeRepo{}, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scheduler/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"running"`)
}
