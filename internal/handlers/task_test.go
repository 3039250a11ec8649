package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
	"github.com/corvid-labs/taskline-backend/internal/services"
)

type fakeTaskService struct {
	out     *services.TaskOutput
	list    []*services.TaskOutput
	err     error
	lastIn  any
	deleted uuid.UUID
}

func (f *fakeTaskService) Create(ctx context.Context, input services.CreateTaskInput) (*services.TaskOutput, error) {
	f.lastIn = input
	return f.out, f.err
}

func (f *fakeTaskService) Get(ctx context.Context, taskID uuid.UUID) (*services.TaskOutput, error) {
	return f.out, f.err
}

func (f *fakeTaskService) List(ctx context.Context, input services.ListTasksInput) ([]*services.TaskOutput, error) {
	f.lastIn = input
	return f.list, f.err
}

func (f *fakeTaskService) Update(ctx context.Context, input services.UpdateTaskInput) (*services.TaskOutput, error) {
	f.lastIn = input
	return f.out, f.err
}

func (f *fakeTaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	f.deleted = taskID
	return f.err
}

func taskRouter(svc services.TaskService) *gin.Engine {
	r := gin.New()
	th := NewTaskHandler(svc, logger.NewNop())
	r.POST("/tasks", th.Create)
	r.GET("/tasks", th.List)
	r.GET("/tasks/:id", th.Get)
	r.PATCH("/tasks/:id", th.Update)
	r.DELETE("/tasks/:id", th.Delete)
	return r
}

func sampleOutput() *services.TaskOutput {
	now := time.Now().UTC()
	return &services.TaskOutput{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Title:     "write report",
		Status:    "open",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateReturns201WithGeneratedID(t *testing.T) {
	out := sampleOutput()
	svc := &fakeTaskService{out: out}
	r := taskRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"write report"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d, want 201", rec.Code)
	}
	var body services.TaskOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != out.ID {
		t.Fatalf("id=%s, want %s", body.ID, out.ID)
	}
}

func TestCreateMalformedBodyIs400(t *testing.T) {
	r := taskRouter(&fakeTaskService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestGetNotFoundIs404(t *testing.T) {
	svc := &fakeTaskService{err: apperrors.NewResourceNotFound("Task", "abc")}
	r := taskRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.NewString(), nil)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}

func TestGetBadUUIDIs400(t *testing.T) {
	r := taskRouter(&fakeTaskService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestListPassesStatusFilter(t *testing.T) {
	svc := &fakeTaskService{list: []*services.TaskOutput{sampleOutput()}}
	r := taskRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks?status=open", nil)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	in, ok := svc.lastIn.(services.ListTasksInput)
	if !ok || in.Status == nil || *in.Status != "open" {
		t.Fatalf("service input=%+v, want status filter open", svc.lastIn)
	}
}

func TestDeleteReturns204(t *testing.T) {
	svc := &fakeTaskService{}
	r := taskRouter(svc)
	id := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+id.String(), nil)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d, want 204", rec.Code)
	}
	if svc.deleted != id {
		t.Fatalf("deleted=%s, want %s", svc.deleted, id)
	}
}

func TestUpdateConflictIs409(t *testing.T) {
	svc := &fakeTaskService{err: apperrors.NewConflict("task was modified by another request")}
	r := taskRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+uuid.NewString(), strings.NewReader(`{"status":"in_progress"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", rec.Code)
	}
}
