// Package services holds the use-case layer. Each service method is one
// application operation: it validates input through the domain
// constructors, talks to the repository port, and returns plain output
// values. This is the only layer that turns a missing row into a
// not-found error, a version miss into a conflict, and an ownership
// failure into an authorization error; everything else propagates with
// its original layer attribution.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/corvid-labs/taskline-backend/internal/domain"
	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/ctxutil"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
	"github.com/corvid-labs/taskline-backend/internal/repos"
)

// IDGenerator produces the task identifiers. The default is UUIDv7:
// time-ordered prefix for index locality, random tail so identifiers
// stay unguessable. Injected so tests can pin ids.
type IDGenerator func() (uuid.UUID, error)

type CreateTaskInput struct {
	Title string
}

type UpdateTaskInput struct {
	TaskID uuid.UUID
	Title  *string
	Status *string
}

type ListTasksInput struct {
	Status *string
}

// TaskOutput is the plain value returned to the boundary. Handlers
// serialize it as-is.
type TaskOutput struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput) (*TaskOutput, error)
	Get(ctx context.Context, taskID uuid.UUID) (*TaskOutput, error)
	List(ctx context.Context, input ListTasksInput) ([]*TaskOutput, error)
	Update(ctx context.Context, input UpdateTaskInput) (*TaskOutput, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
}

var _ TaskService = (*taskService)(nil)

type taskService struct {
	taskRepo repos.TaskRepo
	newID    IDGenerator
	now      func() time.Time
	log      *logger.Logger
}

func NewTaskService(taskRepo repos.TaskRepo, baseLog *logger.Logger) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		newID:    uuid.NewV7,
		now:      time.Now,
		log:      baseLog.With("service", "TaskService"),
	}
}

// NewTaskServiceWithIDs is NewTaskService with a pinned id generator.
func NewTaskServiceWithIDs(taskRepo repos.TaskRepo, baseLog *logger.Logger, newID IDGenerator) TaskService {
	svc := NewTaskService(taskRepo, baseLog).(*taskService)
	svc.newID = newID
	return svc
}

func (ts *taskService) Create(ctx context.Context, input CreateTaskInput) (*TaskOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	title, err := domain.ParseTitle(input.Title)
	if err != nil {
		return nil, err
	}

	// Exactly one id per creation; never delegated to storage.
	id, err := ts.newID()
	if err != nil {
		return nil, apperrors.NewPersistence("taskService.Create", "generate task id", err)
	}

	task, err := domain.NewTask(id, actor.UserID, title, ts.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := ts.taskRepo.Save(ctx, task); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, apperrors.NewConflict("task already exists")
		}
		return nil, err
	}

	ts.log.Info("task created", "task_id", task.ID(), "owner_id", actor.UserID)
	return toOutput(task), nil
}

func (ts *taskService) Get(ctx context.Context, taskID uuid.UUID) (*TaskOutput, error) {
	task, err := ts.ownedTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toOutput(task), nil
}

func (ts *taskService) List(ctx context.Context, input ListTasksInput) ([]*TaskOutput, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	filter := repos.TaskFilter{OwnerID: actor.UserID}
	if input.Status != nil {
		status, err := domain.ParseStatus(*input.Status)
		if err != nil {
			// A filter value is use-case input, not entity state.
			return nil, apperrors.NewUseCaseValidation("status", "unknown status filter")
		}
		filter.Status = &status
	}

	tasks, err := ts.taskRepo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*TaskOutput, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toOutput(task))
	}
	return out, nil
}

func (ts *taskService) Update(ctx context.Context, input UpdateTaskInput) (*TaskOutput, error) {
	if input.Title == nil && input.Status == nil {
		return nil, apperrors.NewUseCaseValidation("body", "no task changes provided")
	}

	task, err := ts.ownedTask(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}

	now := ts.now().UTC()
	if input.Title != nil {
		title, err := domain.ParseTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		if err := task.Rename(title, now); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		status, err := domain.ParseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		if err := task.TransitionTo(status, now); err != nil {
			return nil, err
		}
	}

	applied, err := ts.taskRepo.Update(ctx, task)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The row changed (or vanished) between read and write.
		return nil, apperrors.NewConflict("task was modified by another request")
	}

	ts.log.Info("task updated", "task_id", task.ID())
	return toOutput(task.Bumped()), nil
}

func (ts *taskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	task, err := ts.ownedTask(ctx, taskID)
	if err != nil {
		return err
	}

	applied, err := ts.taskRepo.Delete(ctx, task.ID())
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.NewConflict("task was deleted by another request")
	}

	ts.log.Info("task deleted", "task_id", taskID)
	return nil
}

// ownedTask loads a task and enforces operation-scoped authorization.
// A task owned by someone else reads the same as a missing one, so the
// two cases stay indistinguishable at the boundary (both reach the
// caller as 404).
func (ts *taskService) ownedTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if taskID == uuid.Nil {
		return nil, apperrors.NewUseCaseValidation("task_id", "task id must not be empty")
	}

	task, err := ts.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.NewResourceNotFound("Task", taskID.String())
	}
	if !task.IsOwnedBy(actor.UserID) {
		return nil, apperrors.NewAuthorization("task " + taskID.String() + " not found")
	}
	return task, nil
}

func requireActor(ctx context.Context) (*ctxutil.Actor, error) {
	actor := ctxutil.GetActor(ctx)
	if actor == nil || actor.UserID == uuid.Nil {
		return nil, apperrors.NewAuthentication("missing or invalid token")
	}
	return actor, nil
}

func toOutput(task *domain.Task) *TaskOutput {
	return &TaskOutput{
		ID:        task.ID(),
		OwnerID:   task.OwnerID(),
		Title:     task.Title().String(),
		Status:    string(task.Status()),
		Version:   task.Version(),
		CreatedAt: task.CreatedAt(),
		UpdatedAt: task.UpdatedAt(),
	}
}
