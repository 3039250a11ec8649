// Package repos defines the persistence ports consumed by the service
// layer, plus their implementations. Ports raise infrastructure errors
// only; a missing row is a nil result, not an error.
package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/corvid-labs/taskline-backend/internal/domain"
	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
	"github.com/corvid-labs/taskline-backend/internal/types"
)

// TaskFilter selects tasks for list queries.
type TaskFilter struct {
	OwnerID uuid.UUID
	Status  *domain.Status
}

// TaskRepo is the persistence port for tasks.
//
// GetByID returns (nil, nil) when no row exists. Update and Delete
// return whether the write applied; an optimistic-version miss is
// (false, nil), never an error. Every error returned by any method is
// an infrastructure-kind apperrors.Error.
type TaskRepo interface {
	Save(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByFilter(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

var _ TaskRepo = (*taskRepo)(nil)

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (tr *taskRepo) Save(ctx context.Context, task *domain.Task) error {
	rec := toRecord(task)
	if err := tr.db.WithContext(ctx).Create(rec).Error; err != nil {
		tr.log.Error("save task failed", "task_id", task.ID(), "error", err)
		return apperrors.NewPersistence("taskRepo.Save", "insert task", err)
	}
	return nil
}

func (tr *taskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var rec types.Task
	err := tr.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		tr.log.Error("get task failed", "task_id", id, "error", err)
		return nil, apperrors.NewPersistence("taskRepo.GetByID", "select task", err)
	}
	return fromRecord(&rec)
}

func (tr *taskRepo) ListByFilter(ctx context.Context, filter TaskFilter) ([]*domain.Task, error) {
	q := tr.db.WithContext(ctx).Where("owner_id = ?", filter.OwnerID)
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}

	var recs []types.Task
	if err := q.Order("id").Find(&recs).Error; err != nil {
		tr.log.Error("list tasks failed", "owner_id", filter.OwnerID, "error", err)
		return nil, apperrors.NewPersistence("taskRepo.ListByFilter", "select tasks", err)
	}

	tasks := make([]*domain.Task, 0, len(recs))
	for i := range recs {
		task, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Update writes title, status and timestamps conditioned on the
// entity's current version. A version miss means another request won
// the race; the caller decides what that means.
func (tr *taskRepo) Update(ctx context.Context, task *domain.Task) (bool, error) {
	res := tr.db.WithContext(ctx).
		Model(&types.Task{}).
		Where("id = ? AND version = ?", task.ID(), task.Version()).
		Updates(map[string]interface{}{
			"title":      task.Title().String(),
			"status":     string(task.Status()),
			"version":    task.Version() + 1,
			"updated_at": task.UpdatedAt(),
		})
	if res.Error != nil {
		tr.log.Error("update task failed", "task_id", task.ID(), "error", res.Error)
		return false, apperrors.NewPersistence("taskRepo.Update", "update task", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (tr *taskRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := tr.db.WithContext(ctx).Delete(&types.Task{}, "id = ?", id)
	if res.Error != nil {
		tr.log.Error("delete task failed", "task_id", id, "error", res.Error)
		return false, apperrors.NewPersistence("taskRepo.Delete", "delete task", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func toRecord(task *domain.Task) *types.Task {
	return &types.Task{
		ID:        task.ID(),
		OwnerID:   task.OwnerID(),
		Title:     task.Title().String(),
		Status:    string(task.Status()),
		Version:   task.Version(),
		CreatedAt: task.CreatedAt(),
		UpdatedAt: task.UpdatedAt(),
	}
}

// fromRecord rehydrates a stored row. A row that fails domain
// validation is corrupt storage, so the failure surfaces as an
// infrastructure error rather than a domain one.
func fromRecord(rec *types.Task) (*domain.Task, error) {
	task, err := domain.RehydrateTask(rec.ID, rec.OwnerID, rec.Title, rec.Status, rec.Version, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewPersistence("taskRepo.fromRecord", "corrupt task row", err)
	}
	return task, nil
}
