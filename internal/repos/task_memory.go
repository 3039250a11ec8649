package repos

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/corvid-labs/taskline-backend/internal/domain"
	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/types"
)

var _ TaskRepo = (*memoryTaskRepo)(nil)

var errDuplicateRow = errors.New("duplicate row")

// memoryTaskRepo keeps tasks in process memory. Used in tests and when
// DB_MODE=memory. State is per instance; two instances share nothing.
type memoryTaskRepo struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]types.Task
}

func NewMemoryTaskRepo() TaskRepo {
	return &memoryTaskRepo{rows: make(map[uuid.UUID]types.Task)}
}

func (mr *memoryTaskRepo) Save(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewPersistence("memoryTaskRepo.Save", "context done", err)
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if _, exists := mr.rows[task.ID()]; exists {
		return apperrors.NewPersistence("memoryTaskRepo.Save", "duplicate task id", errDuplicateRow)
	}
	mr.rows[task.ID()] = *toRecord(task)
	return nil
}

func (mr *memoryTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewPersistence("memoryTaskRepo.GetByID", "context done", err)
	}
	mr.mu.RLock()
	rec, ok := mr.rows[id]
	mr.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return fromRecord(&rec)
}

func (mr *memoryTaskRepo) ListByFilter(ctx context.Context, filter TaskFilter) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewPersistence("memoryTaskRepo.ListByFilter", "context done", err)
	}
	mr.mu.RLock()
	recs := make([]types.Task, 0, len(mr.rows))
	for _, rec := range mr.rows {
		if rec.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != nil && rec.Status != string(*filter.Status) {
			continue
		}
		recs = append(recs, rec)
	}
	mr.mu.RUnlock()

	// UUIDv7 ids sort by creation time.
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].ID.String() < recs[j].ID.String()
	})

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

func (mr *memoryTaskRepo) Update(ctx context.Context, task *domain.Task) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.NewPersistence("memoryTaskRepo.Update", "context done", err)
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	rec, ok := mr.rows[task.ID()]
	if !ok || rec.Version != task.Version() {
		return false, nil
	}
	rec.Title = task.Title().String()
	rec.Status = string(task.Status())
	rec.Version = task.Version() + 1
	rec.UpdatedAt = task.UpdatedAt()
	mr.rows[task.ID()] = rec
	return true, nil
}

func (mr *memoryTaskRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.NewPersistence("memoryTaskRepo.Delete", "context done", err)
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if _, ok := mr.rows[id]; !ok {
		return false, nil
	}
	delete(mr.rows, id)
	return true, nil
}
