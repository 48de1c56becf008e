package impl

import (
	"context"
	"errors"
	"time"

	"cleverspace/internal/domain"
	"cleverspace/internal/dto"
	"cleverspace/internal/store"

	"github.com/google/uuid"
)

// TaskServiceImpl is a thin wrapper over the task store; there is no
// algorithmic content here beyond the completion toggle.
type TaskServiceImpl struct {
	Store *store.Store
}

func NewTaskServiceImpl(st *store.Store) *TaskServiceImpl {
	return &TaskServiceImpl{Store: st}
}

func (t *TaskServiceImpl) List(ctx context.Context) ([]domain.Task, error) {
	return t.Store.Tasks().List(ctx)
}

func (t *TaskServiceImpl) Create(ctx context.Context, r dto.TaskRequest) (*domain.Task, error) {
	if r.Title == "" || r.ScheduledOn.IsZero() {
		return nil, domain.ErrMalformedRequest
	}
	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.New(),
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		ScheduledOn: r.ScheduledOn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Store.Tasks().Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (t *TaskServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := t.Store.Tasks().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (t *TaskServiceImpl) Update(ctx context.Context, id uuid.UUID, r dto.TaskRequest) (*domain.Task, error) {
	if r.Title == "" || r.ScheduledOn.IsZero() {
		return nil, domain.ErrMalformedRequest
	}
	task, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Title = r.Title
	task.Description = r.Description
	task.IsCompleted = r.IsCompleted
	task.ScheduledOn = r.ScheduledOn
	task.UpdatedAt = time.Now().UTC()
	if err := t.Store.Tasks().Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (t *TaskServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := t.Store.Tasks().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (t *TaskServiceImpl) SwapComplete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	task.IsCompleted = !task.IsCompleted
	task.UpdatedAt = time.Now().UTC()
	if err := t.Store.Tasks().Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
