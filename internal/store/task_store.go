package store

import (
	"context"
	"errors"

	"cleverspace/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStore struct{ db *gorm.DB }

func (s *Store) Tasks() *TaskStore { return &TaskStore{db: s.DB} }

func (ts *TaskStore) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return ts.db.WithContext(ctx).Create(t).Error
}

// List returns all tasks newest-scheduled first.
func (ts *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := ts.db.WithContext(ctx).Order("scheduled_on DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (ts *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := ts.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (ts *TaskStore) Save(ctx context.Context, t *domain.Task) error {
	return ts.db.WithContext(ctx).Save(t).Error
}

func (ts *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := ts.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
