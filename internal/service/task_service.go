package service

import (
	"context"

	"cleverspace/internal/domain"
	"cleverspace/internal/dto"

	"github.com/google/uuid"
)

type TaskService interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, r dto.TaskRequest) (*domain.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, id uuid.UUID, r dto.TaskRequest) (*domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SwapComplete(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}
