package service

import (
	"context"

	"cleverspace/internal/domain"
	"cleverspace/internal/dto"

	"github.com/google/uuid"
)

type TokenService interface {
	Issue(ctx context.Context, user *domain.User, ip, ua string) (*dto.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, ip, ua string) (*dto.TokenPair, error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
}
