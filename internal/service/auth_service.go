package service

import (
	"context"

	"cleverspace/internal/dto"
)

type AuthService interface {
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.TokenPair, error)
}
