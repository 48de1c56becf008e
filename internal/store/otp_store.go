package store

import (
	"context"
	"errors"
	"time"

	"cleverspace/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OTPStore struct{ db *gorm.DB }

func (s *Store) OTPs() *OTPStore { return &OTPStore{db: s.DB} }

// GetByUserIDForUpdate fetches the user's OTP row under a row lock. Must run
// inside WithTx so "read code, then mark used" serializes against a
// concurrent issuance for the same user.
func (os *OTPStore) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.OTP, error) {
	var otp domain.OTP
	err := os.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&otp, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &otp, nil
}

// GetOrCreateForUpdate returns the user's OTP row, creating it with the given
// code if absent. The unique index on user_id plus DO NOTHING keeps the
// one-row-per-user invariant when two requests race on first issuance; the
// re-read under lock picks up whichever insert won.
func (os *OTPStore) GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID, code string) (*domain.OTP, bool, error) {
	existing, err := os.GetByUserIDForUpdate(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	fresh := domain.OTP{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.OTPValidity),
	}
	if err := os.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, false, err
	}

	won, err := os.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return won, won.ID == fresh.ID, nil
}

// Save persists mutations to an existing row (refresh, mark used).
func (os *OTPStore) Save(ctx context.Context, otp *domain.OTP) error {
	return os.db.WithContext(ctx).Save(otp).Error
}
