package impl

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"cleverspace/internal/domain"
	"cleverspace/internal/observability/metrics"
	"cleverspace/internal/service"
	"cleverspace/internal/store"

	"github.com/google/uuid"
)

const otpCodeLength = 6

type OTPServiceImpl struct {
	Store  otpDataStore
	Mailer service.Mailer
}

func NewOTPServiceImpl(st *store.Store, mailer service.Mailer) *OTPServiceImpl {
	return &OTPServiceImpl{
		Store:  otpGormAdapter{store: st},
		Mailer: mailer,
	}
}

type otpDataStore interface {
	WithTx(ctx context.Context, fn func(tx otpStoreTx) error) error
}

type otpStoreTx interface {
	Users() otpUserStore
	OTPs() otpRecordStore
}

type otpUserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type otpRecordStore interface {
	GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID, code string) (*domain.OTP, bool, error)
	Save(ctx context.Context, otp *domain.OTP) error
}

type otpGormAdapter struct {
	store *store.Store
}

func (g otpGormAdapter) WithTx(ctx context.Context, fn func(tx otpStoreTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(otpGormTx{tx: tx})
	})
}

type otpGormTx struct {
	tx *store.Store
}

func (g otpGormTx) Users() otpUserStore { return g.tx.Users() }

func (g otpGormTx) OTPs() otpRecordStore { return g.tx.OTPs() }

// RequestOTP implements the issuance flow: resolve the user, get-or-create
// the single OTP row under a row lock, refresh it iff the previous window has
// elapsed, then dispatch the code by mail. Mail failure is a hard error —
// the caller must never see success for an undelivered code.
func (s *OTPServiceImpl) RequestOTP(ctx context.Context, email string) (int, error) {
	result := "success"
	defer func() {
		metrics.OTPRequestsTotal.WithLabelValues(result).Inc()
	}()

	code, err := generateCode()
	if err != nil {
		result = "failure"
		return 0, err
	}

	var remaining int
	err = s.Store.WithTx(ctx, func(tx otpStoreTx) error {
		user, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}

		otp, created, err := tx.OTPs().GetOrCreateForUpdate(ctx, user.ID, code)
		if err != nil {
			return err
		}

		if !created {
			if wait := otp.RemainingSeconds(); wait > 0 {
				return &domain.OTPRateLimitedError{RetryAfter: wait}
			}
			otp.Refresh(code)
			if err := tx.OTPs().Save(ctx, otp); err != nil {
				return err
			}
		}

		remaining = otp.RemainingSeconds()
		return nil
	})
	if err != nil {
		result = rateAwareResult(err)
		return 0, err
	}

	body := fmt.Sprintf("Your OTP is: %s. It will expire in 10 minutes.", code)
	if err := s.Mailer.Send(ctx, email, "Your Login OTP", body); err != nil {
		result = "failure"
		slog.Error("otp mail dispatch failed", "error", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}

	return remaining, nil
}

func rateAwareResult(err error) string {
	var rl *domain.OTPRateLimitedError
	if errors.As(err, &rl) {
		return "rate_limited"
	}
	return "failure"
}

// generateCode draws 6 independent uniform digits; leading zeros are allowed
// since the code is a string, not a number.
func generateCode() (string, error) {
	var b strings.Builder
	b.Grow(otpCodeLength)
	for i := 0; i < otpCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
