package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cleverspace/internal/domain"
	"cleverspace/internal/dto"
	"cleverspace/internal/observability/metrics"
	"cleverspace/internal/service"
	"cleverspace/internal/store"

	"github.com/google/uuid"
)

type AuthServiceImpl struct {
	Store           authDataStore
	PasswordService service.PasswordService
	TService        service.TokenService
	Identity        service.IdentityProvider
}

func NewAuthServiceImpl(st *store.Store, passwordService service.PasswordService, tokenService service.TokenService, identity service.IdentityProvider) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           authGormAdapter{store: st},
		PasswordService: passwordService,
		TService:        tokenService,
		Identity:        identity,
	}
}

type authDataStore interface {
	Users() authUserStore
	WithTx(ctx context.Context, fn func(tx authStoreTx) error) error
}

type authStoreTx interface {
	Credentials() authCredentialStore
	OTPs() authOTPStore
}

type authUserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type authCredentialStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordCredential, error)
	Upsert(ctx context.Context, c *domain.PasswordCredential) error
}

type authOTPStore interface {
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.OTP, error)
	Save(ctx context.Context, otp *domain.OTP) error
}

type authGormAdapter struct {
	store *store.Store
}

func (g authGormAdapter) Users() authUserStore { return g.store.Users() }

func (g authGormAdapter) WithTx(ctx context.Context, fn func(tx authStoreTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(authGormTx{tx: tx})
	})
}

type authGormTx struct {
	tx *store.Store
}

func (g authGormTx) Credentials() authCredentialStore { return g.tx.Credentials() }

func (g authGormTx) OTPs() authOTPStore { return g.tx.OTPs() }

// Login runs one attempt through the state machine: shape validation, user
// resolution, verification gate, method dispatch, token issuance.
func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.TokenPair, error) {
	result := "success"
	defer func() {
		metrics.LoginsTotal.WithLabelValues(r.Method, result).Inc()
	}()

	if err := validateLoginShape(r); err != nil {
		result = "malformed"
		return nil, err
	}

	user, err := a.Store.Users().GetByEmail(ctx, r.Email)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	// Verification gate: unverified non-staff users never reach credential
	// checking. The resend is a side effect of the failed attempt.
	if !user.SkipsVerificationGate() {
		result = "unverified"
		if err := a.Identity.ResendVerification(ctx, user.Email); err != nil {
			slog.Error("verification resend failed", "error", err, "user_id", user.ID)
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, domain.ErrEmailNotVerified
	}

	switch r.Method {
	case dto.MethodPassword:
		err = a.verifyPassword(ctx, user, r.Password)
	case dto.MethodOTP:
		err = a.verifyOTP(ctx, user, r.OTP)
	}
	if err != nil {
		result = "failure"
		return nil, err
	}

	tokens, err := a.TService.Issue(ctx, user, ip, ua)
	if err != nil {
		result = "failure"
		return nil, err
	}
	return tokens, nil
}

func validateLoginShape(r dto.LoginRequest) error {
	if r.Email == "" || !looksLikeEmail(r.Email) {
		return domain.ErrMalformedRequest
	}
	switch r.Method {
	case dto.MethodPassword:
		if r.Password == "" {
			return domain.ErrMalformedRequest
		}
	case dto.MethodOTP:
		if r.OTP == "" {
			return domain.ErrMalformedRequest
		}
		// Stricter digit check happens before any record lookup.
		if !isSixDigits(r.OTP) {
			return domain.ErrMalformedOTP
		}
	default:
		return domain.ErrMalformedRequest
	}
	return nil
}

func (a *AuthServiceImpl) verifyPassword(ctx context.Context, user *domain.User, password string) error {
	return a.Store.WithTx(ctx, func(tx authStoreTx) error {
		cred, err := tx.Credentials().GetByUserID(ctx, user.ID)
		if err != nil {
			// No distinction between missing credential and wrong password.
			return domain.ErrInvalidCredentials
		}

		rehashNeeded, ok := a.PasswordService.Verify(password, cred)
		if !ok {
			return domain.ErrInvalidCredentials
		}

		if rehashNeeded {
			fresh, err := a.PasswordService.Hash(password)
			if err != nil {
				return err
			}
			fresh.ID = cred.ID
			fresh.UserID = cred.UserID
			fresh.CreatedAt = cred.CreatedAt
			fresh.UpdatedAt = time.Now().UTC()
			if err := tx.Credentials().Upsert(ctx, fresh); err != nil {
				return err
			}
		}
		return nil
	})
}

// verifyOTP holds the row lock across read-check-consume so a concurrent
// attempt with the same code cannot redeem it twice.
func (a *AuthServiceImpl) verifyOTP(ctx context.Context, user *domain.User, code string) error {
	return a.Store.WithTx(ctx, func(tx authStoreTx) error {
		otp, err := tx.OTPs().GetByUserIDForUpdate(ctx, user.ID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrNoOTPFound
			}
			return err
		}
		if !otp.IsValid() {
			return domain.ErrOTPExpired
		}
		if otp.Code != code {
			return domain.ErrOTPMismatch
		}

		otp.IsUsed = true
		return tx.OTPs().Save(ctx, otp)
	})
}

func looksLikeEmail(s string) bool {
	at := -1
	for i, r := range s {
		if r == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
	}
	return at > 0 && at < len(s)-1
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
