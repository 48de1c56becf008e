package impl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cleverspace/internal/domain"
	"cleverspace/internal/dto"
	"cleverspace/internal/store"

	"github.com/google/uuid"
)

type memAuthStore struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	credentials map[uuid.UUID]*domain.PasswordCredential
	otps        map[uuid.UUID]*domain.OTP

	userLookups int
	otpLookups  int
}

func newMemAuthStore() *memAuthStore {
	return &memAuthStore{
		users:       make(map[string]*domain.User),
		credentials: make(map[uuid.UUID]*domain.PasswordCredential),
		otps:        make(map[uuid.UUID]*domain.OTP),
	}
}

func (m *memAuthStore) Users() authUserStore { return m }

func (m *memAuthStore) WithTx(ctx context.Context, fn func(tx authStoreTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memAuthStore) Credentials() authCredentialStore { return m }

func (m *memAuthStore) OTPs() authOTPStore { return m }

func (m *memAuthStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.userLookups++
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrRecordNotFound
}

func (m *memAuthStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordCredential, error) {
	if c, ok := m.credentials[userID]; ok {
		return c, nil
	}
	return nil, store.ErrRecordNotFound
}

func (m *memAuthStore) Upsert(ctx context.Context, c *domain.PasswordCredential) error {
	m.credentials[c.UserID] = c
	return nil
}

func (m *memAuthStore) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.OTP, error) {
	m.otpLookups++
	if o, ok := m.otps[userID]; ok {
		return o, nil
	}
	return nil, store.ErrRecordNotFound
}

func (m *memAuthStore) Save(ctx context.Context, otp *domain.OTP) error {
	m.otps[otp.UserID] = otp
	return nil
}

type stubPasswordService struct {
	verifyOK     bool
	rehashNeeded bool
	verifyCalls  int
}

func (s *stubPasswordService) Hash(password string) (*domain.PasswordCredential, error) {
	return &domain.PasswordCredential{Algo: "argon2id", Hash: []byte(password)}, nil
}

func (s *stubPasswordService) Verify(password string, cred *domain.PasswordCredential) (bool, bool) {
	s.verifyCalls++
	return s.rehashNeeded, s.verifyOK
}

type stubTokenService struct {
	pair       *dto.TokenPair
	issueErr   error
	issueCalls int
}

func (s *stubTokenService) Issue(ctx context.Context, user *domain.User, ip, ua string) (*dto.TokenPair, error) {
	s.issueCalls++
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	return s.pair, nil
}

func (s *stubTokenService) Refresh(ctx context.Context, refreshToken, ip, ua string) (*dto.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTokenService) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	return errors.New("not implemented")
}

type stubIdentity struct {
	err   error
	calls []string
}

func (s *stubIdentity) ResendVerification(ctx context.Context, email string) error {
	s.calls = append(s.calls, email)
	return s.err
}

type authFixture struct {
	store    *memAuthStore
	password *stubPasswordService
	tokens   *stubTokenService
	identity *stubIdentity
	svc      *AuthServiceImpl
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		store:    newMemAuthStore(),
		password: &stubPasswordService{},
		tokens:   &stubTokenService{pair: &dto.TokenPair{Access: "a", Refresh: "r"}},
		identity: &stubIdentity{},
	}
	f.svc = &AuthServiceImpl{
		Store:           f.store,
		PasswordService: f.password,
		TService:        f.tokens,
		Identity:        f.identity,
	}
	return f
}

func (f *authFixture) seedUser(email string, verified, staff bool) *domain.User {
	u := &domain.User{ID: uuid.New(), Email: email, EmailVerified: verified, IsStaff: staff}
	f.store.users[email] = u
	return u
}

func (f *authFixture) seedOTP(userID uuid.UUID, code string, expiresAt time.Time, used bool) {
	f.store.otps[userID] = &domain.OTP{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
		IsUsed:    used,
	}
}

func TestLoginMalformedOTPBeforeAnyLookup(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("a@x.com", true, false)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodOTP, OTP: "12a456",
	}, "", "")
	if !errors.Is(err, domain.ErrMalformedOTP) {
		t.Fatalf("err = %v, want ErrMalformedOTP", err)
	}
	if f.store.userLookups != 0 || f.store.otpLookups != 0 {
		t.Fatalf("store touched before shape validation: users=%d otps=%d",
			f.store.userLookups, f.store.otpLookups)
	}
}

func TestLoginMissingFields(t *testing.T) {
	f := newAuthFixture()

	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{"no email", dto.LoginRequest{Method: dto.MethodPassword, Password: "x"}},
		{"bad method", dto.LoginRequest{Email: "a@x.com", Method: "magic"}},
		{"password method without password", dto.LoginRequest{Email: "a@x.com", Method: dto.MethodPassword}},
		{"otp method without otp", dto.LoginRequest{Email: "a@x.com", Method: dto.MethodOTP}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tc.req, "", "")
			if !errors.Is(err, domain.ErrMalformedRequest) {
				t.Fatalf("err = %v, want ErrMalformedRequest", err)
			}
		})
	}
}

func TestLoginUserNotFound(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "ghost@x.com", Method: dto.MethodPassword, Password: "pw",
	}, "", "")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestLoginUnverifiedTriggersOneResend(t *testing.T) {
	for _, method := range []string{dto.MethodPassword, dto.MethodOTP} {
		t.Run(method, func(t *testing.T) {
			f := newAuthFixture()
			f.seedUser("a@x.com", false, false)

			req := dto.LoginRequest{Email: "a@x.com", Method: method, Password: "pw", OTP: "123456"}
			_, err := f.svc.Login(context.Background(), req, "", "")
			if !errors.Is(err, domain.ErrEmailNotVerified) {
				t.Fatalf("err = %v, want ErrEmailNotVerified", err)
			}
			if len(f.identity.calls) != 1 {
				t.Fatalf("resend called %d times, want 1", len(f.identity.calls))
			}
			if f.password.verifyCalls != 0 || f.store.otpLookups != 0 {
				t.Fatal("credential check reached despite failed gate")
			}
		})
	}
}

func TestLoginUnverifiedStaffSkipsGate(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser("staff@x.com", false, true)
	f.seedOTP(user.ID, "123456", time.Now().UTC().Add(domain.OTPValidity), false)

	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "staff@x.com", Method: dto.MethodOTP, OTP: "123456",
	}, "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair == nil || pair.Access == "" {
		t.Fatal("no token pair issued")
	}
	if len(f.identity.calls) != 0 {
		t.Fatal("resend triggered for staff user")
	}
}

func TestLoginResendFailure(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("a@x.com", false, false)
	f.identity.err = errors.New("upstream 504")

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodPassword, Password: "pw",
	}, "", "")
	if !errors.Is(err, domain.ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}
}

func TestLoginPasswordWrong(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser("a@x.com", true, false)
	f.store.credentials[user.ID] = &domain.PasswordCredential{UserID: user.ID, Algo: "argon2id"}
	f.password.verifyOK = false

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodPassword, Password: "wrong",
	}, "", "")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if f.tokens.issueCalls != 0 {
		t.Fatal("tokens issued for failed verification")
	}
}

func TestLoginPasswordMissingCredential(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("a@x.com", true, false)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodPassword, Password: "pw",
	}, "", "")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginPasswordSuccess(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser("a@x.com", true, false)
	f.store.credentials[user.ID] = &domain.PasswordCredential{UserID: user.ID, Algo: "argon2id"}
	f.password.verifyOK = true

	pair, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodPassword, Password: "pw",
	}, "203.0.113.9", "tests")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.Access != "a" || pair.Refresh != "r" {
		t.Fatalf("pair = %+v", pair)
	}
}

func TestLoginPasswordTransparentRehash(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser("a@x.com", true, false)
	old := &domain.PasswordCredential{
		ID: uuid.New(), UserID: user.ID, Algo: "argon2id", PasswordVer: 0,
	}
	f.store.credentials[user.ID] = old
	f.password.verifyOK = true
	f.password.rehashNeeded = true

	if _, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodPassword, Password: "pw",
	}, "", ""); err != nil {
		t.Fatalf("Login: %v", err)
	}

	stored := f.store.credentials[user.ID]
	if string(stored.Hash) != "pw" {
		t.Fatal("credential not rehashed")
	}
	if stored.ID != old.ID || stored.UserID != user.ID {
		t.Fatal("rehash replaced identity columns")
	}
}

func TestLoginOTPSuccessIsSingleUse(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser("a@x.com", true, false)
	f.seedOTP(user.ID, "654321", time.Now().UTC().Add(domain.OTPValidity), false)

	req := dto.LoginRequest{Email: "a@x.com", Method: dto.MethodOTP, OTP: "654321"}

	if _, err := f.svc.Login(context.Background(), req, "", ""); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if !f.store.otps[user.ID].IsUsed {
		t.Fatal("record not consumed on success")
	}

	_, err := f.svc.Login(context.Background(), req, "", "")
	if !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("second login err = %v, want ErrOTPExpired", err)
	}
	if f.tokens.issueCalls != 1 {
		t.Fatalf("tokens issued %d times, want 1", f.tokens.issueCalls)
	}
}

func TestLoginOTPMismatchDoesNotConsume(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser("a@x.com", true, false)
	f.seedOTP(user.ID, "654321", time.Now().UTC().Add(domain.OTPValidity), false)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodOTP, OTP: "000000",
	}, "", "")
	if !errors.Is(err, domain.ErrOTPMismatch) {
		t.Fatalf("err = %v, want ErrOTPMismatch", err)
	}
	if f.store.otps[user.ID].IsUsed {
		t.Fatal("mismatched attempt consumed the record")
	}
}

func TestLoginOTPExpired(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser("a@x.com", true, false)
	f.seedOTP(user.ID, "654321", time.Now().UTC().Add(-time.Minute), false)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodOTP, OTP: "654321",
	}, "", "")
	if !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("err = %v, want ErrOTPExpired", err)
	}
}

func TestLoginOTPNoRecord(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("a@x.com", true, false)

	_, err := f.svc.Login(context.Background(), dto.LoginRequest{
		Email: "a@x.com", Method: dto.MethodOTP, OTP: "123456",
	}, "", "")
	if !errors.Is(err, domain.ErrNoOTPFound) {
		t.Fatalf("err = %v, want ErrNoOTPFound", err)
	}
}
