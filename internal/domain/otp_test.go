package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestOTPIsValid(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name  string
		otp   OTP
		valid bool
	}{
		{
			name:  "fresh code",
			otp:   OTP{ExpiresAt: now.Add(OTPValidity)},
			valid: true,
		},
		{
			name:  "past expiry",
			otp:   OTP{ExpiresAt: now.Add(-time.Second)},
			valid: false,
		},
		{
			name:  "used before expiry",
			otp:   OTP{ExpiresAt: now.Add(OTPValidity), IsUsed: true},
			valid: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.otp.IsValid(); got != tc.valid {
				t.Fatalf("IsValid() = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestOTPRemainingSeconds(t *testing.T) {
	now := time.Now().UTC()

	fresh := OTP{ExpiresAt: now.Add(OTPValidity)}
	if got := fresh.RemainingSeconds(); got < 598 || got > 600 {
		t.Fatalf("fresh record: RemainingSeconds() = %d, want ~600", got)
	}

	expired := OTP{ExpiresAt: now.Add(-time.Hour)}
	if got := expired.RemainingSeconds(); got != 0 {
		t.Fatalf("expired record: RemainingSeconds() = %d, want 0", got)
	}
}

func TestOTPRefresh(t *testing.T) {
	otp := OTP{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Code:      "111111",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
		IsUsed:    true,
	}

	otp.Refresh("222222")

	if otp.Code != "222222" {
		t.Fatalf("code = %q, want %q", otp.Code, "222222")
	}
	if otp.IsUsed {
		t.Fatal("IsUsed not reset")
	}
	if got := otp.RemainingSeconds(); got < 598 || got > 600 {
		t.Fatalf("RemainingSeconds() after refresh = %d, want ~600", got)
	}
}
