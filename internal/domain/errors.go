package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrNoOTPFound         = errors.New("no otp found")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPMismatch        = errors.New("otp mismatch")
	ErrMalformedOTP       = errors.New("otp must be exactly 6 digits")
	ErrMalformedRequest   = errors.New("invalid request format")
	ErrMailDelivery       = errors.New("mail delivery failed")
	ErrUpstreamTimeout    = errors.New("verification resend failed")
	ErrTaskNotFound       = errors.New("task not found")
)

// OTPRateLimitedError rejects an issuance request while the previous code is
// still inside its validity window. RetryAfter is the remaining wait in
// seconds.
type OTPRateLimitedError struct {
	RetryAfter int
}

func (e *OTPRateLimitedError) Error() string {
	return fmt.Sprintf("otp already sent, wait %d seconds", e.RetryAfter)
}
