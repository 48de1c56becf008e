package service

import "context"

type OTPService interface {
	// RequestOTP issues (or refreshes) the one-time code for the account
	// behind email, dispatches it by mail, and returns the remaining
	// validity window in seconds. The code itself is never returned.
	RequestOTP(ctx context.Context, email string) (int, error)
}
