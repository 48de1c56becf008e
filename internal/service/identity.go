package service

import "context"

// IdentityProvider is the external registration/email-verification system.
// ResendVerification is a synchronous bounded-timeout call; any failure or
// timeout surfaces as a single error outcome.
type IdentityProvider interface {
	ResendVerification(ctx context.Context, email string) error
}
