package service

import "context"

// Mailer delivers transactional mail. Implementations must fail loudly: a
// delivery error is returned to the caller, never swallowed.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
