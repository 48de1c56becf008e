package domain

import (
	"time"

	"github.com/google/uuid"
)

// OTPValidity is the window during which an issued code can be redeemed.
const OTPValidity = 10 * time.Minute

// OTP is the single one-time code row kept per user. The row is never
// deleted: issuing a new code after expiry refreshes it in place, and a
// successful login marks it used.
type OTP struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" db:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_otps_user;not null" db:"user_id"`
	Code      string    `gorm:"type:varchar(6);not null" db:"code"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	IsUsed    bool      `gorm:"not null;default:false" db:"is_used"`
}

func (OTP) TableName() string { return "otps" }

// IsValid reports whether the code can still be redeemed: never after it has
// been used, even if the expiry is in the future.
func (o *OTP) IsValid() bool {
	return !o.IsUsed && !time.Now().UTC().After(o.ExpiresAt)
}

// RemainingSeconds is the whole seconds left in the validity window,
// clamped at zero. Drives both rate limiting and the expires_in field
// shown to clients.
func (o *OTP) RemainingSeconds() int {
	now := time.Now().UTC()
	if now.After(o.ExpiresAt) {
		return 0
	}
	return int(o.ExpiresAt.Sub(now).Seconds())
}

// Refresh replaces the code and restarts the validity window. Callers must
// persist the record afterwards.
func (o *OTP) Refresh(code string) {
	o.Code = code
	o.ExpiresAt = time.Now().UTC().Add(OTPValidity)
	o.IsUsed = false
}
