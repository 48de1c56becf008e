package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email         string    `gorm:"type:citext;uniqueIndex:ux_users_email" db:"email" json:"email"`
	EmailVerified bool      `gorm:"not null;default:false" db:"email_verified" json:"emailVerified"`
	IsStaff       bool      `gorm:"not null;default:false" db:"is_staff" json:"isStaff"`
	CreatedAt     time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// SkipsVerificationGate reports whether the user may log in without a
// confirmed email address. Staff accounts are exempt from the gate.
func (u *User) SkipsVerificationGate() bool {
	return u.IsStaff || u.EmailVerified
}
