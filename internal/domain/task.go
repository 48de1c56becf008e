package domain

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Title       string    `gorm:"type:varchar(250);not null" db:"title" json:"title"`
	Description string    `gorm:"type:text" db:"description" json:"description"`
	IsCompleted bool      `gorm:"not null;default:false" db:"is_completed" json:"isCompleted"`
	ScheduledOn time.Time `gorm:"not null;index" db:"scheduled_on" json:"scheduledOn"`
	CreatedAt   time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }
