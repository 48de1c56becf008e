package dto

import "time"

type TaskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
	ScheduledOn time.Time `json:"scheduledOn"`
}
