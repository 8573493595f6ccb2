package models

import "time"

// Lap is a finished study session recorded by the timer.
type Lap struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id,omitempty"`
	WorkspaceID    *string   `json:"workspace_id,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Duration       string    `json:"duration"`
	SessionNumber  int       `json:"session_number"`
	TasksCompleted int       `json:"tasks_completed"`
	CreatedAt      time.Time `json:"created_at"`
}
