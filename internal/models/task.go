package models

import (
	"errors"
	"strings"
	"time"
)

// NoAssignment labels the board column of tasks without an assignment.
const NoAssignment = "No assignment"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty accepts an empty string as "no difficulty".
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", ErrUnknownDifficulty
	}
}

// Rank orders difficulties from easiest to hardest. Anything
// that is not a known difficulty ranks after "hard".
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 4
	}
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	WorkspaceID *string    `json:"workspace_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Assignment  string     `json:"assignment,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AssignmentLabel returns the board column the task belongs to.
func (t Task) AssignmentLabel() string {
	if strings.TrimSpace(t.Assignment) == "" {
		return NoAssignment
	}
	return t.Assignment
}

// HasDeadline reports whether the task carries a usable deadline.
func (t Task) HasDeadline() bool {
	return t.Deadline != nil && !t.Deadline.IsZero()
}

// SetCompleted keeps CompletedAt in step with Completed.
func (t *Task) SetCompleted(completed bool, at time.Time) {
	t.Completed = completed
	if completed {
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
}
