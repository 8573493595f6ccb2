package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/models"
)

var errNoTitle = errors.New("a task needs a title")

// taskLine is the one-line task notation of the board prompt:
//
//	Read chapter 3 #History @2024-03-10 !hard
//
// "#" names the assignment (underscores stand for spaces), "@" the
// deadline and "!" the difficulty. Every other word is the title.
type taskLine struct {
	Title      string
	Assignment string
	Deadline   *time.Time
	Difficulty models.Difficulty
}

func parseTaskLine(s string) (taskLine, error) {
	var line taskLine
	var title []string
	for _, word := range strings.Fields(s) {
		switch {
		case len(word) > 1 && word[0] == '#':
			line.Assignment = strings.ReplaceAll(word[1:], "_", " ")
		case len(word) > 1 && word[0] == '@':
			d, err := time.Parse(time.DateOnly, word[1:])
			if err != nil {
				return taskLine{}, fmt.Errorf("deadline %q is not YYYY-MM-DD", word[1:])
			}
			line.Deadline = &d
		case len(word) > 1 && word[0] == '!':
			d, err := models.ParseDifficulty(word[1:])
			if err != nil {
				return taskLine{}, fmt.Errorf("difficulty %q is not easy, medium or hard", word[1:])
			}
			line.Difficulty = d
		default:
			title = append(title, word)
		}
	}
	line.Title = strings.Join(title, " ")
	if line.Title == "" {
		return taskLine{}, errNoTitle
	}
	return line, nil
}

// formatTaskLine writes task in the notation parseTaskLine reads.
func formatTaskLine(task models.Task) string {
	parts := []string{task.Title}
	if a := strings.TrimSpace(task.Assignment); a != "" {
		parts = append(parts, "#"+strings.ReplaceAll(a, " ", "_"))
	}
	if task.HasDeadline() {
		parts = append(parts, "@"+task.Deadline.Format(time.DateOnly))
	}
	if task.Difficulty != "" {
		parts = append(parts, "!"+string(task.Difficulty))
	}
	return strings.Join(parts, " ")
}

// draft builds a new task. Without "#" the task joins column.
func (l taskLine) draft(column string) models.Task {
	task := models.Task{
		Title:      l.Title,
		Assignment: l.Assignment,
		Deadline:   l.Deadline,
		Difficulty: l.Difficulty,
	}
	if task.Assignment == "" && column != models.NoAssignment {
		task.Assignment = column
	}
	return task
}

// patch lists what changed from task. Removing "#" or "@" clears the
// assignment or deadline. ok is false when nothing changed.
func (l taskLine) patch(task models.Task) (patch client.TaskPatch, ok bool) {
	if l.Title != task.Title {
		patch.Title = &l.Title
	}
	if l.Assignment != strings.TrimSpace(task.Assignment) {
		patch.Assignment = &l.Assignment
	}

	var before, after string
	if task.HasDeadline() {
		before = task.Deadline.Format(time.DateOnly)
	}
	if l.Deadline != nil {
		after = l.Deadline.Format(time.DateOnly)
	}
	if before != after {
		patch.Deadline = &after
	}

	if l.Difficulty != "" && l.Difficulty != task.Difficulty {
		d := string(l.Difficulty)
		patch.Difficulty = &d
	}

	ok = patch.Title != nil || patch.Assignment != nil ||
		patch.Deadline != nil || patch.Difficulty != nil
	return patch, ok
}
