package board

import (
	"slices"

	"github.com/adanyl0v/studyboard/internal/models"
)

// Column is one assignment column as the board renders it.
type Column struct {
	Assignment string            `json:"assignment"`
	Pinned     bool              `json:"pinned"`
	Sort       models.SortConfig `json:"sort"`
	Open       []models.Task     `json:"open"`
	Done       []models.Task     `json:"done"`
}

func (c Column) Len() int {
	return len(c.Open) + len(c.Done)
}

// Columns builds the board for tasks under prefs. Pinned columns come
// first, then columns in the saved order, then everything else by name.
// Columns without a sort config use the saved manual task order.
func Columns(tasks []models.Task, prefs models.Preferences) []Column {
	prefs = prefs.Normalize()
	groups := Group(tasks, prefs.Sort)

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}

	position := make(map[string]int, len(prefs.ColumnOrder))
	for i, label := range prefs.ColumnOrder {
		if _, ok := position[label]; !ok {
			position[label] = i
		}
	}
	slices.SortFunc(labels, func(a, b string) int {
		if pa, pb := prefs.Pinned[a], prefs.Pinned[b]; pa != pb {
			if pa {
				return -1
			}
			return 1
		}
		ia, oka := position[a]
		ib, okb := position[b]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		}
		return compareStrings(a, b)
	})

	columns := make([]Column, 0, len(labels))
	for _, label := range labels {
		bucket := groups[label]
		cfg, sorted := prefs.Sort[label]
		if !sorted {
			bucket = ApplyOrder(bucket, prefs.TaskOrder[label])
		}
		open, done := SplitByCompletion(bucket)
		columns = append(columns, Column{
			Assignment: label,
			Pinned:     prefs.Pinned[label],
			Sort:       cfg,
			Open:       open,
			Done:       done,
		})
	}
	return columns
}

// ApplyOrder moves tasks listed in ids to the front in that order.
// Unknown ids are ignored and unlisted tasks follow in input order.
func ApplyOrder(tasks []models.Task, ids []string) []models.Task {
	if len(ids) == 0 {
		return tasks
	}

	index := make(map[string]int, len(tasks))
	for i, task := range tasks {
		index[task.ID] = i
	}

	out := make([]models.Task, 0, len(tasks))
	used := make([]bool, len(tasks))
	for _, id := range ids {
		i, ok := index[id]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		out = append(out, tasks[i])
	}
	for i, task := range tasks {
		if !used[i] {
			out = append(out, task)
		}
	}
	return out
}

// Move returns a copy of order with item placed at index to.
// An item missing from order is inserted. The index is clamped.
func Move(order []string, item string, to int) []string {
	out := make([]string, 0, len(order)+1)
	for _, o := range order {
		if o != item {
			out = append(out, o)
		}
	}
	to = max(0, min(to, len(out)))
	return slices.Insert(out, to, item)
}

// Labels returns the assignment labels of columns in board order.
func Labels(columns []Column) []string {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = c.Assignment
	}
	return labels
}
