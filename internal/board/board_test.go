package board

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/adanyl0v/studyboard/internal/models"
)

func date(day int) *time.Time {
	t := time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func sampleTasks() []models.Task {
	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	return []models.Task{
		{ID: "1", Title: "essay", Assignment: "English", Deadline: date(10), Difficulty: models.DifficultyHard, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "2", Title: "Algebra", Assignment: "Math", Difficulty: models.DifficultyEasy, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "3", Title: "calculus", Assignment: "Math", Deadline: date(5), Difficulty: "weird", CreatedAt: base},
		{ID: "4", Title: "Geometry", Assignment: "Math", Deadline: date(2), Difficulty: models.DifficultyMedium, CreatedAt: base.Add(2 * time.Hour), Completed: true},
		{ID: "5", Title: "groceries", CreatedAt: base.Add(4 * time.Hour)},
		{ID: "6", Title: "brainstorm", Assignment: "Math", CreatedAt: base.Add(5 * time.Hour)},
	}
}

func TestSortDifficultyExample(t *testing.T) {
	tasks := []models.Task{
		{ID: "B", Title: "B", Difficulty: models.DifficultyHard},
		{ID: "A", Title: "A", Difficulty: models.DifficultyEasy},
	}

	got := Sort(tasks, models.SortConfig{Type: models.SortDifficulty, Direction: models.SortAsc})
	if want := []string{"A", "B"}; !slices.Equal(ids(got), want) {
		t.Errorf("Sort() = %v, want %v", ids(got), want)
	}
	if tasks[0].ID != "B" {
		t.Error("Sort must not modify its input")
	}
}

func TestSort(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name string
		cfg  models.SortConfig
		want []string
	}{
		{"alphabetical asc", models.SortConfig{Type: models.SortAlphabetical}, []string{"2", "6", "3", "1", "4", "5"}},
		{"alphabetical desc", models.SortConfig{Type: models.SortAlphabetical, Direction: models.SortDesc}, []string{"5", "4", "1", "3", "6", "2"}},
		{"deadline asc", models.SortConfig{Type: models.SortDeadline}, []string{"4", "3", "1", "2", "5", "6"}},
		{"deadline desc", models.SortConfig{Type: models.SortDeadline, Direction: models.SortDesc}, []string{"1", "3", "4", "2", "5", "6"}},
		{"difficulty asc", models.SortConfig{Type: models.SortDifficulty}, []string{"2", "4", "1", "3", "5", "6"}},
		{"difficulty desc", models.SortConfig{Type: models.SortDifficulty, Direction: models.SortDesc}, []string{"3", "5", "6", "1", "4", "2"}},
		{"date added asc", models.SortConfig{Type: models.SortDateAdded}, []string{"3", "2", "4", "1", "5", "6"}},
		{"date added desc", models.SortConfig{Type: models.SortDateAdded, Direction: models.SortDesc}, []string{"6", "5", "1", "4", "2", "3"}},
		{"unknown type", models.SortConfig{Type: "priority"}, []string{"1", "2", "3", "4", "5", "6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(tasks, tt.cfg)
			if !slices.Equal(ids(got), tt.want) {
				t.Errorf("Sort() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestSortDeadlineMissingLast(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 12; i++ {
		task := models.Task{ID: fmt.Sprint(i)}
		if i%3 != 0 {
			task.Deadline = date(i + 1)
		}
		if i == 9 {
			task.Deadline = &time.Time{}
		}
		tasks = append(tasks, task)
	}

	for _, dir := range []models.SortDirection{models.SortAsc, models.SortDesc} {
		got := Sort(tasks, models.SortConfig{Type: models.SortDeadline, Direction: dir})
		seenMissing := false
		for _, task := range got {
			if !task.HasDeadline() {
				seenMissing = true
				continue
			}
			if seenMissing {
				t.Fatalf("%s: task %s with deadline after a task without one: %v", dir, task.ID, ids(got))
			}
		}
	}
}

func TestSortDifficultyMonotonic(t *testing.T) {
	difficulties := []models.Difficulty{"", models.DifficultyHard, "x", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyEasy, models.DifficultyHard}
	var tasks []models.Task
	for i, d := range difficulties {
		tasks = append(tasks, models.Task{ID: fmt.Sprint(i), Difficulty: d})
	}

	got := Sort(tasks, models.SortConfig{Type: models.SortDifficulty})
	for i := 1; i < len(got); i++ {
		if got[i-1].Difficulty.Rank() > got[i].Difficulty.Rank() {
			t.Fatalf("rank decreased at %d: %v", i, ids(got))
		}
	}
	// Ties keep input order.
	if !slices.Equal(ids(got), []string{"3", "5", "4", "1", "6", "0", "2"}) {
		t.Errorf("unexpected order %v", ids(got))
	}
}

func TestSortIdempotent(t *testing.T) {
	tasks := sampleTasks()
	for _, typ := range SortTypes() {
		for _, dir := range []models.SortDirection{models.SortAsc, models.SortDesc} {
			cfg := models.SortConfig{Type: typ, Direction: dir}
			once := Sort(tasks, cfg)
			twice := Sort(once, cfg)
			if !slices.Equal(ids(once), ids(twice)) {
				t.Errorf("%s/%s not idempotent: %v vs %v", typ, dir, ids(once), ids(twice))
			}
		}
	}
}

func TestGroupConservation(t *testing.T) {
	tasks := sampleTasks()
	groups := Group(tasks, map[string]models.SortConfig{
		"Math": {Type: models.SortAlphabetical},
	})

	if groups.Len() != len(tasks) {
		t.Fatalf("groups hold %d tasks, want %d", groups.Len(), len(tasks))
	}
	count := map[string]int{}
	for _, bucket := range groups {
		for _, task := range bucket {
			count[task.ID]++
		}
	}
	for _, task := range tasks {
		if count[task.ID] != 1 {
			t.Errorf("task %s appears %d times", task.ID, count[task.ID])
		}
	}

	if got := ids(groups["Math"]); !slices.Equal(got, []string{"2", "6", "3", "4"}) {
		t.Errorf("Math bucket = %v", got)
	}
	if got := ids(groups[models.NoAssignment]); !slices.Equal(got, []string{"5"}) {
		t.Errorf("no-assignment bucket = %v", got)
	}
}

func TestGroupEmpty(t *testing.T) {
	groups := Group(nil, nil)
	if groups == nil || len(groups) != 0 {
		t.Errorf("Group(nil) = %v, want empty map", groups)
	}
}

func TestGroupDuplicateIDs(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Title: "first", Assignment: "Math"},
		{ID: "1", Title: "again", Assignment: "Art"},
		{Title: "no id"},
		{Title: "no id either"},
	}

	groups := Group(tasks, nil)
	if _, ok := groups["Art"]; ok {
		t.Error("duplicate id should be skipped")
	}
	if groups["Math"][0].Title != "first" {
		t.Error("first occurrence should win")
	}
	if len(groups[models.NoAssignment]) != 2 {
		t.Error("tasks without ids are never deduplicated")
	}
}

func TestColumns(t *testing.T) {
	tasks := sampleTasks()
	prefs := models.Preferences{
		Sort:        map[string]models.SortConfig{"Math": {Type: models.SortDeadline}},
		Pinned:      map[string]bool{"English": true},
		ColumnOrder: []string{models.NoAssignment, "Math"},
	}

	columns := Columns(tasks, prefs)
	if got, want := Labels(columns), []string{"English", models.NoAssignment, "Math"}; !slices.Equal(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}

	math := columns[2]
	if !slices.Equal(ids(math.Open), []string{"3", "2", "6"}) {
		t.Errorf("Math open = %v", ids(math.Open))
	}
	if !slices.Equal(ids(math.Done), []string{"4"}) {
		t.Errorf("Math done = %v", ids(math.Done))
	}
	if !columns[0].Pinned {
		t.Error("English should be pinned")
	}
}

func TestColumnsManualOrder(t *testing.T) {
	tasks := sampleTasks()
	prefs := models.Preferences{
		TaskOrder: map[string][]string{"Math": {"6", "missing", "3"}},
	}

	columns := Columns(tasks, prefs)
	if got, want := Labels(columns), []string{"English", "Math", models.NoAssignment}; !slices.Equal(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	if got := ids(columns[1].Open); !slices.Equal(got, []string{"6", "3", "2"}) {
		t.Errorf("Math open = %v", got)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		item  string
		to    int
		want  []string
	}{
		{"forward", []string{"a", "b", "c"}, "a", 2, []string{"b", "c", "a"}},
		{"backward", []string{"a", "b", "c"}, "c", 0, []string{"c", "a", "b"}},
		{"insert", []string{"a", "b"}, "z", 1, []string{"a", "z", "b"}},
		{"clamp", []string{"a", "b"}, "a", 99, []string{"b", "a"}},
		{"negative", []string{"a", "b"}, "b", -3, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Move(tt.order, tt.item, tt.to); !slices.Equal(got, tt.want) {
				t.Errorf("Move() = %v, want %v", got, tt.want)
			}
		})
	}
}
