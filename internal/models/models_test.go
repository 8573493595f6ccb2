package models

import (
	"testing"
	"time"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"", "", false},
		{"easy", DifficultyEasy, false},
		{" Hard ", DifficultyHard, false},
		{"MEDIUM", DifficultyMedium, false},
		{"impossible", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDifficulty(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDifficulty(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDifficulty(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDifficultyRank(t *testing.T) {
	if !(DifficultyEasy.Rank() < DifficultyMedium.Rank() &&
		DifficultyMedium.Rank() < DifficultyHard.Rank() &&
		DifficultyHard.Rank() < Difficulty("bogus").Rank()) {
		t.Error("expected easy < medium < hard < unknown")
	}
	if Difficulty("").Rank() != 4 {
		t.Errorf("empty difficulty rank = %d, want 4", Difficulty("").Rank())
	}
}

func TestAssignmentLabel(t *testing.T) {
	if got := (Task{}).AssignmentLabel(); got != NoAssignment {
		t.Errorf("empty assignment label = %q", got)
	}
	if got := (Task{Assignment: "  "}).AssignmentLabel(); got != NoAssignment {
		t.Errorf("blank assignment label = %q", got)
	}
	if got := (Task{Assignment: "Math"}).AssignmentLabel(); got != "Math" {
		t.Errorf("assignment label = %q", got)
	}
}

func TestSetCompleted(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	var task Task

	task.SetCompleted(true, now)
	if !task.Completed || task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
		t.Fatalf("completed task = %+v", task)
	}

	task.SetCompleted(false, now)
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("reopened task = %+v", task)
	}
}

func TestPreferencesNormalize(t *testing.T) {
	prefs := Preferences{
		Sort: map[string]SortConfig{
			"Math":    {Type: SortDeadline},
			"History": {Type: "random", Direction: SortAsc},
			"Art":     {Type: SortDifficulty, Direction: "sideways"},
		},
		Pinned: map[string]bool{"Math": true, "Art": false},
	}

	got := prefs.Normalize()
	if len(got.Sort) != 1 {
		t.Fatalf("expected 1 valid sort entry, got %v", got.Sort)
	}
	if got.Sort["Math"].Direction != SortAsc {
		t.Errorf("direction should default to asc, got %q", got.Sort["Math"].Direction)
	}
	if len(got.Pinned) != 1 || !got.Pinned["Math"] {
		t.Errorf("pinned = %v", got.Pinned)
	}
	if got.ColumnOrder == nil || got.TaskOrder == nil {
		t.Error("nil collections should be replaced with empty ones")
	}
}
