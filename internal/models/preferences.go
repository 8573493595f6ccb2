package models

import (
	"errors"
	"strings"
)

type SortType string

const (
	SortAlphabetical SortType = "alphabetical"
	SortDeadline     SortType = "deadline"
	SortDifficulty   SortType = "difficulty"
	SortDateAdded    SortType = "dateAdded"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

var (
	ErrUnknownSortType      = errors.New("unknown sort type")
	ErrUnknownSortDirection = errors.New("unknown sort direction")
)

func ParseSortType(s string) (SortType, error) {
	switch t := SortType(strings.TrimSpace(s)); t {
	case SortAlphabetical, SortDeadline, SortDifficulty, SortDateAdded:
		return t, nil
	default:
		return "", ErrUnknownSortType
	}
}

// ParseSortDirection defaults to ascending when s is empty.
func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return SortAsc, nil
	case SortAsc, SortDesc:
		return d, nil
	default:
		return "", ErrUnknownSortDirection
	}
}

type SortConfig struct {
	Type      SortType      `json:"type"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Preferences is the per-workspace board layout of a user.
type Preferences struct {
	WorkspaceID string                `json:"workspace_id,omitempty"`
	Sort        map[string]SortConfig `json:"sort"`
	Pinned      map[string]bool       `json:"pinned"`
	ColumnOrder []string              `json:"column_order"`
	TaskOrder   map[string][]string   `json:"task_order"`
}

func DefaultPreferences(workspaceID string) Preferences {
	return Preferences{
		WorkspaceID: workspaceID,
		Sort:        map[string]SortConfig{},
		Pinned:      map[string]bool{},
		ColumnOrder: []string{},
		TaskOrder:   map[string][]string{},
	}
}

// Normalize fills nil collections and drops sort entries
// whose type or direction is not recognised.
func (p Preferences) Normalize() Preferences {
	out := DefaultPreferences(p.WorkspaceID)
	for label, cfg := range p.Sort {
		t, err := ParseSortType(string(cfg.Type))
		if err != nil {
			continue
		}
		d, err := ParseSortDirection(string(cfg.Direction))
		if err != nil {
			continue
		}
		out.Sort[label] = SortConfig{Type: t, Direction: d}
	}
	for label, pinned := range p.Pinned {
		if pinned {
			out.Pinned[label] = true
		}
	}
	if p.ColumnOrder != nil {
		out.ColumnOrder = append(out.ColumnOrder, p.ColumnOrder...)
	}
	for label, ids := range p.TaskOrder {
		out.TaskOrder[label] = append([]string(nil), ids...)
	}
	return out
}
