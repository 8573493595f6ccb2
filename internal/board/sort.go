// Package board groups tasks into assignment columns and orders them.
package board

import (
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/adanyl0v/studyboard/internal/models"
)

// Comparator orders two tasks ascending, returning a negative
// number when a comes first, zero when they tie.
type Comparator func(a, b models.Task) int

type sorter struct {
	compare Comparator
	// missing reports tasks that go after all others in both directions.
	missing func(models.Task) bool
}

var registry = map[models.SortType]sorter{
	models.SortAlphabetical: {compare: compareTitle},
	models.SortDeadline: {
		compare: compareDeadline,
		missing: func(t models.Task) bool { return !t.HasDeadline() },
	},
	models.SortDifficulty: {compare: compareDifficulty},
	models.SortDateAdded:  {compare: compareCreatedAt},
}

// SortTypes lists the supported sort kinds in display order.
func SortTypes() []models.SortType {
	return []models.SortType{
		models.SortAlphabetical,
		models.SortDeadline,
		models.SortDifficulty,
		models.SortDateAdded,
	}
}

// Sort returns a sorted copy of tasks. The sort is stable, so ties
// keep their input order. An unknown sort type leaves the order as is.
func Sort(tasks []models.Task, cfg models.SortConfig) []models.Task {
	out := slices.Clone(tasks)
	s, ok := registry[cfg.Type]
	if !ok {
		return out
	}

	desc := cfg.Direction == models.SortDesc
	slices.SortStableFunc(out, func(a, b models.Task) int {
		if s.missing != nil {
			am, bm := s.missing(a), s.missing(b)
			switch {
			case am && bm:
				return 0
			case am:
				return 1
			case bm:
				return -1
			}
		}
		c := s.compare(a, b)
		if desc {
			return -c
		}
		return c
	})
	return out
}

// collate.Collator keeps internal buffers and is not safe for concurrent use.
var titleCollator = struct {
	sync.Mutex
	c *collate.Collator
}{c: collate.New(language.Und, collate.IgnoreCase)}

func compareStrings(a, b string) int {
	titleCollator.Lock()
	defer titleCollator.Unlock()
	return titleCollator.c.CompareString(a, b)
}

func compareTitle(a, b models.Task) int {
	return compareStrings(a.Title, b.Title)
}

func compareDeadline(a, b models.Task) int {
	return a.Deadline.Compare(*b.Deadline)
}

func compareDifficulty(a, b models.Task) int {
	return a.Difficulty.Rank() - b.Difficulty.Rank()
}

func compareCreatedAt(a, b models.Task) int {
	return a.CreatedAt.Compare(b.CreatedAt)
}
