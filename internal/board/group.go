package board

import "github.com/adanyl0v/studyboard/internal/models"

// Groups maps an assignment label to the tasks in that column.
type Groups map[string][]models.Task

// Group partitions tasks by assignment label and sorts each bucket with
// the matching entry of cfg. Buckets without an entry keep input order.
// A task whose ID has already been placed is skipped, so the first
// occurrence wins.
func Group(tasks []models.Task, cfg map[string]models.SortConfig) Groups {
	groups := make(Groups)
	seen := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		if task.ID != "" {
			if _, dup := seen[task.ID]; dup {
				continue
			}
			seen[task.ID] = struct{}{}
		}

		label := task.AssignmentLabel()
		groups[label] = append(groups[label], task)
	}

	for label, bucket := range groups {
		if c, ok := cfg[label]; ok {
			groups[label] = Sort(bucket, c)
		}
	}
	return groups
}

// Len counts the tasks across all buckets.
func (g Groups) Len() int {
	n := 0
	for _, bucket := range g {
		n += len(bucket)
	}
	return n
}

// SplitByCompletion separates open tasks from completed ones,
// preserving the relative order within each half.
func SplitByCompletion(tasks []models.Task) (open, done []models.Task) {
	for _, task := range tasks {
		if task.Completed {
			done = append(done, task)
		} else {
			open = append(open, task)
		}
	}
	return open, done
}
