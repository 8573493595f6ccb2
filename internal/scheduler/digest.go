package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
)

const digestTimeout = 30 * time.Second

type DueTaskLister interface {
	GetDueTasks(ctx context.Context, until time.Time) ([]models.Task, error)
}

// Digest is the morning reminder of one user.
type Digest struct {
	UserID   string   `json:"user_id"`
	DueToday []string `json:"due_today"`
	Overdue  []string `json:"overdue"`
}

func (d Digest) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d due today, %d overdue", len(d.DueToday), len(d.Overdue))
	for _, title := range d.Overdue {
		fmt.Fprintf(&b, "\n! %s", title)
	}
	for _, title := range d.DueToday {
		fmt.Fprintf(&b, "\n- %s", title)
	}
	return b.String()
}

// BuildDigests groups open tasks with a deadline by user. Tasks due
// after today and completed tasks are ignored. Users come out sorted.
func BuildDigests(tasks []models.Task, now time.Time) []Digest {
	today := stats.Day(now)
	byUser := make(map[string]*Digest)
	for _, task := range tasks {
		if task.Completed || !task.HasDeadline() {
			continue
		}
		deadline := stats.Day(*task.Deadline)
		if deadline.After(today) {
			continue
		}

		d, ok := byUser[task.UserID]
		if !ok {
			d = &Digest{UserID: task.UserID, DueToday: []string{}, Overdue: []string{}}
			byUser[task.UserID] = d
		}
		if deadline.Equal(today) {
			d.DueToday = append(d.DueToday, task.Title)
		} else {
			d.Overdue = append(d.Overdue, task.Title)
		}
	}

	digests := make([]Digest, 0, len(byUser))
	for _, d := range byUser {
		digests = append(digests, *d)
	}
	slices.SortFunc(digests, func(a, b Digest) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	return digests
}

// DigestJob publishes a reminder.digest event per user with due work.
type DigestJob struct {
	logger    zerolog.Logger
	tasks     DueTaskLister
	publisher events.Publisher
	now       func() time.Time
}

func NewDigestJob(logger zerolog.Logger, tasks DueTaskLister, publisher events.Publisher) *DigestJob {
	return &DigestJob{
		logger:    logger,
		tasks:     tasks,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run is the cron entry point.
func (j *DigestJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	_, err := j.RunContext(ctx)
	if err != nil {
		j.logger.Error().
			Err(err).
			Msg("failed to send digests")
	}
}

// RunContext returns the number of digests published.
func (j *DigestJob) RunContext(ctx context.Context) (int, error) {
	now := j.now()
	tasks, err := j.tasks.GetDueTasks(ctx, stats.Day(now))
	if err != nil {
		return 0, fmt.Errorf("list due tasks: %w", err)
	}

	digests := BuildDigests(tasks, now)
	for _, d := range digests {
		j.publisher.Publish(events.Event{
			Topic:   events.TopicReminderDigest,
			UserID:  d.UserID,
			Payload: d,
		})
		j.logger.Info().
			Str("user_id", d.UserID).
			Int("due_today", len(d.DueToday)).
			Int("overdue", len(d.Overdue)).
			Msg("published digest")
	}
	return len(digests), nil
}
