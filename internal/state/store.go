// Package state holds the client's copy of tasks and laps and mirrors
// every change to the backend.
package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adanyl0v/studyboard/internal/board"
	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
)

const tempIDPrefix = "tmp-"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrLapNotFound  = errors.New("lap not found")
	ErrEmptyTitle   = errors.New("task title is empty")
	ErrEmptyLap     = errors.New("lap has no duration")
)

// Backend is the remote side of the store. *client.Client implements it.
type Backend interface {
	ListTasks(ctx context.Context, q client.TaskQuery) ([]models.Task, error)
	CreateTask(ctx context.Context, task client.NewTask) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch client.TaskPatch) (*models.Task, error)
	SetTaskCompleted(ctx context.Context, id string, completed bool) (*models.Task, error)
	MoveTask(ctx context.Context, id string, workspaceID *string) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListLaps(ctx context.Context, q client.LapQuery) ([]models.Lap, error)
	CreateLap(ctx context.Context, lap client.NewLap) (*models.Lap, error)
	DeleteLap(ctx context.Context, id string) error
}

// Toast is the payload of a TopicToast event.
type Toast struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

type Options struct {
	// WorkspaceID scopes Reload. Empty loads every task and lap.
	WorkspaceID string
	Now         func() time.Time
}

// Store is safe for concurrent use. Selectors return copies.
type Store struct {
	logger    zerolog.Logger
	backend   Backend
	publisher events.Publisher
	workspace string
	now       func() time.Time

	mu    sync.RWMutex
	tasks []models.Task
	laps  []models.Lap
}

func New(logger zerolog.Logger, backend Backend, publisher events.Publisher, opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		logger:    logger,
		backend:   backend,
		publisher: publisher,
		workspace: opts.WorkspaceID,
		now:       now,
	}
}

// Reload replaces both collections with the backend's copy.
func (s *Store) Reload(ctx context.Context) error {
	var (
		tasks []models.Task
		laps  []models.Lap
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.backend.ListTasks(gctx, client.TaskQuery{WorkspaceID: s.workspace})
		return err
	})
	g.Go(func() error {
		var err error
		laps, err = s.backend.ListLaps(gctx, client.LapQuery{WorkspaceID: s.workspace})
		return err
	})
	err := g.Wait()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("workspace_id", s.workspace).
			Msg("failed to reload state")
		s.toast("reload", err)
		return err
	}

	s.mu.Lock()
	s.tasks = dedupe(tasks, func(t models.Task) string { return t.ID })
	s.laps = dedupe(laps, func(l models.Lap) string { return l.ID })
	s.mu.Unlock()

	s.logger.Debug().
		Int("tasks", len(tasks)).
		Int("laps", len(laps)).
		Msg("reloaded state")
	s.changed()
	return nil
}

// ReloadLaps refreshes the laps only. It follows the lap stream.
func (s *Store) ReloadLaps(ctx context.Context) error {
	laps, err := s.backend.ListLaps(ctx, client.LapQuery{WorkspaceID: s.workspace})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to reload laps")
		return err
	}

	s.mu.Lock()
	s.laps = dedupe(laps, func(l models.Lap) string { return l.ID })
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Laps() []models.Lap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.laps)
}

// Board groups the current tasks into columns.
func (s *Store) Board(prefs models.Preferences) []board.Column {
	return board.Columns(s.Tasks(), prefs)
}

// Stats summarizes the current laps for w.
func (s *Store) Stats(w stats.Window, now time.Time, goalMinutes int) stats.Summary {
	return stats.Summarize(s.Laps(), w, now, goalMinutes)
}

func (s *Store) changed() {
	s.publisher.Publish(events.Event{Topic: events.TopicStoreChanged})
}

func (s *Store) toast(action string, err error) {
	s.publisher.Publish(events.Event{
		Topic: events.TopicToast,
		Payload: Toast{
			Action:  action,
			Message: fmt.Sprintf("%s failed: %v", action, err),
		},
	})
}

func (s *Store) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

func (s *Store) lapIndex(id string) int {
	return slices.IndexFunc(s.laps, func(l models.Lap) bool { return l.ID == id })
}

func newTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTemp reports whether id was assigned locally and is not known to
// the backend yet.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// dedupe keeps the first record of every id.
func dedupe[T any](items []T, id func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
