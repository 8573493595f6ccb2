package localstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/timer"
)

const (
	keyPreferences = "preferences:"
	keyTimer       = "timer"
	keyDraftPrompt = "draft_prompt"
	keyToken       = "token"
)

var ErrNotFound = errors.New("local state entry not found")

type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put stores v as JSON under key.
func (s *Store) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	entry := Entry{Key: key, Value: string(data), UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("key", key).
			Msg("failed to store entry")
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// Get decodes the entry under key into v. It returns ErrNotFound for
// a missing key.
func (s *Store) Get(ctx context.Context, key string, v any) error {
	var entry Entry
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(entry.Value), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("name = ?", key).Delete(&Entry{}).Error
}

// load is Get that treats a missing or corrupt entry as absent.
func (s *Store) load(ctx context.Context, key string, v any) bool {
	err := s.Get(ctx, key, v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotFound):
		return false
	default:
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("ignoring unreadable local state")
		return false
	}
}

// Preferences returns the board layout of the workspace, or defaults.
func (s *Store) Preferences(ctx context.Context, workspaceID string) models.Preferences {
	var prefs models.Preferences
	if !s.load(ctx, keyPreferences+workspaceID, &prefs) {
		return models.DefaultPreferences(workspaceID)
	}
	prefs.WorkspaceID = workspaceID
	return prefs.Normalize()
}

func (s *Store) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	return s.Put(ctx, keyPreferences+prefs.WorkspaceID, prefs.Normalize())
}

// Timer returns the saved timer, if any.
func (s *Store) Timer(ctx context.Context) (timer.Snapshot, bool) {
	var snap timer.Snapshot
	ok := s.load(ctx, keyTimer, &snap)
	return snap, ok
}

func (s *Store) SaveTimer(ctx context.Context, snap timer.Snapshot) error {
	return s.Put(ctx, keyTimer, snap)
}

func (s *Store) DraftPrompt(ctx context.Context) string {
	var prompt string
	s.load(ctx, keyDraftPrompt, &prompt)
	return prompt
}

// SaveDraftPrompt keeps an unsent AI prompt. An empty prompt clears it.
func (s *Store) SaveDraftPrompt(ctx context.Context, prompt string) error {
	if prompt == "" {
		return s.Delete(ctx, keyDraftPrompt)
	}
	return s.Put(ctx, keyDraftPrompt, prompt)
}

func (s *Store) Token(ctx context.Context) string {
	var token string
	s.load(ctx, keyToken, &token)
	return token
}

func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.Put(ctx, keyToken, token)
}
