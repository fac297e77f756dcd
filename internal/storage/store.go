package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB instance and provides helper methods for persisting
// board sessions. A nil Store is valid and turns every method into a no-op,
// so the server runs without a database unless one is configured.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// SessionUpdate represents a partial update to a session row.
type SessionUpdate struct {
	FEN         *string
	Orientation *string
	LastSeen    *time.Time
}

// CreateSession inserts a new session row.
func (s *Store) CreateSession(ctx context.Context, id uuid.UUID, fen, orientation string, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	sess := BoardSession{
		ID:          id,
		FEN:         fen,
		Orientation: orientation,
		LastSeen:    lastSeen,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&sess).Error
}

// SaveSession applies partial updates to the session row.
func (s *Store) SaveSession(ctx context.Context, id uuid.UUID, upd SessionUpdate) error {
	if s == nil {
		return nil
	}
	updates := make(map[string]any)
	if upd.FEN != nil {
		updates["fen"] = *upd.FEN
	}
	if upd.Orientation != nil {
		updates["orientation"] = *upd.Orientation
	}
	if upd.LastSeen != nil {
		updates["last_seen"] = *upd.LastSeen
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&BoardSession{}).Where("id = ?", id).Updates(updates).Error
}

// RecordPosition appends a position-history row for the given session.
func (s *Store) RecordPosition(ctx context.Context, id uuid.UUID, seq int, fen string) error {
	if s == nil {
		return nil
	}
	rec := PositionRecord{
		SessionID: id,
		Seq:       seq,
		FEN:       fen,
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// LoadSession fetches a persisted session and its history, newest first.
func (s *Store) LoadSession(ctx context.Context, id uuid.UUID) (*BoardSession, error) {
	if s == nil {
		return nil, gorm.ErrRecordNotFound
	}
	var sess BoardSession
	if err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("seq DESC").
		Find(&sess.History).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

// Stats represents aggregate counts for display on the home page.
type Stats struct {
	Sessions  int64 `json:"sessions"`
	Positions int64 `json:"positions"`
}

// FetchStats aggregates counts across all sessions.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&BoardSession{}).Count(&stats.Sessions).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&PositionRecord{}).Count(&stats.Positions).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// TouchSession updates the last seen timestamp for a session.
func (s *Store) TouchSession(ctx context.Context, id uuid.UUID, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	return s.SaveSession(ctx, id, SessionUpdate{LastSeen: &lastSeen})
}
