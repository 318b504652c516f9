package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwath129/DayMap/internal/modules/model"
)

var (
	ErrSessionNotFound     = errors.New("live session not found")
	ErrSessionEnded        = errors.New("live session already ended")
	ErrActiveSessionExists = errors.New("group already has an active session")
	ErrParticipantNotFound = errors.New("session participant not found")
)

// SessionRepo is the store adapter for live sessions: the session row, its
// participants, and the append-only change log.
type SessionRepo interface {
	CreateActive(ctx context.Context, s *model.LiveSession) error
	Get(ctx context.Context, sessionID uuid.UUID) (*model.LiveSession, error)
	GetActiveByGroup(ctx context.Context, groupID uuid.UUID) (*model.LiveSession, error)
	ReplaceDocument(ctx context.Context, sessionID uuid.UUID, data datatypes.JSON) error
	End(ctx context.Context, sessionID uuid.UUID) error

	UpsertParticipant(ctx context.Context, p *model.SessionParticipant) error
	RemoveParticipant(ctx context.Context, sessionID, userID uuid.UUID) error
	DeleteParticipantsBySession(ctx context.Context, sessionID uuid.UUID) error
	ListParticipantsSeenSince(ctx context.Context, sessionID uuid.UUID, since time.Time) ([]model.SessionParticipant, error)

	AppendChange(ctx context.Context, c *model.ItineraryChange) error
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return &sessionRepo{db: db}
}

// CreateActive inserts a new active session. The partial unique index on
// (group_id) WHERE is_active backs the one-active-session rule; a duplicate
// insert surfaces as ErrActiveSessionExists.
func (r *sessionRepo) CreateActive(ctx context.Context, s *model.LiveSession) error {
	s.IsActive = true
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: group_id=%s", ErrActiveSessionExists, s.GroupID)
	}
	return err
}

func (r *sessionRepo) Get(ctx context.Context, sessionID uuid.UUID) (*model.LiveSession, error) {
	var s model.LiveSession
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: session_id=%s", ErrSessionNotFound, sessionID)
	}
	return &s, err
}

func (r *sessionRepo) GetActiveByGroup(ctx context.Context, groupID uuid.UUID) (*model.LiveSession, error) {
	var s model.LiveSession
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND is_active = true", groupID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: group_id=%s", ErrSessionNotFound, groupID)
	}
	return &s, err
}

// ReplaceDocument overwrites itinerary_data wholesale. Last write wins; no
// merging happens at this layer.
func (r *sessionRepo) ReplaceDocument(ctx context.Context, sessionID uuid.UUID, data datatypes.JSON) error {
	res := r.db.WithContext(ctx).Model(&model.LiveSession{}).
		Where("id = ? AND is_active = true", sessionID).
		Updates(map[string]any{
			"itinerary_data": data,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: session_id=%s", ErrSessionEnded, sessionID)
	}
	return nil
}

func (r *sessionRepo) End(ctx context.Context, sessionID uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.LiveSession{}).
		Where("id = ? AND is_active = true", sessionID).
		Updates(map[string]any{
			"is_active": false,
			"ended_at":  &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: session_id=%s", ErrSessionEnded, sessionID)
	}
	return nil
}

// UpsertParticipant inserts the participant or, when already present,
// refreshes last_seen_at. Used by both join and heartbeat.
func (r *sessionRepo) UpsertParticipant(ctx context.Context, p *model.SessionParticipant) error {
	p.LastSeenAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "live_session_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at", "display_name"}),
	}).Create(p).Error
}

func (r *sessionRepo) RemoveParticipant(ctx context.Context, sessionID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("live_session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&model.SessionParticipant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// DeleteParticipantsBySession clears the whole roster. Called when the
// session ends; the session row itself is only flagged inactive, so no
// cascade fires.
func (r *sessionRepo) DeleteParticipantsBySession(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("live_session_id = ?", sessionID).
		Delete(&model.SessionParticipant{}).Error
}

func (r *sessionRepo) ListParticipantsSeenSince(ctx context.Context, sessionID uuid.UUID, since time.Time) ([]model.SessionParticipant, error) {
	var out []model.SessionParticipant
	err := r.db.WithContext(ctx).
		Where("live_session_id = ? AND last_seen_at >= ?", sessionID, since).
		Order("joined_at ASC").
		Find(&out).Error
	return out, err
}

// AppendChange writes one audit record. Rows are never updated or deleted.
func (r *sessionRepo) AppendChange(ctx context.Context, c *model.ItineraryChange) error {
	return r.db.WithContext(ctx).Create(c).Error
}
