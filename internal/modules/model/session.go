package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LiveSession is one live collaborative planning session for a group.
// ItineraryData holds the whole itinerary document as JSONB; the engine
// replaces it wholesale on every write. At most one active session per group,
// enforced by a partial unique index created in repo migration.
type LiveSession struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"group_id"`
	StartedBy     uuid.UUID      `gorm:"type:uuid;not null" json:"started_by"`
	ItineraryData datatypes.JSON `gorm:"type:jsonb" json:"itinerary_data"`
	IsActive      bool           `gorm:"not null;default:true;index" json:"is_active"`

	StartedAt time.Time  `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"started_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	EndedAt   *time.Time `json:"ended_at"`

	Group *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// LiveSession <-> SessionParticipant
	Participants []SessionParticipant `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// LiveSession <-> ItineraryChange
	Changes []ItineraryChange `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (LiveSession) TableName() string { return "live_itinerary_sessions" }

// SessionParticipant tracks presence. LastSeenAt is refreshed by heartbeat
// upserts; participants quieter than the heartbeat window count as gone.
type SessionParticipant struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LiveSessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_participant" json:"live_session_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_participant" json:"user_id"`
	DisplayName   string    `json:"display_name"`

	JoinedAt   time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
	LastSeenAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_seen_at"`

	LiveSession *LiveSession `gorm:"foreignKey:LiveSessionID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (SessionParticipant) TableName() string { return "session_participants" }

// Change types recorded in the audit log.
const (
	ChangeAddDay         = "add_day"
	ChangeRemoveDay      = "remove_day"
	ChangeUpdateDay      = "update_day"
	ChangeReorderDay     = "reorder_days"
	ChangeRemoveActivity = "remove_activity"
)

// ItineraryChange is one append-only audit record of a structural edit.
// Rows are written on every structural change and never read back by the
// engine; they exist for fan-out and offline inspection.
type ItineraryChange struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LiveSessionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"live_session_id"`
	GroupID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null" json:"user_id"`
	ChangeType    string         `gorm:"not null" json:"change_type"`
	ChangeData    datatypes.JSON `gorm:"type:jsonb" json:"change_data"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	LiveSession *LiveSession `gorm:"foreignKey:LiveSessionID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (ItineraryChange) TableName() string { return "itinerary_changes" }
