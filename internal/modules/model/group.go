package model

import (
	"time"

	"github.com/google/uuid"
)

// Group is a trip-planning group. CreatedBy is the owner for every
// owner-gated operation.
type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	JoinCode    string    `gorm:"not null;uniqueIndex" json:"join_code"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Group <-> GroupMember
	Members []GroupMember `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Group <-> Message
	Messages []Message `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Group) TableName() string { return "trip_groups" }

type GroupMember struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"user_id"`

	JoinedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"joined_at"`

	Group *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (GroupMember) TableName() string { return "group_members" }
