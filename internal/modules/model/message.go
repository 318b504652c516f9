package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a group chat message. AI replies and system notifications share
// the table, flagged by IsAI and IsNotification.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID         *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SenderName     string     `gorm:"not null" json:"sender_name"`
	Content        string     `gorm:"not null" json:"content"`
	IsAI           bool       `gorm:"not null;default:false" json:"is_ai"`
	IsNotification bool       `gorm:"not null;default:false" json:"is_notification"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`

	Group *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Message <-> MessageReaction
	Reactions []MessageReaction `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"reactions,omitempty"`
}

func (Message) TableName() string { return "trip_messages" }

// MessageReaction is one user's emoji on one message. The unique index makes
// reacting idempotent per (message, user, emoji); a second tap toggles it off.
type MessageReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_message_reaction" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_message_reaction" json:"user_id"`
	Emoji     string    `gorm:"not null;uniqueIndex:idx_message_reaction" json:"emoji"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Message *Message `gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (MessageReaction) TableName() string { return "message_reactions" }
