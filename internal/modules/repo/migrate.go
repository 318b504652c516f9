package repo

import (
	"gorm.io/gorm"

	"github.com/ashwath129/DayMap/internal/modules/model"
)

// AutoMigrate creates or updates the schema for every model, plus the
// partial unique index that limits each group to one active session.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Group{},
		&model.GroupMember{},
		&model.Message{},
		&model.MessageReaction{},
		&model.LiveSession{},
		&model.SessionParticipant{},
		&model.ItineraryChange{},
	); err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_session_per_group
		 ON live_itinerary_sessions (group_id) WHERE is_active`,
	).Error
}
