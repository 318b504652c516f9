package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashwath129/DayMap/internal/modules/model"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepo interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, groupID, messageID uuid.UUID) (*model.Message, error)
	ListByGroupWithCursor(ctx context.Context, groupID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.Message, error)
	ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) (added bool, err error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) GetByID(ctx context.Context, groupID, messageID uuid.UUID) (*model.Message, error) {
	var m model.Message
	err := r.db.WithContext(ctx).
		Preload("Reactions").
		Where("id = ? AND group_id = ?", messageID, groupID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: message_id=%s", ErrMessageNotFound, messageID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) ListByGroupWithCursor(ctx context.Context, groupID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.Message, error) {
	q := r.db.WithContext(ctx).Preload("Reactions").Where("group_id = ?", groupID)

	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		comparisonOp := ">"
		if timeDesc {
			comparisonOp = "<"
		}
		q = q.Where(
			"(created_at "+comparisonOp+" ?) OR (created_at = ? AND id "+comparisonOp+" ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	orderBy := "created_at ASC, id ASC"
	if timeDesc {
		orderBy = "created_at DESC, id DESC"
	}

	var items []model.Message
	return items, q.Order(orderBy).Limit(limit).Find(&items).Error
}

// ToggleReaction adds the reaction when absent and removes it when present,
// returning whether it ended up added.
func (r *messageRepo) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.MessageReaction
		err := tx.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
			First(&existing).Error
		switch {
		case err == nil:
			added = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			added = true
			return tx.Create(&model.MessageReaction{
				MessageID: messageID,
				UserID:    userID,
				Emoji:     emoji,
			}).Error
		default:
			return err
		}
	})
	return added, err
}
