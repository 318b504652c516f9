package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashwath129/DayMap/internal/modules/model"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotGroupMember = errors.New("user is not a group member")
)

type GroupRepo interface {
	Create(ctx context.Context, g *model.Group) error
	Get(ctx context.Context, groupID uuid.UUID) (*model.Group, error)
	GetByJoinCode(ctx context.Context, code string) (*model.Group, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error)
	Delete(ctx context.Context, groupID uuid.UUID) error

	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.GroupMember, error)
}

type groupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) GroupRepo {
	return &groupRepo{db: db}
}

// Create inserts the group and enrolls the creator as its first member.
func (r *groupRepo) Create(ctx context.Context, g *model.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		member := model.GroupMember{GroupID: g.ID, UserID: g.CreatedBy}
		return tx.Create(&member).Error
	})
}

func (r *groupRepo) Get(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).Where("id = ?", groupID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: group_id=%s", ErrGroupNotFound, groupID)
	}
	return &g, err
}

func (r *groupRepo) GetByJoinCode(ctx context.Context, code string) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: join_code=%s", ErrGroupNotFound, code)
	}
	return &g, err
}

func (r *groupRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = trip_groups.id").
		Where("group_members.user_id = ?", userID).
		Order("trip_groups.created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) Delete(ctx context.Context, groupID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", groupID).Delete(&model.Group{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: group_id=%s", ErrGroupNotFound, groupID)
	}
	return nil
}

func (r *groupRepo) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	member := model.GroupMember{GroupID: groupID, UserID: userID}
	err := r.db.WithContext(ctx).Create(&member).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Joining twice is fine.
		return nil
	}
	return err
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotGroupMember
	}
	return nil
}

func (r *groupRepo) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *groupRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
