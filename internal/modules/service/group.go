package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/modules/repo"
)

type GroupService interface {
	Create(ctx context.Context, in CreateGroupInput) (*model.Group, error)
	Get(ctx context.Context, groupID, userID uuid.UUID) (*model.Group, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error)
	Delete(ctx context.Context, groupID, userID uuid.UUID) error
	Join(ctx context.Context, groupID, userID uuid.UUID) error
	JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*model.Group, error)
	Leave(ctx context.Context, groupID, userID uuid.UUID) error
	ListMembers(ctx context.Context, groupID, userID uuid.UUID) ([]model.GroupMember, error)
	RoleFor(ctx context.Context, groupID, userID uuid.UUID) (live.Role, error)
}

type groupService struct {
	r   repo.GroupRepo
	log *zap.Logger
}

func NewGroupService(r repo.GroupRepo, log *zap.Logger) GroupService {
	return &groupService{r: r, log: log}
}

type CreateGroupInput struct {
	Name        string
	Description string
	CreatedBy   uuid.UUID
}

func (s *groupService) Create(ctx context.Context, in CreateGroupInput) (*model.Group, error) {
	g := &model.Group{
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
	}
	// Retry on the rare join-code collision.
	for attempt := 0; attempt < 3; attempt++ {
		code, err := newJoinCode()
		if err != nil {
			return nil, err
		}
		g.JoinCode = code
		err = s.r.Create(ctx, g)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("could not allocate a unique join code")
}

// newJoinCode returns an 8-character shareable code. The alphabet skips
// easily confused characters (0/O, 1/I).
func newJoinCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

func (s *groupService) Get(ctx context.Context, groupID, userID uuid.UUID) (*model.Group, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	g, err := s.r.Get(ctx, groupID)
	if errors.Is(err, repo.ErrGroupNotFound) {
		return nil, ErrGroupNotFound
	}
	return g, err
}

func (s *groupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	return s.r.ListForUser(ctx, userID)
}

// Delete is owner-gated.
func (s *groupService) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	role, err := s.RoleFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if err := live.RequireOwner(role); err != nil {
		return err
	}
	return s.r.Delete(ctx, groupID)
}

func (s *groupService) Join(ctx context.Context, groupID, userID uuid.UUID) error {
	if _, err := s.r.Get(ctx, groupID); err != nil {
		if errors.Is(err, repo.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	return s.r.AddMember(ctx, groupID, userID)
}

// JoinByCode enrolls the user into the group whose shareable code matches.
func (s *groupService) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*model.Group, error) {
	g, err := s.r.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if err := s.r.AddMember(ctx, g.ID, userID); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *groupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	g, err := s.r.Get(ctx, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if g.CreatedBy == userID {
		return fmt.Errorf("group owner cannot leave; delete the group instead")
	}
	return s.r.RemoveMember(ctx, groupID, userID)
}

func (s *groupService) ListMembers(ctx context.Context, groupID, userID uuid.UUID) ([]model.GroupMember, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.r.ListMembers(ctx, groupID)
}

// RoleFor resolves the user's role: owner when they created the group,
// viewer for any other member.
func (s *groupService) RoleFor(ctx context.Context, groupID, userID uuid.UUID) (live.Role, error) {
	g, err := s.r.Get(ctx, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrGroupNotFound) {
			return live.RoleViewer, ErrGroupNotFound
		}
		return live.RoleViewer, err
	}
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return live.RoleViewer, err
	}
	return live.RoleFor(g.CreatedBy, userID), nil
}

func (s *groupService) requireMember(ctx context.Context, groupID, userID uuid.UUID) error {
	ok, err := s.r.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}
