package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/repo"
)

// NotificationFlags is the per-(group, user) notification state surfaced to
// the client: unseen chat activity plus whether a live session is running.
type NotificationFlags struct {
	HasNewMessages   bool `json:"has_new_messages"`
	HasActiveSession bool `json:"has_active_session"`
}

type NotificationService interface {
	Flags(ctx context.Context, groupID, userID uuid.UUID) (NotificationFlags, error)
	MarkRead(ctx context.Context, groupID, userID uuid.UUID) error
}

type notificationService struct {
	groups   repo.GroupRepo
	sessions repo.SessionRepo
	notifier *live.Notifier
}

func NewNotificationService(groups repo.GroupRepo, sessions repo.SessionRepo, notifier *live.Notifier) NotificationService {
	return &notificationService{groups: groups, sessions: sessions, notifier: notifier}
}

func (s *notificationService) Flags(ctx context.Context, groupID, userID uuid.UUID) (NotificationFlags, error) {
	ok, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return NotificationFlags{}, err
	}
	if !ok {
		return NotificationFlags{}, ErrNotMember
	}

	unread, err := s.notifier.HasUnread(ctx, groupID, userID)
	if err != nil {
		return NotificationFlags{}, err
	}

	active := true
	if _, err := s.sessions.GetActiveByGroup(ctx, groupID); err != nil {
		if !errors.Is(err, repo.ErrSessionNotFound) {
			return NotificationFlags{}, err
		}
		active = false
	}

	return NotificationFlags{HasNewMessages: unread, HasActiveSession: active}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, groupID, userID uuid.UUID) error {
	ok, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return s.notifier.Clear(ctx, groupID, userID)
}
