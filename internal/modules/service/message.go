package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/infra/feed"
	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/modules/repo"
)

type MessageService interface {
	Send(ctx context.Context, in SendMessageInput) (*model.Message, error)
	List(ctx context.Context, in ListMessagesInput) ([]model.Message, error)
	ToggleReaction(ctx context.Context, in ToggleReactionInput) (added bool, err error)
}

type messageService struct {
	messages repo.MessageRepo
	groups   repo.GroupRepo
	feed     feed.Feed
	notifier *live.Notifier
	log      *zap.Logger
}

func NewMessageService(messages repo.MessageRepo, groups repo.GroupRepo, fd feed.Feed, notifier *live.Notifier, log *zap.Logger) MessageService {
	return &messageService{
		messages: messages,
		groups:   groups,
		feed:     fd,
		notifier: notifier,
		log:      log,
	}
}

type SendMessageInput struct {
	GroupID        uuid.UUID
	UserID         uuid.UUID
	SenderName     string
	Content        string
	IsAI           bool
	IsNotification bool
}

func (s *messageService) Send(ctx context.Context, in SendMessageInput) (*model.Message, error) {
	ok, err := s.groups.IsMember(ctx, in.GroupID, in.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotMember
	}

	msg := &model.Message{
		GroupID:        in.GroupID,
		UserID:         &in.UserID,
		SenderName:     in.SenderName,
		Content:        in.Content,
		IsAI:           in.IsAI,
		IsNotification: in.IsNotification,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.fanOut(ctx, in.GroupID, in.UserID, msg)
	return msg, nil
}

// fanOut announces the message on the change feed and flags unread state for
// the other members. Both are best-effort.
func (s *messageService) fanOut(ctx context.Context, groupID, actor uuid.UUID, msg *model.Message) {
	if err := s.feed.Publish(ctx, feed.Event{
		GroupID: groupID.String(),
		Kind:    feed.KindMessage,
	}); err != nil {
		s.log.Warn("message feed publish failed", zap.Error(err))
	}

	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		s.log.Warn("list members for unread flags failed", zap.Error(err))
		return
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	if err := s.notifier.MarkUnread(ctx, groupID, ids, actor); err != nil {
		s.log.Warn("mark unread failed", zap.Error(err))
	}
}

type ListMessagesInput struct {
	GroupID        uuid.UUID
	UserID         uuid.UUID
	AfterCreatedAt time.Time
	AfterID        uuid.UUID
	Limit          int
	TimeDesc       bool
}

func (s *messageService) List(ctx context.Context, in ListMessagesInput) ([]model.Message, error) {
	ok, err := s.groups.IsMember(ctx, in.GroupID, in.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotMember
	}
	if in.Limit <= 0 || in.Limit > 200 {
		in.Limit = 50
	}
	return s.messages.ListByGroupWithCursor(ctx, in.GroupID, in.AfterCreatedAt, in.AfterID, in.Limit, in.TimeDesc)
}

type ToggleReactionInput struct {
	GroupID   uuid.UUID
	MessageID uuid.UUID
	UserID    uuid.UUID
	Emoji     string
}

func (s *messageService) ToggleReaction(ctx context.Context, in ToggleReactionInput) (bool, error) {
	ok, err := s.groups.IsMember(ctx, in.GroupID, in.UserID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotMember
	}
	if _, err := s.messages.GetByID(ctx, in.GroupID, in.MessageID); err != nil {
		return false, err
	}

	added, err := s.messages.ToggleReaction(ctx, in.MessageID, in.UserID, in.Emoji)
	if err != nil {
		return false, err
	}

	if err := s.feed.Publish(ctx, feed.Event{
		GroupID: in.GroupID.String(),
		Kind:    feed.KindReaction,
	}); err != nil {
		s.log.Warn("reaction feed publish failed", zap.Error(err))
	}
	return added, nil
}
