package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/modules/repo"
)

type notificationFixture struct {
	groups   *MockGroupRepo
	sessions *MockSessionRepo
	notifier *live.Notifier
	svc      NotificationService
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &notificationFixture{
		groups:   &MockGroupRepo{},
		sessions: &MockSessionRepo{},
		notifier: live.NewNotifier(rdb),
	}
	f.svc = NewNotificationService(f.groups, f.sessions, f.notifier)
	return f
}

func TestNotificationService_Flags(t *testing.T) {
	ctx := context.Background()
	groupID, userID := uuid.New(), uuid.New()

	t.Run("unread message and active session", func(t *testing.T) {
		f := newNotificationFixture(t)
		f.groups.On("IsMember", ctx, groupID, userID).Return(true, nil)
		f.sessions.On("GetActiveByGroup", ctx, groupID).
			Return(&model.LiveSession{ID: uuid.New(), GroupID: groupID, IsActive: true}, nil)
		require.NoError(t, f.notifier.MarkUnread(ctx, groupID, []uuid.UUID{userID}, uuid.New()))

		flags, err := f.svc.Flags(ctx, groupID, userID)

		require.NoError(t, err)
		assert.True(t, flags.HasNewMessages)
		assert.True(t, flags.HasActiveSession)
	})

	t.Run("quiet group", func(t *testing.T) {
		f := newNotificationFixture(t)
		f.groups.On("IsMember", ctx, groupID, userID).Return(true, nil)
		f.sessions.On("GetActiveByGroup", ctx, groupID).Return(nil, repo.ErrSessionNotFound)

		flags, err := f.svc.Flags(ctx, groupID, userID)

		require.NoError(t, err)
		assert.False(t, flags.HasNewMessages)
		assert.False(t, flags.HasActiveSession)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		f := newNotificationFixture(t)
		f.groups.On("IsMember", ctx, groupID, userID).Return(false, nil)

		_, err := f.svc.Flags(ctx, groupID, userID)

		assert.ErrorIs(t, err, ErrNotMember)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()
	groupID, userID := uuid.New(), uuid.New()

	f := newNotificationFixture(t)
	f.groups.On("IsMember", ctx, groupID, userID).Return(true, nil)
	require.NoError(t, f.notifier.MarkUnread(ctx, groupID, []uuid.UUID{userID}, uuid.New()))

	require.NoError(t, f.svc.MarkRead(ctx, groupID, userID))

	unread, err := f.notifier.HasUnread(ctx, groupID, userID)
	require.NoError(t, err)
	assert.False(t, unread)
}
