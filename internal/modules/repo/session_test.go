package repo

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/pkg/itinerary"
)

// setupTestDB connects to the local test database, skipping the integration
// tests when it is not running.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "host=localhost user=daymap password=daymap dbname=daymap_test port=5432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Skip("Test database not available, skipping integration tests")
		return nil
	}
	require.NoError(t, AutoMigrate(db))
	return db
}

func cleanupGroup(t *testing.T, db *gorm.DB, groupID uuid.UUID) {
	db.Exec("DELETE FROM itinerary_changes WHERE group_id = ?", groupID)
	db.Exec("DELETE FROM session_participants WHERE live_session_id IN (SELECT id FROM live_itinerary_sessions WHERE group_id = ?)", groupID)
	db.Exec("DELETE FROM live_itinerary_sessions WHERE group_id = ?", groupID)
	db.Exec("DELETE FROM trip_messages WHERE group_id = ?", groupID)
	db.Exec("DELETE FROM group_members WHERE group_id = ?", groupID)
	db.Exec("DELETE FROM trip_groups WHERE id = ?", groupID)
}

func createTestGroup(t *testing.T, db *gorm.DB) (*model.Group, uuid.UUID) {
	t.Helper()
	owner := uuid.New()
	g := &model.Group{ID: uuid.New(), Name: "test trip", CreatedBy: owner, JoinCode: uuid.NewString()[:8]}
	require.NoError(t, db.Create(g).Error)
	t.Cleanup(func() { cleanupGroup(t, db, g.ID) })
	return g, owner
}

func documentJSON(t *testing.T, doc itinerary.Document) datatypes.JSON {
	t.Helper()
	b, err := sonic.Marshal(doc)
	require.NoError(t, err)
	return datatypes.JSON(b)
}

func TestSessionRepo_OneActiveSessionPerGroup(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	repo := NewSessionRepo(db)
	ctx := context.Background()
	g, owner := createTestGroup(t, db)

	first := &model.LiveSession{GroupID: g.ID, StartedBy: owner, ItineraryData: documentJSON(t, itinerary.NewDocument(1))}
	require.NoError(t, repo.CreateActive(ctx, first))

	second := &model.LiveSession{GroupID: g.ID, StartedBy: owner, ItineraryData: documentJSON(t, itinerary.NewDocument(1))}
	err := repo.CreateActive(ctx, second)
	assert.ErrorIs(t, err, ErrActiveSessionExists)

	// After ending the first, a new active session is allowed.
	require.NoError(t, repo.End(ctx, first.ID))
	third := &model.LiveSession{GroupID: g.ID, StartedBy: owner, ItineraryData: documentJSON(t, itinerary.NewDocument(1))}
	require.NoError(t, repo.CreateActive(ctx, third))
}

func TestSessionRepo_ReplaceDocument(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	repo := NewSessionRepo(db)
	ctx := context.Background()
	g, owner := createTestGroup(t, db)

	session := &model.LiveSession{GroupID: g.ID, StartedBy: owner, ItineraryData: documentJSON(t, itinerary.NewDocument(1))}
	require.NoError(t, repo.CreateActive(ctx, session))

	next := itinerary.NewDocument(3)
	require.NoError(t, repo.ReplaceDocument(ctx, session.ID, documentJSON(t, next)))

	got, err := repo.GetActiveByGroup(ctx, g.ID)
	require.NoError(t, err)
	var stored itinerary.Document
	require.NoError(t, sonic.Unmarshal(got.ItineraryData, &stored))
	assert.True(t, next.Equal(stored))

	// Writes against an ended session are rejected.
	require.NoError(t, repo.End(ctx, session.ID))
	err = repo.ReplaceDocument(ctx, session.ID, documentJSON(t, next))
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestSessionRepo_GetActiveByGroupNotFound(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	repo := NewSessionRepo(db)

	_, err := repo.GetActiveByGroup(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepo_ParticipantHeartbeat(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	repo := NewSessionRepo(db)
	ctx := context.Background()
	g, owner := createTestGroup(t, db)

	session := &model.LiveSession{GroupID: g.ID, StartedBy: owner, ItineraryData: documentJSON(t, itinerary.NewDocument(1))}
	require.NoError(t, repo.CreateActive(ctx, session))

	user := uuid.New()
	require.NoError(t, repo.UpsertParticipant(ctx, &model.SessionParticipant{
		LiveSessionID: session.ID, UserID: user, DisplayName: "Sam",
	}))
	// Second upsert refreshes rather than duplicating.
	require.NoError(t, repo.UpsertParticipant(ctx, &model.SessionParticipant{
		LiveSessionID: session.ID, UserID: user, DisplayName: "Sam",
	}))

	seen, err := repo.ListParticipantsSeenSince(ctx, session.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, user, seen[0].UserID)

	// Participants quieter than the window drop out of the roster.
	seen, err = repo.ListParticipantsSeenSince(ctx, session.ID, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, seen)

	require.NoError(t, repo.RemoveParticipant(ctx, session.ID, user))
	assert.ErrorIs(t, repo.RemoveParticipant(ctx, session.ID, user), ErrParticipantNotFound)
}

func TestSessionRepo_DeleteParticipantsBySession(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	repo := NewSessionRepo(db)
	ctx := context.Background()
	g, owner := createTestGroup(t, db)

	session := &model.LiveSession{GroupID: g.ID, StartedBy: owner, ItineraryData: documentJSON(t, itinerary.NewDocument(1))}
	require.NoError(t, repo.CreateActive(ctx, session))

	for _, name := range []string{"Sam", "Alex", "Nina"} {
		require.NoError(t, repo.UpsertParticipant(ctx, &model.SessionParticipant{
			LiveSessionID: session.ID, UserID: uuid.New(), DisplayName: name,
		}))
	}

	// Ending only flags the session row, so the roster must be cleared
	// explicitly.
	require.NoError(t, repo.End(ctx, session.ID))
	require.NoError(t, repo.DeleteParticipantsBySession(ctx, session.ID))

	seen, err := repo.ListParticipantsSeenSince(ctx, session.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestSessionRepo_AppendChange(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	repo := NewSessionRepo(db)
	ctx := context.Background()
	g, owner := createTestGroup(t, db)

	session := &model.LiveSession{GroupID: g.ID, StartedBy: owner, ItineraryData: documentJSON(t, itinerary.NewDocument(1))}
	require.NoError(t, repo.CreateActive(ctx, session))

	change := &model.ItineraryChange{
		LiveSessionID: session.ID,
		GroupID:       g.ID,
		UserID:        owner,
		ChangeType:    model.ChangeAddDay,
		ChangeData:    datatypes.JSON(`{"day_id":"abc"}`),
	}
	require.NoError(t, repo.AppendChange(ctx, change))
	assert.NotEqual(t, uuid.Nil, change.ID)

	var count int64
	require.NoError(t, db.Model(&model.ItineraryChange{}).Where("live_session_id = ?", session.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGroupRepo_MembershipLifecycle(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	groups := NewGroupRepo(db)
	ctx := context.Background()

	owner := uuid.New()
	g := &model.Group{Name: "weekend", CreatedBy: owner, JoinCode: uuid.NewString()[:8]}
	require.NoError(t, groups.Create(ctx, g))
	t.Cleanup(func() { cleanupGroup(t, db, g.ID) })

	// The creator is enrolled automatically.
	ok, err := groups.IsMember(ctx, g.ID, owner)
	require.NoError(t, err)
	assert.True(t, ok)

	friend := uuid.New()
	require.NoError(t, groups.AddMember(ctx, g.ID, friend))
	require.NoError(t, groups.AddMember(ctx, g.ID, friend)) // idempotent

	members, err := groups.ListMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	listed, err := groups.ListForUser(ctx, friend)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, g.ID, listed[0].ID)

	require.NoError(t, groups.RemoveMember(ctx, g.ID, friend))
	assert.ErrorIs(t, groups.RemoveMember(ctx, g.ID, friend), ErrNotGroupMember)
}

func TestMessageRepo_ToggleReaction(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	messages := NewMessageRepo(db)
	ctx := context.Background()
	g, owner := createTestGroup(t, db)

	msg := &model.Message{GroupID: g.ID, UserID: &owner, SenderName: "Ash", Content: "vote 🎉"}
	require.NoError(t, messages.Create(ctx, msg))

	added, err := messages.ToggleReaction(ctx, msg.ID, owner, "🎉")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = messages.ToggleReaction(ctx, msg.ID, owner, "🎉")
	require.NoError(t, err)
	assert.False(t, added)

	got, err := messages.GetByID(ctx, g.ID, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Reactions)
}
