package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/ashwath129/DayMap/internal/config"
	"github.com/ashwath129/DayMap/internal/infra/feed"
	mq "github.com/ashwath129/DayMap/internal/infra/queue"
	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/modules/repo"
	"github.com/ashwath129/DayMap/internal/pkg/itinerary"
)

// SessionState is the session row plus its decoded document.
type SessionState struct {
	Session  *model.LiveSession
	Document itinerary.Document
}

type LiveSessionService interface {
	Start(ctx context.Context, groupID, userID uuid.UUID, displayName string) (*SessionState, error)
	End(ctx context.Context, groupID, userID uuid.UUID) error
	GetActive(ctx context.Context, groupID, userID uuid.UUID) (*SessionState, error)

	Heartbeat(ctx context.Context, groupID, userID uuid.UUID, displayName string) error
	Leave(ctx context.Context, groupID, userID uuid.UUID) error
	Participants(ctx context.Context, groupID, userID uuid.UUID) ([]model.SessionParticipant, error)

	SetField(ctx context.Context, groupID, userID uuid.UUID, dayID, field, value string) error
	SetMeal(ctx context.Context, groupID, userID uuid.UUID, dayID, meal, value string) error
	SetActivity(ctx context.Context, groupID, userID uuid.UUID, dayID string, idx int, value string) error
	AppendActivity(ctx context.Context, groupID, userID uuid.UUID, dayID, value string) error
	RemoveActivity(ctx context.Context, groupID, userID uuid.UUID, dayID string, idx int) error

	AddDay(ctx context.Context, groupID, userID uuid.UUID) (string, error)
	RemoveDay(ctx context.Context, groupID, userID uuid.UUID, dayID string) error
	ReorderDays(ctx context.Context, groupID, userID uuid.UUID, from, to int) error
	ReplaceDocument(ctx context.Context, groupID, userID uuid.UUID, doc itinerary.Document) error

	Shutdown(ctx context.Context)
}

type engineEntry struct {
	engine *live.Engine
	cancel context.CancelFunc
}

type liveSessionService struct {
	sessions repo.SessionRepo
	groups   GroupService
	messages MessageService
	fd       feed.Feed
	pub      *mq.Publisher
	cfg      *config.Config
	log      *zap.Logger

	mu      sync.Mutex
	engines map[string]*engineEntry // keyed by sessionID:userID
}

func NewLiveSessionService(sessions repo.SessionRepo, groups GroupService, messages MessageService, fd feed.Feed, pub *mq.Publisher, cfg *config.Config, log *zap.Logger) LiveSessionService {
	return &liveSessionService{
		sessions: sessions,
		groups:   groups,
		messages: messages,
		fd:       fd,
		pub:      pub,
		cfg:      cfg,
		log:      log,
		engines:  make(map[string]*engineEntry),
	}
}

func (s *liveSessionService) Start(ctx context.Context, groupID, userID uuid.UUID, displayName string) (*SessionState, error) {
	role, err := s.groups.RoleFor(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if err := live.RequireOwner(role); err != nil {
		return nil, err
	}

	doc := itinerary.NewDocument(1)
	data, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", live.ErrSessionCreate, err)
	}

	session := &model.LiveSession{
		GroupID:       groupID,
		StartedBy:     userID,
		ItineraryData: datatypes.JSON(data),
	}
	if err := s.sessions.CreateActive(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %w", live.ErrSessionCreate, err)
	}

	if err := s.sessions.UpsertParticipant(ctx, &model.SessionParticipant{
		LiveSessionID: session.ID,
		UserID:        userID,
		DisplayName:   displayName,
	}); err != nil {
		s.log.Warn("join participant on start failed", zap.Error(err))
	}

	s.announce(ctx, groupID, feed.KindSession, session.ID)
	s.systemNote(ctx, groupID, userID, displayName, "started a live planning session")

	return &SessionState{Session: session, Document: doc}, nil
}

func (s *liveSessionService) End(ctx context.Context, groupID, userID uuid.UUID) error {
	role, err := s.groups.RoleFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if err := live.RequireOwner(role); err != nil {
		return err
	}

	session, err := s.sessions.GetActiveByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("%w: %w", live.ErrSessionEnd, err)
	}

	// Flush every participant's pending edits before the session closes.
	s.closeEnginesForSession(ctx, session.ID)

	if err := s.sessions.End(ctx, session.ID); err != nil {
		return fmt.Errorf("%w: %w", live.ErrSessionEnd, err)
	}

	// The session row stays for history; its roster does not.
	if err := s.sessions.DeleteParticipantsBySession(ctx, session.ID); err != nil {
		s.log.Warn("participant cleanup on end failed",
			zap.String("session_id", session.ID.String()), zap.Error(err))
	}

	s.announce(ctx, groupID, feed.KindSession, session.ID)
	s.systemNote(ctx, groupID, userID, "", "ended the live planning session")
	return nil
}

func (s *liveSessionService) GetActive(ctx context.Context, groupID, userID uuid.UUID) (*SessionState, error) {
	if _, err := s.groups.RoleFor(ctx, groupID, userID); err != nil {
		return nil, err
	}
	session, err := s.sessions.GetActiveByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("%w: %w", live.ErrSyncFetch, err)
	}
	doc, err := decodeDocument(session.ItineraryData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", live.ErrSyncFetch, err)
	}
	return &SessionState{Session: session, Document: doc}, nil
}

func (s *liveSessionService) Heartbeat(ctx context.Context, groupID, userID uuid.UUID, displayName string) error {
	session, err := s.activeSession(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if err := s.sessions.UpsertParticipant(ctx, &model.SessionParticipant{
		LiveSessionID: session.ID,
		UserID:        userID,
		DisplayName:   displayName,
	}); err != nil {
		return err
	}
	s.announce(ctx, groupID, feed.KindParticipants, session.ID)
	return nil
}

func (s *liveSessionService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	session, err := s.activeSession(ctx, groupID, userID)
	if err != nil {
		return err
	}

	// Flush and drop this user's engine; their unsent edits should land
	// before they disappear from the roster.
	s.mu.Lock()
	entry := s.engines[engineKey(session.ID, userID)]
	delete(s.engines, engineKey(session.ID, userID))
	s.mu.Unlock()
	if entry != nil {
		entry.cancel()
		if err := entry.engine.Close(ctx); err != nil {
			s.log.Warn("flush on leave failed", zap.Error(err))
		}
	}

	if err := s.sessions.RemoveParticipant(ctx, session.ID, userID); err != nil &&
		!errors.Is(err, repo.ErrParticipantNotFound) {
		return err
	}
	s.announce(ctx, groupID, feed.KindParticipants, session.ID)
	return nil
}

func (s *liveSessionService) Participants(ctx context.Context, groupID, userID uuid.UUID) ([]model.SessionParticipant, error) {
	session, err := s.activeSession(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	since := time.Now().Add(-s.cfg.Live.HeartbeatInterval)
	return s.sessions.ListParticipantsSeenSince(ctx, session.ID, since)
}

func (s *liveSessionService) SetField(ctx context.Context, groupID, userID uuid.UUID, dayID, field, value string) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.SetField(dayID, field, value)
}

func (s *liveSessionService) SetMeal(ctx context.Context, groupID, userID uuid.UUID, dayID, meal, value string) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.SetMeal(dayID, meal, value)
}

func (s *liveSessionService) SetActivity(ctx context.Context, groupID, userID uuid.UUID, dayID string, idx int, value string) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.SetActivity(dayID, idx, value)
}

func (s *liveSessionService) AppendActivity(ctx context.Context, groupID, userID uuid.UUID, dayID, value string) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.AppendActivity(dayID, value)
}

func (s *liveSessionService) RemoveActivity(ctx context.Context, groupID, userID uuid.UUID, dayID string, idx int) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.RemoveActivity(ctx, dayID, idx)
}

func (s *liveSessionService) AddDay(ctx context.Context, groupID, userID uuid.UUID) (string, error) {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return "", err
	}
	return e.AddDay(ctx)
}

func (s *liveSessionService) RemoveDay(ctx context.Context, groupID, userID uuid.UUID, dayID string) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.RemoveDay(ctx, dayID)
}

func (s *liveSessionService) ReorderDays(ctx context.Context, groupID, userID uuid.UUID, from, to int) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.Reorder(ctx, from, to)
}

func (s *liveSessionService) ReplaceDocument(ctx context.Context, groupID, userID uuid.UUID, doc itinerary.Document) error {
	e, err := s.engineFor(ctx, groupID, userID)
	if err != nil {
		return err
	}
	return e.ReplaceAll(ctx, doc)
}

// Shutdown flushes and closes every engine. Called on server stop.
func (s *liveSessionService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	entries := make([]*engineEntry, 0, len(s.engines))
	for _, e := range s.engines {
		entries = append(entries, e)
	}
	s.engines = make(map[string]*engineEntry)
	s.mu.Unlock()

	// Each close may block on a pending flush; drain them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		g.Go(func() error {
			entry.cancel()
			if err := entry.engine.Close(gctx); err != nil {
				s.log.Warn("flush on shutdown failed", zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func engineKey(sessionID, userID uuid.UUID) string {
	return sessionID.String() + ":" + userID.String()
}

func (s *liveSessionService) activeSession(ctx context.Context, groupID, userID uuid.UUID) (*model.LiveSession, error) {
	if _, err := s.groups.RoleFor(ctx, groupID, userID); err != nil {
		return nil, err
	}
	session, err := s.sessions.GetActiveByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	return session, nil
}

// engineFor returns the user's engine for the group's active session,
// creating and seeding it on first touch. Only the owner gets an engine:
// members follow the session read-only, so a non-owner is rejected here
// before any mutation can reach the store.
func (s *liveSessionService) engineFor(ctx context.Context, groupID, userID uuid.UUID) (*live.Engine, error) {
	role, err := s.groups.RoleFor(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if err := live.RequireOwner(role); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetActiveByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}

	key := engineKey(session.ID, userID)
	s.mu.Lock()
	if entry, ok := s.engines[key]; ok {
		s.mu.Unlock()
		return entry.engine, nil
	}
	s.mu.Unlock()

	doc, err := decodeDocument(session.ItineraryData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", live.ErrSyncFetch, err)
	}

	store := &sessionStore{
		sessions:  s.sessions,
		fd:        s.fd,
		pub:       s.pub,
		cfg:       s.cfg,
		log:       s.log,
		sessionID: session.ID,
		groupID:   groupID,
		userID:    userID,
	}

	engine := live.New(live.Config{
		GroupID:        groupID.String(),
		Role:           role,
		DebounceWindow: s.cfg.Live.DebounceWindow,
		PollInterval:   s.cfg.Live.PollInterval,
	}, store, s.fd, s.log)
	engine.Seed(doc)

	runCtx, cancel := context.WithCancel(context.Background())
	entry := &engineEntry{engine: engine, cancel: cancel}

	s.mu.Lock()
	if existing, ok := s.engines[key]; ok {
		// Lost the race; keep the winner.
		s.mu.Unlock()
		cancel()
		return existing.engine, nil
	}
	s.engines[key] = entry
	s.mu.Unlock()

	go func() {
		if err := engine.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("engine loop exited", zap.String("key", key), zap.Error(err))
		}
	}()
	return engine, nil
}

func (s *liveSessionService) closeEnginesForSession(ctx context.Context, sessionID uuid.UUID) {
	prefix := sessionID.String() + ":"
	s.mu.Lock()
	var entries []*engineEntry
	for key, entry := range s.engines {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			entries = append(entries, entry)
			delete(s.engines, key)
		}
	}
	s.mu.Unlock()

	for _, entry := range entries {
		entry.cancel()
		if err := entry.engine.Close(ctx); err != nil {
			s.log.Warn("flush on session end failed", zap.Error(err))
		}
	}
}

func (s *liveSessionService) announce(ctx context.Context, groupID uuid.UUID, kind string, sessionID uuid.UUID) {
	if err := s.fd.Publish(ctx, feed.Event{
		GroupID:   groupID.String(),
		Kind:      kind,
		SessionID: sessionID.String(),
	}); err != nil {
		s.log.Warn("session feed publish failed", zap.Error(err))
	}
}

func (s *liveSessionService) systemNote(ctx context.Context, groupID, userID uuid.UUID, displayName, action string) {
	name := displayName
	if name == "" {
		name = "The owner"
	}
	if _, err := s.messages.Send(ctx, SendMessageInput{
		GroupID:        groupID,
		UserID:         userID,
		SenderName:     name,
		Content:        fmt.Sprintf("%s %s", name, action),
		IsNotification: true,
	}); err != nil {
		s.log.Warn("session notification message failed", zap.Error(err))
	}
}

func decodeDocument(data datatypes.JSON) (itinerary.Document, error) {
	var doc itinerary.Document
	if len(data) == 0 {
		return doc, nil
	}
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return itinerary.Document{}, err
	}
	return doc, nil
}
