package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"github.com/ashwath129/DayMap/internal/config"
	"github.com/ashwath129/DayMap/internal/infra/feed"
	"github.com/ashwath129/DayMap/internal/infra/planner"
	"github.com/ashwath129/DayMap/internal/modules/model"
)

// MockGroupRepo is a mock implementation of repo.GroupRepo
type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) Create(ctx context.Context, g *model.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGroupRepo) Get(ctx context.Context, groupID uuid.UUID) (*model.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupRepo) GetByJoinCode(ctx context.Context, code string) (*model.Group, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupRepo) Delete(ctx context.Context, groupID uuid.UUID) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockGroupRepo) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupRepo) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupRepo) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.GroupMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupMember), args.Error(1)
}

// MockSessionRepo is a mock implementation of repo.SessionRepo
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) CreateActive(ctx context.Context, s *model.LiveSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepo) Get(ctx context.Context, sessionID uuid.UUID) (*model.LiveSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LiveSession), args.Error(1)
}

func (m *MockSessionRepo) GetActiveByGroup(ctx context.Context, groupID uuid.UUID) (*model.LiveSession, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LiveSession), args.Error(1)
}

func (m *MockSessionRepo) ReplaceDocument(ctx context.Context, sessionID uuid.UUID, data datatypes.JSON) error {
	args := m.Called(ctx, sessionID, data)
	return args.Error(0)
}

func (m *MockSessionRepo) End(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepo) UpsertParticipant(ctx context.Context, p *model.SessionParticipant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockSessionRepo) RemoveParticipant(ctx context.Context, sessionID, userID uuid.UUID) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

func (m *MockSessionRepo) DeleteParticipantsBySession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepo) ListParticipantsSeenSince(ctx context.Context, sessionID uuid.UUID, since time.Time) ([]model.SessionParticipant, error) {
	args := m.Called(ctx, sessionID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SessionParticipant), args.Error(1)
}

func (m *MockSessionRepo) AppendChange(ctx context.Context, c *model.ItineraryChange) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockMessageRepo is a mock implementation of repo.MessageRepo
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) GetByID(ctx context.Context, groupID, messageID uuid.UUID) (*model.Message, error) {
	args := m.Called(ctx, groupID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageRepo) ListByGroupWithCursor(ctx context.Context, groupID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]model.Message, error) {
	args := m.Called(ctx, groupID, afterCreatedAt, afterID, limit, timeDesc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockMessageRepo) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) (bool, error) {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Bool(0), args.Error(1)
}

// MockMessageService is a mock implementation of MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Send(ctx context.Context, in SendMessageInput) (*model.Message, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageService) List(ctx context.Context, in ListMessagesInput) ([]model.Message, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockMessageService) ToggleReaction(ctx context.Context, in ToggleReactionInput) (bool, error) {
	args := m.Called(ctx, in)
	return args.Bool(0), args.Error(1)
}

// recFeed records published events and hands subscribers a channel that
// never delivers, which keeps engine loops on their poll fallback.
type recFeed struct {
	mu     sync.Mutex
	events []feed.Event
}

func (f *recFeed) Publish(ctx context.Context, ev feed.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *recFeed) Subscribe(ctx context.Context, groupID string) (<-chan feed.Event, func(), error) {
	return make(chan feed.Event), func() {}, nil
}

func (f *recFeed) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Kind
	}
	return out
}

// fakePlanner returns a canned payload or error and records the request.
type fakePlanner struct {
	raw     []byte
	err     error
	lastReq planner.PlanRequest
}

func (p *fakePlanner) GeneratePlan(ctx context.Context, req planner.PlanRequest) ([]byte, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.raw, nil
}

func testLiveConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "daymap-test"},
		Live: config.LiveConfig{
			DebounceWindow:    50 * time.Millisecond,
			PollInterval:      time.Hour,
			HeartbeatInterval: time.Minute,
		},
	}
}
