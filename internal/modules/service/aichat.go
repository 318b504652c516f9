package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/infra/planner"
	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/pkg/itinerary"
	"github.com/ashwath129/DayMap/internal/telemetry"
)

type PlanChatService interface {
	// Chat consumes one owner utterance and returns the assistant's reply.
	// When the scripted dialogue completes, the plan is generated and the
	// session document replaced before the reply comes back.
	Chat(ctx context.Context, in PlanChatInput) (*PlanChatReply, error)
}

type PlanChatInput struct {
	GroupID    uuid.UUID
	UserID     uuid.UUID
	SenderName string
	Text       string
}

type PlanChatReply struct {
	Reply     string             `json:"reply"`
	Step      live.DialogueStep  `json:"step"`
	Generated bool               `json:"generated"`
	Document  itinerary.Document `json:"document,omitempty"`
}

// dialogueEntry pairs a dialogue with its own lock so one owner's turns run
// strictly one at a time, without serializing unrelated groups.
type dialogueEntry struct {
	mu sync.Mutex
	d  *live.PlanDialogue
}

type planChatService struct {
	groups   GroupService
	sessions LiveSessionService
	messages MessageService
	planner  planner.Planner
	log      *zap.Logger

	mu        sync.Mutex
	dialogues map[string]*dialogueEntry // keyed by groupID:userID
}

func NewPlanChatService(groups GroupService, sessions LiveSessionService, messages MessageService, pl planner.Planner, log *zap.Logger) PlanChatService {
	return &planChatService{
		groups:    groups,
		sessions:  sessions,
		messages:  messages,
		planner:   pl,
		log:       log,
		dialogues: make(map[string]*dialogueEntry),
	}
}

func (s *planChatService) Chat(ctx context.Context, in PlanChatInput) (*PlanChatReply, error) {
	role, err := s.groups.RoleFor(ctx, in.GroupID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := live.RequireOwner(role); err != nil {
		return nil, err
	}

	// Generation targets the active session's document, so one must exist
	// before the dialogue starts.
	if _, err := s.sessions.GetActive(ctx, in.GroupID, in.UserID); err != nil {
		return nil, err
	}

	key := in.GroupID.String() + ":" + in.UserID.String()
	s.mu.Lock()
	entry, ok := s.dialogues[key]
	if !ok {
		entry = &dialogueEntry{d: live.NewPlanDialogue()}
		s.dialogues[key] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	d := entry.d

	// A blank first utterance just opens the dialogue.
	if !ok && in.Text == "" {
		return &PlanChatReply{Reply: d.Prompt(), Step: d.Step()}, nil
	}

	reply, err := d.Answer(in.Text)
	if err != nil {
		s.drop(key)
		return nil, fmt.Errorf("%w: %w", live.ErrGeneration, err)
	}
	if !d.Done() {
		return &PlanChatReply{Reply: reply, Step: d.Step()}, nil
	}

	doc, raw, err := s.generate(ctx, d.Request())
	if err != nil {
		// Reset so the owner can run the script again, and leave a trace of
		// the failure in the group chat.
		s.drop(key)
		s.assistantNote(ctx, in,
			"I couldn't generate the plan this time. The itinerary is unchanged; message me again to retry.")
		return nil, err
	}
	s.drop(key)

	if err := s.sessions.ReplaceDocument(ctx, in.GroupID, in.UserID, doc); err != nil {
		return nil, err
	}

	// Transcript gets the raw generated payload, then the human-readable
	// announcement.
	s.assistantNote(ctx, in, string(raw))
	s.assistantNote(ctx, in,
		fmt.Sprintf("Generated a %d-day plan for %s.", len(doc.Days), d.Request().Destination))

	return &PlanChatReply{
		Reply:     fmt.Sprintf("Done! I generated a %d-day plan for %s.", len(doc.Days), d.Request().Destination),
		Step:      live.StepDone,
		Generated: true,
		Document:  doc,
	}, nil
}

func (s *planChatService) generate(ctx context.Context, req planner.PlanRequest) (itinerary.Document, []byte, error) {
	start := time.Now()
	raw, err := s.planner.GeneratePlan(ctx, req)
	if err != nil {
		telemetry.RecordPlanGeneration(ctx, float64(time.Since(start).Milliseconds()), 0, err)
		return itinerary.Document{}, nil, fmt.Errorf("%w: %w", live.ErrGeneration, err)
	}
	doc, err := itinerary.NormalizePlan(raw)
	telemetry.RecordPlanGeneration(ctx, float64(time.Since(start).Milliseconds()), int64(len(doc.Days)), err)
	if err != nil {
		return itinerary.Document{}, nil, fmt.Errorf("%w: %w", live.ErrGeneration, err)
	}
	return doc, raw, nil
}

func (s *planChatService) drop(key string) {
	s.mu.Lock()
	delete(s.dialogues, key)
	s.mu.Unlock()
}

// assistantNote appends one assistant-authored message to the group chat.
// Best effort; the chat reply already carries the outcome.
func (s *planChatService) assistantNote(ctx context.Context, in PlanChatInput, content string) {
	if _, err := s.messages.Send(ctx, SendMessageInput{
		GroupID:    in.GroupID,
		UserID:     in.UserID,
		SenderName: "Trip Assistant",
		Content:    content,
		IsAI:       true,
	}); err != nil {
		s.log.Warn("assistant transcript message failed", zap.Error(err))
	}
}
