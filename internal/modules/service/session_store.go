package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ashwath129/DayMap/internal/config"
	"github.com/ashwath129/DayMap/internal/infra/feed"
	mq "github.com/ashwath129/DayMap/internal/infra/queue"
	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/modules/repo"
	"github.com/ashwath129/DayMap/internal/pkg/itinerary"
	"github.com/ashwath129/DayMap/internal/telemetry"
)

// sessionStore binds a live.Engine to one (session, user) pair over the
// session repo. Writes also announce themselves on the change feed, and
// audit rows fan out over the message queue.
type sessionStore struct {
	sessions repo.SessionRepo
	fd       feed.Feed
	pub      *mq.Publisher
	cfg      *config.Config
	log      *zap.Logger

	sessionID uuid.UUID
	groupID   uuid.UUID
	userID    uuid.UUID
}

func (st *sessionStore) Fetch(ctx context.Context) (live.Snapshot, error) {
	session, err := st.sessions.Get(ctx, st.sessionID)
	if err != nil {
		return live.Snapshot{}, err
	}
	doc, err := decodeDocument(session.ItineraryData)
	if err != nil {
		return live.Snapshot{}, err
	}
	return live.Snapshot{
		Doc:       doc,
		Active:    session.IsActive,
		UpdatedAt: session.UpdatedAt,
	}, nil
}

func (st *sessionStore) Replace(ctx context.Context, doc itinerary.Document) error {
	data, err := sonic.Marshal(doc)
	if err != nil {
		return err
	}
	start := time.Now()
	err = st.sessions.ReplaceDocument(ctx, st.sessionID, datatypes.JSON(data))
	telemetry.RecordItineraryWrite(ctx, "replace", float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		return err
	}

	if err := st.fd.Publish(ctx, feed.Event{
		GroupID:   st.groupID.String(),
		Kind:      feed.KindItinerary,
		SessionID: st.sessionID.String(),
	}); err != nil {
		st.log.Warn("itinerary feed publish failed", zap.Error(err))
	}
	return nil
}

func (st *sessionStore) AppendChange(ctx context.Context, changeType string, data map[string]any) error {
	var payload datatypes.JSON
	if data != nil {
		b, err := sonic.Marshal(data)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(b)
	}

	change := &model.ItineraryChange{
		LiveSessionID: st.sessionID,
		GroupID:       st.groupID,
		UserID:        st.userID,
		ChangeType:    changeType,
		ChangeData:    payload,
	}
	if err := st.sessions.AppendChange(ctx, change); err != nil {
		return err
	}

	// Fan the audit row out for offline consumers. Best-effort.
	if st.pub != nil {
		if err := st.pub.PublishJSON(ctx,
			st.cfg.RabbitMQ.ExchangeName.ItineraryChange,
			st.cfg.RabbitMQ.RoutingKey.ItineraryChangeInsert,
			changeLogEvent{
				ChangeID:   change.ID,
				SessionID:  st.sessionID,
				GroupID:    st.groupID,
				UserID:     st.userID,
				ChangeType: changeType,
				CreatedAt:  change.CreatedAt,
			}); err != nil {
			st.log.Warn("change log publish failed", zap.Error(err))
		}
	}
	return nil
}

type changeLogEvent struct {
	ChangeID   uuid.UUID `json:"change_id"`
	SessionID  uuid.UUID `json:"session_id"`
	GroupID    uuid.UUID `json:"group_id"`
	UserID     uuid.UUID `json:"user_id"`
	ChangeType string    `json:"change_type"`
	CreatedAt  time.Time `json:"created_at"`
}
