package feed

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event kinds mirror the tables whose writes they announce.
const (
	KindSession      = "session"
	KindItinerary    = "itinerary"
	KindMessage      = "message"
	KindReaction     = "reaction"
	KindParticipants = "participants"
	KindChangeLog    = "change_log"
)

// Event is a change notification fanned out to live subscribers of a group.
// Payload carries kind-specific JSON; subscribers treat it as a hint and
// re-fetch authoritative state rather than applying it directly.
type Event struct {
	GroupID   string `json:"group_id"`
	Kind      string `json:"kind"`
	SessionID string `json:"session_id,omitempty"`
	Payload   []byte `json:"payload,omitempty"`
}

// Feed is the group-scoped change feed. Subscribe returns a receive channel
// and a cancel func that must be called to release the subscription.
type Feed interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, groupID string) (<-chan Event, func(), error)
}

type redisFeed struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisFeed(rdb *redis.Client, log *zap.Logger) Feed {
	return &redisFeed{rdb: rdb, log: log}
}

func channelKey(groupID string) string {
	return fmt.Sprintf("daymap:feed:%s", groupID)
}

func (f *redisFeed) Publish(ctx context.Context, ev Event) error {
	b, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, channelKey(ev.GroupID), b).Err()
}

func (f *redisFeed) Subscribe(ctx context.Context, groupID string) (<-chan Event, func(), error) {
	sub := f.rdb.Subscribe(ctx, channelKey(groupID))
	// Force the subscription onto the wire before returning so callers do not
	// miss events published immediately after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := sonic.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.log.Warn("feed: drop malformed event", zap.Error(err))
				continue
			}
			select {
			case out <- ev:
			default:
				// Subscriber is slow; drop rather than block the pump. The
				// poll fallback will pick up whatever this loses.
				f.log.Debug("feed: subscriber lagging, dropped event",
					zap.String("group_id", groupID), zap.String("kind", ev.Kind))
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}
