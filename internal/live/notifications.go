package live

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const unreadTTL = 7 * 24 * time.Hour

// Notifier keeps per-user unread flags for group activity in redis. Flags
// are best-effort presence hints, so they expire rather than accumulate.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func unreadKey(groupID, userID uuid.UUID) string {
	return fmt.Sprintf("daymap:unread:%s:%s", groupID, userID)
}

// MarkUnread flags group activity for every member except the actor.
func (n *Notifier) MarkUnread(ctx context.Context, groupID uuid.UUID, memberIDs []uuid.UUID, actor uuid.UUID) error {
	pipe := n.rdb.Pipeline()
	for _, id := range memberIDs {
		if id == actor {
			continue
		}
		pipe.Set(ctx, unreadKey(groupID, id), "1", unreadTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (n *Notifier) HasUnread(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	res, err := n.rdb.Exists(ctx, unreadKey(groupID, userID)).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}

func (n *Notifier) Clear(ctx context.Context, groupID, userID uuid.UUID) error {
	return n.rdb.Del(ctx, unreadKey(groupID, userID)).Err()
}
