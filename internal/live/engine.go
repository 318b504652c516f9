package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/infra/feed"
	"github.com/ashwath129/DayMap/internal/pkg/itinerary"
)

// Role of the engine's user within the group.
type Role int

const (
	RoleViewer Role = iota
	RoleOwner
)

// Snapshot is the store's view of a session document.
type Snapshot struct {
	Doc       itinerary.Document
	Active    bool
	UpdatedAt time.Time
}

// Store is the slice of session persistence one engine needs. Implementations
// bind a concrete (session, user) pair.
type Store interface {
	Fetch(ctx context.Context) (Snapshot, error)
	Replace(ctx context.Context, doc itinerary.Document) error
	AppendChange(ctx context.Context, changeType string, data map[string]any) error
}

// Config tunes one engine instance.
type Config struct {
	GroupID        string
	Role           Role
	DebounceWindow time.Duration
	PollInterval   time.Duration
}

// Engine keeps one user's working copy of a live session document in step
// with the store. Only an owner engine mutates: field edits apply immediately
// to the working copy and are coalesced into one store write per debounce
// window; structural edits write through at once. A viewer engine rejects
// every edit with ErrOwnerOnly. A single refresh path serves both the change
// feed and the poll fallback, replacing the working copy wholesale.
type Engine struct {
	cfg   Config
	store Store
	feed  feed.Feed
	log   *zap.Logger

	mu      sync.Mutex
	doc     itinerary.Document
	dirty   bool
	pending *time.Timer
	closed  bool

	nudge    chan struct{}
	onUpdate func(itinerary.Document)
}

// New builds an engine seeded with the given document. The feed may be nil,
// in which case only the poll fallback runs.
func New(cfg Config, store Store, fd feed.Feed, log *zap.Logger) *Engine {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = 500 * time.Millisecond
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Engine{
		cfg:   cfg,
		store: store,
		feed:  fd,
		log:   log,
		nudge: make(chan struct{}, 1),
	}
}

// OnUpdate registers a callback invoked, outside the engine lock, whenever a
// refresh replaces the working copy. Must be set before Run.
func (e *Engine) OnUpdate(fn func(itinerary.Document)) {
	e.onUpdate = fn
}

// Document returns a deep copy of the working document.
func (e *Engine) Document() itinerary.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Seed sets the working document without writing to the store.
func (e *Engine) Seed(doc itinerary.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc.Clone()
}

// Nudge asks the sync loop for an immediate refresh.
func (e *Engine) Nudge() {
	select {
	case e.nudge <- struct{}{}:
	default:
	}
}

// Run drives the synchronization loop until ctx is cancelled: change-feed
// events and the poll ticker both funnel into the one refresh path.
func (e *Engine) Run(ctx context.Context) error {
	var events <-chan feed.Event
	if e.feed != nil {
		ch, cancel, err := e.feed.Subscribe(ctx, e.cfg.GroupID)
		if err != nil {
			// Degrade to polling alone.
			e.log.Warn("live: feed subscribe failed, polling only", zap.Error(err))
		} else {
			events = ch
			defer cancel()
		}
	}

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.refresh(ctx)
		case <-e.nudge:
			e.refresh(ctx)
		case <-ticker.C:
			e.refresh(ctx)
		}
		// A refresh that finds the session ended closes the engine; the
		// loop has nothing left to keep in sync.
		if e.isClosed() {
			return nil
		}
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// refresh fetches the store snapshot and replaces the working copy wholesale.
// While a coalesced write is pending the local copy is ahead of the store, so
// the refresh is skipped; the flush will announce the state everyone else
// should converge on.
func (e *Engine) refresh(ctx context.Context) {
	e.mu.Lock()
	if e.closed || e.dirty {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	snap, err := e.store.Fetch(ctx)
	if err != nil {
		e.log.Warn("live: refresh failed",
			zap.String("group_id", e.cfg.GroupID),
			zap.Error(fmt.Errorf("%w: %w", ErrSyncFetch, err)))
		return
	}

	if !snap.Active {
		// The session ended out from under us (another instance, or the
		// owner on a different server). Tear down: discard the cached
		// document and refuse further edits.
		e.mu.Lock()
		if !e.closed {
			e.closed = true
			if e.pending != nil {
				e.pending.Stop()
				e.pending = nil
			}
			e.dirty = false
			e.doc = itinerary.Document{}
		}
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	if e.closed || e.dirty || e.doc.Equal(snap.Doc) {
		e.mu.Unlock()
		return
	}
	e.doc = snap.Doc.Clone()
	cb := e.onUpdate
	e.mu.Unlock()

	if cb != nil {
		cb(snap.Doc)
	}
}

// Close flushes any pending write and rejects further edits.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	hadPending := e.pending != nil
	if hadPending {
		e.pending.Stop()
		e.pending = nil
	}
	doc := e.doc.Clone()
	dirty := e.dirty
	e.dirty = false
	e.mu.Unlock()

	if dirty || hadPending {
		if err := e.store.Replace(ctx, doc); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteCoalesce, err)
		}
	}
	return nil
}
