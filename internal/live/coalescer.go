package live

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/modules/model"
	"github.com/ashwath129/DayMap/internal/pkg/itinerary"
)

// flushTimeout bounds the store write fired from the debounce timer, which
// has no caller context to inherit.
const flushTimeout = 10 * time.Second

// SetField applies a flat field edit to the working copy and schedules a
// coalesced write.
func (e *Engine) SetField(dayID, field, value string) error {
	return e.fieldEdit(func(d *itinerary.Document) error {
		return d.SetField(dayID, field, value)
	})
}

// SetMeal applies a meal edit to the working copy and schedules a coalesced
// write.
func (e *Engine) SetMeal(dayID, meal, value string) error {
	return e.fieldEdit(func(d *itinerary.Document) error {
		return d.SetMeal(dayID, meal, value)
	})
}

func (e *Engine) SetActivity(dayID string, idx int, value string) error {
	return e.fieldEdit(func(d *itinerary.Document) error {
		return d.SetActivity(dayID, idx, value)
	})
}

func (e *Engine) AppendActivity(dayID, value string) error {
	return e.fieldEdit(func(d *itinerary.Document) error {
		return d.AppendActivity(dayID, value)
	})
}

// RemoveActivity deletes an activity. Deletion is a structural edit: it
// writes through immediately and gets an audit record, unlike the text
// edits above.
func (e *Engine) RemoveActivity(ctx context.Context, dayID string, idx int) error {
	return e.structuralEdit(ctx, model.ChangeRemoveActivity, func(d *itinerary.Document) (map[string]any, error) {
		if err := d.RemoveActivity(dayID, idx); err != nil {
			return nil, err
		}
		return map[string]any{"day_id": dayID, "index": idx}, nil
	})
}

// fieldEdit mutates the working copy and (re)arms the debounce timer. Rapid
// edits within the window collapse into a single store write.
func (e *Engine) fieldEdit(mutate func(*itinerary.Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cfg.Role != RoleOwner {
		return ErrOwnerOnly
	}
	if e.closed {
		return ErrEngineClosed
	}
	if err := mutate(&e.doc); err != nil {
		return err
	}
	e.dirty = true
	if e.pending != nil {
		e.pending.Stop()
	}
	e.pending = time.AfterFunc(e.cfg.DebounceWindow, e.flushPending)
	return nil
}

// flushPending runs on timer expiry: one write carrying every edit made
// during the window.
func (e *Engine) flushPending() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := e.Flush(ctx); err != nil {
		e.log.Error("live: coalesced write failed",
			zap.String("group_id", e.cfg.GroupID),
			zap.Error(err))
	}
}

// Flush writes the pending coalesced edits now. The working copy stays as
// edited even when the write fails; the next flush retries it.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if !e.dirty {
		e.mu.Unlock()
		return nil
	}
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	doc := e.doc.Clone()
	e.mu.Unlock()

	if err := e.store.Replace(ctx, doc); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteCoalesce, err)
	}
	if err := e.store.AppendChange(ctx, model.ChangeUpdateDay, nil); err != nil {
		// The document write landed; a lost audit row is log-worthy only.
		e.log.Warn("live: change log append failed",
			zap.String("group_id", e.cfg.GroupID), zap.Error(err))
	}

	e.mu.Lock()
	e.dirty = false
	e.mu.Unlock()
	return nil
}

// AddDay appends a day, writes through immediately, and records the change.
func (e *Engine) AddDay(ctx context.Context) (string, error) {
	var id string
	err := e.structuralEdit(ctx, model.ChangeAddDay, func(d *itinerary.Document) (map[string]any, error) {
		id = d.AddDay()
		return map[string]any{"day_id": id}, nil
	})
	return id, err
}

// RemoveDay deletes a day, writes through immediately, and records the change.
func (e *Engine) RemoveDay(ctx context.Context, dayID string) error {
	return e.structuralEdit(ctx, model.ChangeRemoveDay, func(d *itinerary.Document) (map[string]any, error) {
		if err := d.RemoveDay(dayID); err != nil {
			return nil, err
		}
		return map[string]any{"day_id": dayID}, nil
	})
}

// Reorder moves a day, writes through immediately, and records the change.
func (e *Engine) Reorder(ctx context.Context, from, to int) error {
	return e.structuralEdit(ctx, model.ChangeReorderDay, func(d *itinerary.Document) (map[string]any, error) {
		if err := d.Reorder(from, to); err != nil {
			return nil, err
		}
		return map[string]any{"from": from, "to": to}, nil
	})
}

// ReplaceAll swaps in a whole new document immediately, bypassing the
// debounce window. Used when a generated plan replaces the itinerary.
func (e *Engine) ReplaceAll(ctx context.Context, doc itinerary.Document) error {
	return e.structuralEdit(ctx, model.ChangeUpdateDay, func(d *itinerary.Document) (map[string]any, error) {
		*d = doc.Clone()
		return map[string]any{"replaced": true}, nil
	})
}

// structuralEdit applies the mutation and writes through at once. Any write
// still pending from field edits is folded in: the timer is cancelled and
// this write carries the full document. The working copy keeps the mutation
// even if the write fails.
func (e *Engine) structuralEdit(ctx context.Context, changeType string, mutate func(*itinerary.Document) (map[string]any, error)) error {
	e.mu.Lock()
	if e.cfg.Role != RoleOwner {
		e.mu.Unlock()
		return ErrOwnerOnly
	}
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	changeData, err := mutate(&e.doc)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.dirty = false
	doc := e.doc.Clone()
	e.mu.Unlock()

	if err := e.store.Replace(ctx, doc); err != nil {
		// Keep the optimistic local state; mark dirty so a later flush or
		// close retries the write.
		e.mu.Lock()
		if !e.closed {
			e.dirty = true
		}
		e.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrWriteCoalesce, err)
	}

	if err := e.store.AppendChange(ctx, changeType, changeData); err != nil {
		e.log.Warn("live: change log append failed",
			zap.String("group_id", e.cfg.GroupID),
			zap.String("change_type", changeType),
			zap.Error(err))
	}
	return nil
}
