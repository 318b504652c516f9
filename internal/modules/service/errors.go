package service

import "errors"

// Service layer errors. Live-engine errors (owner gate, write coalescing,
// sync, generation) come from the live package; these cover membership and
// lookup concerns the engine does not know about.
var (
	ErrNotMember       = errors.New("user is not a member of this group")
	ErrGroupNotFound   = errors.New("group not found")
	ErrSessionNotFound = errors.New("live session not found")
	ErrNoActiveSession = errors.New("group has no active session")
)
