package live

import "github.com/google/uuid"

// RoleFor derives the user's role in a group: the creator is the owner and
// the sole writer during a live session, everyone else follows read-only.
func RoleFor(creatorID, userID uuid.UUID) Role {
	if creatorID == userID {
		return RoleOwner
	}
	return RoleViewer
}

// RequireOwner guards owner-gated operations.
func RequireOwner(role Role) error {
	if role != RoleOwner {
		return ErrOwnerOnly
	}
	return nil
}
