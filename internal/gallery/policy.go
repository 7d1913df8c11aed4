package gallery

import (
	"fmt"

	"charpix/internal/models"
)

// Action names a gallery operation for authorization purposes.
type Action string

const (
	ActionView   Action = "view"
	ActionUpload Action = "upload"
	ActionDelete Action = "delete"
)

// Authorize is the single permission decision point for gallery operations.
// Viewing is open to everyone, including anonymous callers; mutation
// requires the staff role or ownership of the character.
func Authorize(p models.Principal, ownerID string, action Action) error {
	switch action {
	case ActionView:
		return nil
	case ActionUpload, ActionDelete:
		if p.IsStaff() {
			return nil
		}
		if !p.Anonymous() && ownerID != "" && p.ID == ownerID {
			return nil
		}
		return ErrPermissionDenied
	default:
		return fmt.Errorf("unknown gallery action: %s", action)
	}
}
