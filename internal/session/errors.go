package session

import "fmt"

// ConflictError reports that a new session would contend for an
// exclusive resource held by a live session.
type ConflictError struct {
	Kind       Kind
	Key        string
	ExistingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s session %s already holds %s", e.Kind, e.ExistingID, e.Key)
}

// NotFoundError reports an unknown or already pruned session id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no session %s", e.ID)
}
