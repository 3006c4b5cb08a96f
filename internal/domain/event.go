package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

func (op ChangeOp) IsValid() bool {
	switch op {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// ChangeEvent describes one row change on the notifications table.
type ChangeEvent struct {
	Op     ChangeOp  `json:"op"`
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	At     time.Time `json:"at"`
}
