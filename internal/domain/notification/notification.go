package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies what condition produced a notification. The set is
// closed; the (user, type, initiator) triple is the dedup key the batch
// pipeline checks before insert.
type Type string

const (
	TypeIntakeDue                 Type = "INTAKE_DUE"
	TypeScheduleOutOfDose         Type = "SCHEDULE_OUT_OF_DOSE"
	TypeScheduleAlmostOutOfDose   Type = "SCHEDULE_ALMOST_OUT_OF_DOSE"
	TypeCabinetEntryExpired       Type = "CABINET_ENTRY_EXPIRED"
	TypeCabinetEntryAlmostExpired Type = "CABINET_ENTRY_ALMOST_EXPIRED"
	TypeDocumentExpired           Type = "DOCUMENT_EXPIRED"
	TypeDocumentAlmostExpired     Type = "DOCUMENT_ALMOST_EXPIRED"
)

// Notification is a user-facing alert. Dismissal by the user flips Active
// to false (soft delete); the cleanup stage hard-deletes rows once
// ExpiresAt has passed. An inactive row still suppresses re-emission
// until it is swept.
type Notification struct {
	ID          uuid.UUID
	UserID      int64
	Type        Type
	InitiatorID int64
	Title       string
	Message     string
	ExpiresAt   time.Time
	Active      bool
	CreatedAt   time.Time
}

// New builds an active notification with a fresh id.
func New(userID int64, typ Type, initiatorID int64, title, message string, expiresAt time.Time) *Notification {
	return &Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        typ,
		InitiatorID: initiatorID,
		Title:       title,
		Message:     message,
		ExpiresAt:   expiresAt,
		Active:      true,
	}
}
