// Package audit records every state-changing operation in an append-only trail.
package audit

import (
	"log"

	"github.com/google/uuid"
	"github.com/rosterhq/rostering-api/internal/models"
	"gorm.io/gorm"
)

// Recorder appends audit entries. A failed append must never fail the business
// operation that triggered it; it is logged at warning level instead.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Entry describes one state change.
type Entry struct {
	OrganizationID uint64
	// ActorID is nil for system-initiated changes (expiry sweep, invite-accept
	// allocation).
	ActorID   *uint64
	TableName string
	RecordID  uint64
	Action    models.AuditAction
	OldData   models.JSON
	NewData   models.JSON
	Metadata  models.JSON
}

// Record appends one immutable entry with a server-generated timestamp. The write
// happens on the Recorder's own connection so a caller's rolled-back transaction
// cannot leave a committed mutation un-audited the other way around: callers record
// after their transaction commits.
func (r *Recorder) Record(e Entry) {
	row := models.AuditLogEntry{
		ID:             uuid.NewString(),
		OrganizationID: e.OrganizationID,
		ActorID:        e.ActorID,
		TableName:      e.TableName,
		RecordID:       e.RecordID,
		Action:         e.Action,
		OldData:        e.OldData,
		NewData:        e.NewData,
		Metadata:       e.Metadata,
	}
	if err := r.db.Create(&row).Error; err != nil {
		log.Printf("WARN audit: failed to record %s on %s/%d: %v",
			e.Action, e.TableName, e.RecordID, err)
	}
}

// RecordTx appends an entry inside the caller's transaction so the entry commits
// with the mutation it describes. Unlike Record, the error propagates: inside a
// transaction the caller decides whether to abort.
func (r *Recorder) RecordTx(tx *gorm.DB, e Entry) error {
	row := models.AuditLogEntry{
		ID:             uuid.NewString(),
		OrganizationID: e.OrganizationID,
		ActorID:        e.ActorID,
		TableName:      e.TableName,
		RecordID:       e.RecordID,
		Action:         e.Action,
		OldData:        e.OldData,
		NewData:        e.NewData,
		Metadata:       e.Metadata,
	}
	return tx.Create(&row).Error
}
