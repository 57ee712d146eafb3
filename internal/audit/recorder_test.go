package audit

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLogEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func TestRecorder_AppendsEntry(t *testing.T) {
	db := setupAuditDB(t)
	recorder := NewRecorder(db)

	actorID := uint64(7)
	recorder.Record(Entry{
		OrganizationID: 1,
		ActorID:        &actorID,
		TableName:      "shift_allocations",
		RecordID:       42,
		Action:         models.AuditActionShiftAssigned,
		NewData:        models.JSON{"status": "allocated"},
	})

	var entries []models.AuditLogEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditActionShiftAssigned, entries[0].Action)
	require.Equal(t, uint64(42), entries[0].RecordID)
	require.NotEmpty(t, entries[0].ID)
	require.NotZero(t, entries[0].CreatedAt)
	require.Equal(t, "allocated", entries[0].NewData["status"])
}

func TestRecorder_WriteFailureDoesNotPanicOrPropagate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	// No INSERT expectation is registered, so the driver rejects the write.
	_ = mock

	recorder := NewRecorder(db)

	// The recorder must swallow the driver error; the caller's operation stands.
	require.NotPanics(t, func() {
		recorder.Record(Entry{
			OrganizationID: 1,
			TableName:      "shift_invites",
			RecordID:       9,
			Action:         models.AuditActionInviteAccepted,
		})
	})
}
