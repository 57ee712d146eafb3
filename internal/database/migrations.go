package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Shift lookups by venue and day drive the rota views
		{"rota_shifts", "idx_rota_shifts_venue_date", "venue_id, date"},
		{"rota_shifts", "idx_rota_shifts_status", "status"},

		// The headcount invariant counts active allocations per shift
		{"shift_allocations", "idx_shift_allocations_shift_status", "shift_id, status"},
		{"shift_allocations", "idx_shift_allocations_member", "team_member_id"},

		// The expiry sweep scans pending invites by deadline
		{"shift_invites", "idx_shift_invites_shift_status", "shift_id, status"},
		{"shift_invites", "idx_shift_invites_expiry", "status, expires_at"},

		{"timekeeping_records", "idx_timekeeping_member_status", "team_member_id, status"},
		{"timesheets", "idx_timesheets_member_period", "team_member_id, period_start, period_end"},

		{"audit_log_entries", "idx_audit_org_created", "organization_id, created_at"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
