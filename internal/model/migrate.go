package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Session{},
		&MembershipEntry{},
		&InviteToken{},
		&AttendanceRecord{},
		&Review{},
	); err != nil {
		return err
	}

	// One ledger entry per identity per session, only enforced on
	// non-soft-deleted rows so a participant can rejoin after leaving.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_membership_session_identity " +
			"ON membership_entries (session_id, identity_key) WHERE deleted_at IS NULL",
	).Error; err != nil {
		return err
	}

	// One attendance fact per participant per session.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_session_user " +
			"ON attendance_records (session_id, user_id)",
	).Error; err != nil {
		return err
	}

	// One review per reviewer per session.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_session_reviewer " +
			"ON reviews (session_id, reviewer_id) WHERE deleted_at IS NULL",
	).Error
}
