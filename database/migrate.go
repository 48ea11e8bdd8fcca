// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"sidequest/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := Migrate(db); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// Migrate applies the schema to the given connection. Split out from
// RunMigrations so tests can migrate an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Hunt{},
		&models.Checkpoint{},
		&models.PlayerRun{},
		&models.CheckpointProgress{},
		&models.CheckpointAttempt{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
		&models.HuntFeedback{},
	); err != nil {
		return err
	}

	return EnsureDerivedBadges(db)
}

// createIndexes creates secondary indexes not covered by the model tags
func createIndexes() {
	db := GetDB()
	log.Println("Creating indexes...")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_hunts_creator ON hunts(creator_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_hunts_published ON hunts(is_published)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_checkpoints_hunt ON checkpoints(hunt_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_player_runs_hunt ON player_runs(hunt_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_player_runs_status ON player_runs(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_attempts_run ON checkpoint_attempts(run_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_attempts_created ON checkpoint_attempts(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_badges_user ON user_badges(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)")

	log.Println("✅ Indexes created successfully")
}
