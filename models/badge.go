// models/badge.go
package models

import "time"

// Keys of the built-in derived badges the progression engine grants on run
// milestones. Seeded by the migration runner.
const (
	BadgeKeyPathfinder  = "pathfinder"      // completed any hunt
	BadgeKeySpeedrunner = "speedrunner"     // completed a hunt under the speed threshold
	BadgeKeyCollector   = "badge-collector" // distinct badge count reached the collector threshold
	BadgeKeyTrailblazer = "trailblazer"     // solved the first checkpoint of a run
)

// Badge is an achievement marker. Checkpoint-linked badges are granted when
// their checkpoint is first solved; global badges (CheckpointID nil) are
// granted by derived rules and looked up by Key. Key is the stable identity;
// Title is presentation only and safe to rename.
type Badge struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Key          string      `gorm:"uniqueIndex;not null;size:100" json:"key"`
	Title        string      `gorm:"not null;size:200" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	Image        string      `json:"image"`
	CheckpointID *uint       `gorm:"index" json:"checkpoint_id,omitempty"`
	Checkpoint   *Checkpoint `gorm:"foreignKey:CheckpointID" json:"checkpoint,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserBadge links a user to an earned badge. Unique per (user, badge), so
// repeated grants are no-ops.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge,priority:1" json:"user_id"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_user_badges_user_badge,priority:2" json:"badge_id"`
	Badge    *Badge    `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	EarnedAt time.Time `json:"earned_at"`
}

func (Badge) TableName() string {
	return "badges"
}

func (UserBadge) TableName() string {
	return "user_badges"
}
