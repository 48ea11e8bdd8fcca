// models/run.go - Per-player hunt participation and attempt bookkeeping
package models

import (
	"time"
)

// Run statuses. Completed is terminal.
const (
	RunStatusActive    = "active"
	RunStatusCompleted = "completed"
	RunStatusAbandoned = "abandoned"
)

// PlayerRun is one player's attempt at completing one hunt. One row per
// (user, hunt); created on join, mutated only by the progression engine.
type PlayerRun struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_player_runs_user_hunt,priority:1" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	HuntID uint   `gorm:"not null;uniqueIndex:idx_player_runs_user_hunt,priority:2" json:"hunt_id"`
	Hunt   *Hunt  `gorm:"foreignKey:HuntID" json:"hunt,omitempty"`
	Status string `gorm:"default:'active';size:20" json:"status"`

	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TotalTimeSeconds *int       `json:"total_time_seconds,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckpointProgress tracks attempts and the first solve per (run, checkpoint).
// Created lazily on the first attempt at a checkpoint. AttemptsCount never
// decreases; SolvedAt never changes once set.
type CheckpointProgress struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RunID        uint `gorm:"not null;uniqueIndex:idx_progress_run_checkpoint,priority:1" json:"run_id"`
	CheckpointID uint `gorm:"not null;uniqueIndex:idx_progress_run_checkpoint,priority:2" json:"checkpoint_id"`

	AttemptsCount int        `gorm:"not null;default:0" json:"attempts_count"`
	SolvedAt      *time.Time `json:"solved_at,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`

	// Last coordinates the player submitted for this checkpoint.
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckpointAttempt is the append-only audit record of a single submission.
type CheckpointAttempt struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RunID        uint `gorm:"not null;index" json:"run_id"`
	UserID       uint `gorm:"not null;index" json:"user_id"`
	CheckpointID uint `gorm:"not null;index" json:"checkpoint_id"`

	SubmittedAnswer string   `gorm:"type:text" json:"submitted_answer"`
	WasCorrect      bool     `json:"was_correct"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (PlayerRun) TableName() string {
	return "player_runs"
}

func (CheckpointProgress) TableName() string {
	return "checkpoint_progress"
}

func (CheckpointAttempt) TableName() string {
	return "checkpoint_attempts"
}
