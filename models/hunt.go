// models/hunt.go - Hunts and their ordered checkpoints
package models

import (
	"time"
)

// Hunt is a themed sequence of checkpoints authored by a creator.
type Hunt struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	CreatorID   *uint   `gorm:"index" json:"creator_id"`
	Creator     *User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Title       string  `gorm:"not null;size:200" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	CoverURL    string  `json:"cover_url"`
	IsPublished bool    `gorm:"default:false" json:"is_published"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
	AccessCode  *string `gorm:"uniqueIndex" json:"access_code,omitempty"`
	Version     int     `gorm:"default:1" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Checkpoints []Checkpoint `gorm:"foreignKey:HuntID" json:"checkpoints,omitempty"`
}

// Checkpoint is one stop in a hunt. Position is 1-based and unique within the
// hunt; the answer never leaves the server.
type Checkpoint struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	HuntID   uint   `gorm:"not null;uniqueIndex:idx_checkpoints_hunt_position,priority:1" json:"hunt_id"`
	Hunt     *Hunt  `gorm:"foreignKey:HuntID" json:"hunt,omitempty"`
	Position int    `gorm:"not null;uniqueIndex:idx_checkpoints_hunt_position,priority:2" json:"position"`
	Title    string `gorm:"not null;size:200" json:"title"`
	Riddle   string `gorm:"not null;type:text" json:"riddle"`
	Answer   string `gorm:"not null;size:500" json:"-"`
	Hint     string `json:"hint,omitempty"`

	// Geofence: all three must be set for the fence to apply.
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	ToleranceRadius *float64 `json:"tolerance_radius,omitempty"` // meters

	// Optional cap on submissions per run.
	MaxAttempts *int `json:"max_attempts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasGeofence reports whether the checkpoint defines a complete circular fence.
func (c *Checkpoint) HasGeofence() bool {
	return c.Lat != nil && c.Lng != nil && c.ToleranceRadius != nil
}

func (Hunt) TableName() string {
	return "hunts"
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}
