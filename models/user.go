// models/user.go
package models

import (
	"time"
)

type User struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Username  string  `gorm:"uniqueIndex;not null" json:"username"`
	Email     *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password  string  `gorm:"not null" json:"-"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `gorm:"default:'player';size:20" json:"role"` // player, creator, admin
	Avatar    string  `json:"avatar"`
	IsGuest   bool    `gorm:"default:false" json:"is_guest"`

	// Cached count of earned badges, refreshed on grant
	BadgeCount int `gorm:"default:0" json:"badge_count"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Badges []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
	Runs   []PlayerRun `gorm:"foreignKey:UserID" json:"runs,omitempty"`
}

func (User) TableName() string {
	return "users"
}
