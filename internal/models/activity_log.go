// internal/models/activity_log.go
package models

import (
	"time"
)

// ActivityLog is an append-only audit record; the application never updates
// or deletes rows.
type ActivityLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id,omitempty" gorm:"index"`
	Username   string    `json:"username" gorm:"size:50;index"`
	Action     string    `json:"action" gorm:"size:50;not null;index"`
	Resource   string    `json:"resource" gorm:"size:50;not null;index"`
	ResourceID *uint     `json:"resource_id,omitempty" gorm:"index"`
	Details    string    `json:"details" gorm:"type:text"`
	IPAddress  string    `json:"ip_address,omitempty" gorm:"size:45"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
