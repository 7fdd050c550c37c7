package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile is the principal record consulted by authorization.
// An organizer administers at most one event, referenced by its public
// code in EventID; the Event row points back via OrganizerID. The
// relation is looked up in both directions, never traversed through a
// stored object reference.
type UserProfile struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"userID" gorm:"not null;uniqueIndex"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	// Mirrors users.role; kept here so one profile lookup answers
	// both "who are you" and "which event is yours"
	Role string `json:"role" gorm:"type:varchar(20);default:guest;index"`

	// Public code of the administered event, empty when unassigned
	EventID string `json:"eventID" gorm:"size:16;index"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}
