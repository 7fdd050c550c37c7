package models

import (
	"time"

	"gorm.io/datatypes"
)

// CustomQuestion is one organizer-defined RSVP question. Active
// questions are planned into the invitation flow ordered by OrderIndex,
// ties broken by ID (creation order). Deactivating is a soft delete so
// answers already submitted keep resolving.
type CustomQuestion struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	EventID uint  `json:"eventID" gorm:"not null;index"`
	Event   Event `json:"-" gorm:"foreignKey:EventID"`

	Question string `json:"question" gorm:"type:text;not null"`
	// text, yes-no, choice
	Type    string         `json:"type" gorm:"size:20;default:text"`
	Options datatypes.JSON `json:"options"` // choice answers, array of strings

	OrderIndex int   `json:"orderIndex" gorm:"index;default:0"`
	IsActive   *bool `json:"isActive" gorm:"default:true;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (q *CustomQuestion) Active() bool {
	return q.IsActive == nil || *q.IsActive
}
