package models

import (
	"time"
)

// GalleryItem is one media record of an event's gallery. The binary
// lives at the CDN; this row only tracks the URL and the CDN public id
// needed to delete it.
type GalleryItem struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	EventID uint  `json:"eventID" gorm:"not null;index"`
	Event   Event `json:"-" gorm:"foreignKey:EventID"`

	URL      string `json:"url" gorm:"size:512;not null"`
	PublicID string `json:"publicID" gorm:"size:255"`

	UploadedByID uint `json:"uploadedByID" gorm:"index"`

	CreatedAt time.Time `json:"createdAt"`
}
