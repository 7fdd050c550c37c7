package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event is one wedding microsite. PublicID is the short shareable code
// printed on invitations; it is assigned at creation and never changes.
type Event struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PublicID string `json:"publicID" gorm:"uniqueIndex;size:16;not null"`

	Title        string `json:"title" gorm:"size:255"`
	BrideName    string `json:"brideName" gorm:"size:100"`
	GroomName    string `json:"groomName" gorm:"size:100"`
	WeddingDate  string `json:"weddingDate" gorm:"size:20"` // "2026-09-12"
	VenueName    string `json:"venueName" gorm:"size:255"`
	VenueAddress string `json:"venueAddress" gorm:"size:512"`

	// planned, active, cancelled
	Status string `json:"status" gorm:"type:varchar(20);default:planned;index"`

	// Unassigned events (created by a superadmin ahead of onboarding) have no organizer yet
	OrganizerID *uint `json:"organizerID" gorm:"index"`
	Organizer   *User `json:"organizer" gorm:"foreignKey:OrganizerID"`

	GalleryEnabled bool `json:"galleryEnabled" gorm:"default:false"`
	RSVPEnabled    bool `json:"rsvpEnabled" gorm:"default:false"`

	// Named content sections of the public page
	SectionVisibility datatypes.JSON `json:"sectionVisibility"` // map[section]bool
	SectionContent    datatypes.JSON `json:"sectionContent"`    // map[section]arbitrary content
	Settings          datatypes.JSON `json:"settings"`          // ad hoc extensions

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}

// Custom JSON marshaling to handle JSON fields properly
func (e *Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	aux := &struct {
		SectionVisibility map[string]bool            `json:"sectionVisibility"`
		SectionContent    map[string]json.RawMessage `json:"sectionContent"`
		Settings          map[string]json.RawMessage `json:"settings"`
		*Alias
	}{
		SectionVisibility: map[string]bool{},
		SectionContent:    map[string]json.RawMessage{},
		Settings:          map[string]json.RawMessage{},
		Alias:             (*Alias)(e),
	}

	if e.SectionVisibility != nil {
		var visibility map[string]bool
		if err := json.Unmarshal(e.SectionVisibility, &visibility); err == nil {
			aux.SectionVisibility = visibility
		}
	}

	if e.SectionContent != nil {
		var content map[string]json.RawMessage
		if err := json.Unmarshal(e.SectionContent, &content); err == nil {
			aux.SectionContent = content
		}
	}

	if e.Settings != nil {
		var settings map[string]json.RawMessage
		if err := json.Unmarshal(e.Settings, &settings); err == nil {
			aux.Settings = settings
		}
	}

	return json.Marshal(aux)
}

// VisibleSections returns the section visibility map, never nil.
func (e *Event) VisibleSections() map[string]bool {
	visibility := map[string]bool{}
	if e.SectionVisibility != nil {
		json.Unmarshal(e.SectionVisibility, &visibility)
	}
	return visibility
}
