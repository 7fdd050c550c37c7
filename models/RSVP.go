package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// RSVP is one submitted household response. Per-category answers are
// keyed by guest full name ("Name Surname"); CustomResponses is keyed
// by custom question id. Submissions are append-only: resubmitting
// always inserts a new row, nothing is ever updated in place.
type RSVP struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	EventID uint  `json:"eventID" gorm:"not null;index"`
	Event   Event `json:"-" gorm:"foreignKey:EventID"`

	MainGuestName    string         `json:"mainGuestName" gorm:"size:100;not null"`
	MainGuestSurname string         `json:"mainGuestSurname" gorm:"size:100;not null"`
	AdditionalGuests datatypes.JSON `json:"additionalGuests"` // array of "Name Surname"

	WeddingDayAttendance datatypes.JSON `json:"weddingDayAttendance"` // guest -> will/wont
	AfterPartyAttendance datatypes.JSON `json:"afterPartyAttendance"` // guest -> will/wont
	FoodPreferences      datatypes.JSON `json:"foodPreferences"`      // guest -> preference
	AccommodationNeeded  datatypes.JSON `json:"accommodationNeeded"`  // guest -> bool
	TransportationNeeded datatypes.JSON `json:"transportationNeeded"` // guest -> bool
	Notes                datatypes.JSON `json:"notes"`                // guest -> free text
	CustomResponses      datatypes.JSON `json:"customResponses"`      // question id -> answer

	Email            string `json:"email" gorm:"size:255"`
	SendConfirmation bool   `json:"sendConfirmation"`

	SubmittedAt time.Time `json:"submittedAt"`
	// pending, reviewed
	Status string `json:"status" gorm:"type:varchar(20);default:pending;index"`

	CreatedAt time.Time `json:"createdAt"`
}

// Custom JSON marshaling to handle JSON fields properly
func (r *RSVP) MarshalJSON() ([]byte, error) {
	type Alias RSVP
	aux := &struct {
		AdditionalGuests     []string          `json:"additionalGuests"`
		WeddingDayAttendance map[string]string `json:"weddingDayAttendance"`
		AfterPartyAttendance map[string]string `json:"afterPartyAttendance"`
		FoodPreferences      map[string]string `json:"foodPreferences"`
		AccommodationNeeded  map[string]bool   `json:"accommodationNeeded"`
		TransportationNeeded map[string]bool   `json:"transportationNeeded"`
		Notes                map[string]string `json:"notes"`
		CustomResponses      map[string]string `json:"customResponses"`
		*Alias
	}{
		AdditionalGuests:     []string{},
		WeddingDayAttendance: map[string]string{},
		AfterPartyAttendance: map[string]string{},
		FoodPreferences:      map[string]string{},
		AccommodationNeeded:  map[string]bool{},
		TransportationNeeded: map[string]bool{},
		Notes:                map[string]string{},
		CustomResponses:      map[string]string{},
		Alias:                (*Alias)(r),
	}

	if r.AdditionalGuests != nil {
		var guests []string
		if err := json.Unmarshal(r.AdditionalGuests, &guests); err == nil {
			aux.AdditionalGuests = guests
		}
	}
	if r.WeddingDayAttendance != nil {
		var m map[string]string
		if err := json.Unmarshal(r.WeddingDayAttendance, &m); err == nil {
			aux.WeddingDayAttendance = m
		}
	}
	if r.AfterPartyAttendance != nil {
		var m map[string]string
		if err := json.Unmarshal(r.AfterPartyAttendance, &m); err == nil {
			aux.AfterPartyAttendance = m
		}
	}
	if r.FoodPreferences != nil {
		var m map[string]string
		if err := json.Unmarshal(r.FoodPreferences, &m); err == nil {
			aux.FoodPreferences = m
		}
	}
	if r.AccommodationNeeded != nil {
		var m map[string]bool
		if err := json.Unmarshal(r.AccommodationNeeded, &m); err == nil {
			aux.AccommodationNeeded = m
		}
	}
	if r.TransportationNeeded != nil {
		var m map[string]bool
		if err := json.Unmarshal(r.TransportationNeeded, &m); err == nil {
			aux.TransportationNeeded = m
		}
	}
	if r.Notes != nil {
		var m map[string]string
		if err := json.Unmarshal(r.Notes, &m); err == nil {
			aux.Notes = m
		}
	}
	if r.CustomResponses != nil {
		var m map[string]string
		if err := json.Unmarshal(r.CustomResponses, &m); err == nil {
			aux.CustomResponses = m
		}
	}

	return json.Marshal(aux)
}
