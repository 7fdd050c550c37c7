package services

import (
	"errors"

	"gorm.io/gorm"

	"vesello-server/models"
)

// Event lifecycle statuses.
const (
	EventStatusPlanned   = "planned"
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
)

var (
	ErrEventNotFound = errors.New("event not found")
	// ErrEventGone marks a cancelled event; public endpoints answer 410
	// instead of pretending the code never existed.
	ErrEventGone = errors.New("event cancelled")
)

// ResolveByPublicID looks an event up by its shareable code regardless
// of status. Privileged surfaces (organizer, admin) use this.
func ResolveByPublicID(db *gorm.DB, publicID string) (*models.Event, error) {
	var event models.Event
	if err := db.Where("public_id = ?", publicID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ResolveInternal looks an event up by storage id.
func ResolveInternal(db *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ResolvePublic is ResolveByPublicID with the cancellation filter:
// cancelled events are never returned to public callers even though
// the row still exists.
func ResolvePublic(db *gorm.DB, publicID string) (*models.Event, error) {
	event, err := ResolveByPublicID(db, publicID)
	if err != nil {
		return nil, err
	}
	if event.Status == EventStatusCancelled {
		return nil, ErrEventGone
	}
	return event, nil
}

// ActiveQuestions returns the event's active custom questions in flow
// order: order_index ascending, creation order breaking ties.
func ActiveQuestions(db *gorm.DB, eventID uint) ([]models.CustomQuestion, error) {
	var questions []models.CustomQuestion
	err := db.
		Where("event_id = ? AND is_active = ?", eventID, true).
		Order("order_index ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// EventQuestions returns every question of the event, inactive
// included; the aggregator matches custom responses against this set.
func EventQuestions(db *gorm.DB, eventID uint) ([]models.CustomQuestion, error) {
	var questions []models.CustomQuestion
	err := db.
		Where("event_id = ?", eventID).
		Order("order_index ASC, id ASC").
		Find(&questions).Error
	return questions, err
}
