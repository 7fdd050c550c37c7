package services

import (
	"encoding/json"
	"testing"
	"time"

	"vesello-server/models"
)

var submitTime = time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

func rsvpEvent(enabled bool) *models.Event {
	return &models.Event{ID: 7, PublicID: "ABC1234", RSVPEnabled: enabled, Status: EventStatusActive}
}

func doeHousehold() RSVPSubmissionInput {
	return RSVPSubmissionInput{
		MainGuest:        GuestName{Name: "Jane", Surname: "Doe"},
		AdditionalGuests: []GuestName{{Name: "John", Surname: "Doe"}},
		WeddingDayAttendance: map[string]string{
			"Jane Doe": "will",
			"John Doe": "wont",
		},
	}
}

func TestAggregateSubmissionAccepted(t *testing.T) {
	rsvp, subErr := AggregateSubmission(rsvpEvent(true), nil, doeHousehold(), submitTime)
	if subErr != nil {
		t.Fatalf("unexpected rejection: %v", subErr)
	}
	if rsvp.EventID != 7 {
		t.Fatalf("event id = %d, want 7", rsvp.EventID)
	}
	if rsvp.MainGuestName != "Jane" || rsvp.MainGuestSurname != "Doe" {
		t.Fatalf("main guest = %q %q", rsvp.MainGuestName, rsvp.MainGuestSurname)
	}
	if rsvp.Status != "pending" {
		t.Fatalf("status = %q, want pending", rsvp.Status)
	}
	if !rsvp.SubmittedAt.Equal(submitTime) {
		t.Fatalf("submittedAt = %v", rsvp.SubmittedAt)
	}

	var attendance map[string]string
	if err := json.Unmarshal(rsvp.WeddingDayAttendance, &attendance); err != nil {
		t.Fatal(err)
	}
	if attendance["Jane Doe"] != "will" || attendance["John Doe"] != "wont" {
		t.Fatalf("attendance = %v", attendance)
	}

	// Missing optional categories default to empty maps, not null
	var notes map[string]string
	if err := json.Unmarshal(rsvp.Notes, &notes); err != nil || notes == nil {
		t.Fatalf("notes = %v, %v", notes, err)
	}
}

func TestAggregateSubmissionRSVPDisabledWinsFirst(t *testing.T) {
	// Disabled events reject before any guest-content validation runs,
	// so even an otherwise broken submission reports rsvp_disabled.
	input := RSVPSubmissionInput{
		WeddingDayAttendance: map[string]string{"Jim Doe": "will"},
	}
	_, subErr := AggregateSubmission(rsvpEvent(false), nil, input, submitTime)
	if subErr == nil || subErr.Code != CodeRSVPDisabled {
		t.Fatalf("error = %v, want %s", subErr, CodeRSVPDisabled)
	}
	if _, subErr = AggregateSubmission(nil, nil, input, submitTime); subErr == nil || subErr.Code != CodeRSVPDisabled {
		t.Fatalf("nil event error = %v, want %s", subErr, CodeRSVPDisabled)
	}
}

func TestAggregateSubmissionMissingMainGuest(t *testing.T) {
	tests := []GuestName{
		{},
		{Name: "Jane"},
		{Surname: "Doe"},
		{Name: "  ", Surname: "Doe"},
	}
	for _, main := range tests {
		input := RSVPSubmissionInput{MainGuest: main}
		_, subErr := AggregateSubmission(rsvpEvent(true), nil, input, submitTime)
		if subErr == nil || subErr.Code != CodeMissingMainGuest {
			t.Fatalf("main %+v: error = %v, want %s", main, subErr, CodeMissingMainGuest)
		}
	}
}

func TestAggregateSubmissionUnknownGuestReference(t *testing.T) {
	input := doeHousehold()
	input.WeddingDayAttendance = map[string]string{"Jim Doe": "will"}

	rsvp, subErr := AggregateSubmission(rsvpEvent(true), nil, input, submitTime)
	if rsvp != nil {
		t.Fatal("rejected submission still produced a record")
	}
	if subErr == nil || subErr.Code != CodeUnknownGuestReference {
		t.Fatalf("error = %v, want %s", subErr, CodeUnknownGuestReference)
	}
}

func TestAggregateSubmissionUnknownGuestInAnyCategory(t *testing.T) {
	base := doeHousehold()

	withNotes := base
	withNotes.Notes = map[string]string{"Stranger Person": "hi"}
	if _, subErr := AggregateSubmission(rsvpEvent(true), nil, withNotes, submitTime); subErr == nil || subErr.Code != CodeUnknownGuestReference {
		t.Fatalf("notes: error = %v, want %s", subErr, CodeUnknownGuestReference)
	}

	withAccommodation := base
	withAccommodation.AccommodationNeeded = map[string]bool{"Stranger Person": true}
	if _, subErr := AggregateSubmission(rsvpEvent(true), nil, withAccommodation, submitTime); subErr == nil || subErr.Code != CodeUnknownGuestReference {
		t.Fatalf("accommodation: error = %v, want %s", subErr, CodeUnknownGuestReference)
	}
}

func TestAggregateSubmissionQuestionEventMismatch(t *testing.T) {
	questions := []models.CustomQuestion{
		{ID: 10, EventID: 7, Question: "Song request?"},
		{ID: 11, EventID: 7, Question: "Allergies?", IsActive: boolPtr(false)},
	}

	input := doeHousehold()
	input.CustomResponses = map[string]string{"10": "Dancing Queen"}
	if _, subErr := AggregateSubmission(rsvpEvent(true), questions, input, submitTime); subErr != nil {
		t.Fatalf("own question rejected: %v", subErr)
	}

	// A deactivated question still belongs to the event
	input.CustomResponses = map[string]string{"11": "peanuts"}
	if _, subErr := AggregateSubmission(rsvpEvent(true), questions, input, submitTime); subErr != nil {
		t.Fatalf("inactive question rejected: %v", subErr)
	}

	input.CustomResponses = map[string]string{"99": "other event"}
	_, subErr := AggregateSubmission(rsvpEvent(true), questions, input, submitTime)
	if subErr == nil || subErr.Code != CodeQuestionEventMismatch {
		t.Fatalf("error = %v, want %s", subErr, CodeQuestionEventMismatch)
	}
}

func TestAggregateSubmissionGuestWithoutSurname(t *testing.T) {
	input := doeHousehold()
	input.AdditionalGuests = append(input.AdditionalGuests, GuestName{Name: "Billy"})
	input.WeddingDayAttendance["Billy"] = "will"

	// The household key for a single-name guest is just "Billy", exactly
	// as the client sends it
	rsvp, subErr := AggregateSubmission(rsvpEvent(true), nil, input, submitTime)
	if subErr != nil {
		t.Fatalf("single-name guest rejected: %v", subErr)
	}

	var guests []string
	if err := json.Unmarshal(rsvp.AdditionalGuests, &guests); err != nil {
		t.Fatal(err)
	}
	if len(guests) != 2 || guests[1] != "Billy" {
		t.Fatalf("additional guests = %v", guests)
	}
}
