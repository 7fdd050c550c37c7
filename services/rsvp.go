package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/datatypes"

	"vesello-server/models"
)

// Submission rejection codes, surfaced verbatim in error envelopes.
const (
	CodeRSVPDisabled          = "rsvp_disabled"
	CodeMissingMainGuest      = "missing_main_guest"
	CodeUnknownGuestReference = "unknown_guest_reference"
	CodeQuestionEventMismatch = "question_event_mismatch"
)

type SubmissionError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *SubmissionError) Error() string { return e.Code + ": " + e.Message }

type GuestName struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Full joins the name parts into the household key used across the
// per-category answer maps. A missing part never leaves a stray space:
// "John" + "" keys as "John", matching what clients send.
func (g GuestName) Full() string {
	return strings.TrimSpace(strings.TrimSpace(g.Name) + " " + strings.TrimSpace(g.Surname))
}

// RSVPSubmissionInput is the fully collected household submission as
// the wizard posts it. Per-category maps are keyed by guest full name;
// CustomResponses by custom question id (decimal string). Intentionally
// carries no validate tags: the aggregator's rule order is the contract
// and a struct-level validator would fire out of order.
type RSVPSubmissionInput struct {
	MainGuest        GuestName   `json:"mainGuest"`
	AdditionalGuests []GuestName `json:"additionalGuests"`

	WeddingDayAttendance map[string]string `json:"weddingDayAttendance"`
	AfterPartyAttendance map[string]string `json:"afterPartyAttendance"`
	FoodPreferences      map[string]string `json:"foodPreferences"`
	AccommodationNeeded  map[string]bool   `json:"accommodationNeeded"`
	TransportationNeeded map[string]bool   `json:"transportationNeeded"`
	Notes                map[string]string `json:"notes"`
	CustomResponses      map[string]string `json:"customResponses"`

	Email            string `json:"email"`
	SendConfirmation bool   `json:"sendConfirmation"`
}

// AggregateSubmission validates one submission against the resolved
// event and its question set, first violated rule wins, and normalizes
// it into the row shape for an insert. questions must be the event's
// full question set (inactive included: an answer to a question that
// was live during the session still belongs to this event). It never
// writes; persistence is the caller's single insert afterwards.
func AggregateSubmission(event *models.Event, questions []models.CustomQuestion, input RSVPSubmissionInput, now time.Time) (*models.RSVP, *SubmissionError) {
	if event == nil || !event.RSVPEnabled {
		return nil, &SubmissionError{CodeRSVPDisabled, "RSVP is not enabled for this event."}
	}

	mainName := strings.TrimSpace(input.MainGuest.Name)
	mainSurname := strings.TrimSpace(input.MainGuest.Surname)
	if mainName == "" || mainSurname == "" {
		return nil, &SubmissionError{CodeMissingMainGuest, "Main guest name and surname are required."}
	}

	household := []string{mainName + " " + mainSurname}
	additional := make([]string, 0, len(input.AdditionalGuests))
	for _, g := range input.AdditionalGuests {
		full := g.Full()
		if full == "" {
			continue
		}
		household = append(household, full)
		additional = append(additional, full)
	}

	for _, keys := range [][]string{
		mapKeys(input.WeddingDayAttendance),
		mapKeys(input.AfterPartyAttendance),
		mapKeys(input.FoodPreferences),
		boolMapKeys(input.AccommodationNeeded),
		boolMapKeys(input.TransportationNeeded),
		mapKeys(input.Notes),
	} {
		for _, guest := range keys {
			if !slices.Contains(household, guest) {
				return nil, &SubmissionError{CodeUnknownGuestReference, "Answer references unknown guest: " + guest}
			}
		}
	}

	eventQuestions := make([]string, 0, len(questions))
	for _, q := range questions {
		eventQuestions = append(eventQuestions, strconv.FormatUint(uint64(q.ID), 10))
	}
	for qid := range input.CustomResponses {
		if !slices.Contains(eventQuestions, qid) {
			return nil, &SubmissionError{CodeQuestionEventMismatch, "Answer references a question of another event: " + qid}
		}
	}

	rsvp := &models.RSVP{
		EventID:              event.ID,
		MainGuestName:        mainName,
		MainGuestSurname:     mainSurname,
		AdditionalGuests:     mustJSON(additional),
		WeddingDayAttendance: mustJSON(orEmpty(input.WeddingDayAttendance)),
		AfterPartyAttendance: mustJSON(orEmpty(input.AfterPartyAttendance)),
		FoodPreferences:      mustJSON(orEmpty(input.FoodPreferences)),
		AccommodationNeeded:  mustJSON(orEmptyBool(input.AccommodationNeeded)),
		TransportationNeeded: mustJSON(orEmptyBool(input.TransportationNeeded)),
		Notes:                mustJSON(orEmpty(input.Notes)),
		CustomResponses:      mustJSON(orEmpty(input.CustomResponses)),
		Email:                strings.TrimSpace(input.Email),
		SendConfirmation:     input.SendConfirmation,
		SubmittedAt:          now,
		Status:               "pending",
	}
	return rsvp, nil
}

func mapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func boolMapKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptyBool(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

func mustJSON(v interface{}) datatypes.JSON {
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}
