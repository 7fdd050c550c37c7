package services

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"vesello-server/models"
)

// Built-in invitation wizard steps. The fixed prefix collects the
// household and per-guest basics, the fixed suffix closes the flow;
// custom-question steps are planned in between.
const (
	StepWelcome         = "welcome"
	StepGuestIdentity   = "guest-identity"
	StepAttendance      = "attendance"
	StepFoodPreferences = "food-preferences"
	StepAccommodation   = "accommodation"
	StepTransportation  = "transportation"
	StepNotes           = "notes"
	StepReview          = "review"
	StepConfirmation    = "confirmation"
)

var flowPrefix = []string{
	StepWelcome,
	StepGuestIdentity,
	StepAttendance,
	StepFoodPreferences,
	StepAccommodation,
	StepTransportation,
}

var flowSuffix = []string{
	StepNotes,
	StepReview,
	StepConfirmation,
}

var (
	ErrStartOfFlow = errors.New("start of flow")
	ErrEndOfFlow   = errors.New("end of flow")
	// ErrUnknownStep marks a stale step reference (e.g. the question was
	// deactivated after the guest loaded it). Callers recover by
	// re-fetching the plan, they must not treat it as end-of-flow.
	ErrUnknownStep = errors.New("unknown step")
)

const (
	StepKindBuiltin  = "builtin"
	StepKindQuestion = "question"
)

type FlowStep struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	QuestionID uint   `json:"questionID,omitempty"`
}

// FlowPlan is one event's ordered invitation wizard, computed fresh per
// request from the current active-question set. Navigation is O(1)
// against the position index built here.
type FlowPlan struct {
	steps []FlowStep
	index map[string]int
}

// QuestionStepID derives the wizard step id of a custom question.
func QuestionStepID(questionID uint) string {
	return "question-" + strconv.FormatUint(uint64(questionID), 10)
}

// QuestionIDFromStep is the inverse of QuestionStepID; ok is false for
// built-in step ids.
func QuestionIDFromStep(stepID string) (uint, bool) {
	raw, found := strings.CutPrefix(stepID, "question-")
	if !found {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// PlanFlow builds the step sequence for one event. Inactive questions
// are skipped; active ones are ordered by OrderIndex with creation
// order (ID) breaking ties, so the plan is deterministic even when the
// store returned them unordered. An event without custom questions
// still gets the full fixed prefix+suffix flow.
func PlanFlow(questions []models.CustomQuestion) *FlowPlan {
	active := make([]models.CustomQuestion, 0, len(questions))
	for _, q := range questions {
		if q.Active() {
			active = append(active, q)
		}
	}
	slices.SortStableFunc(active, func(a, b models.CustomQuestion) int {
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex - b.OrderIndex
		}
		return int(a.ID) - int(b.ID)
	})

	steps := make([]FlowStep, 0, len(flowPrefix)+len(active)+len(flowSuffix))
	for _, id := range flowPrefix {
		steps = append(steps, FlowStep{ID: id, Kind: StepKindBuiltin})
	}
	for _, q := range active {
		steps = append(steps, FlowStep{
			ID:         QuestionStepID(q.ID),
			Kind:       StepKindQuestion,
			QuestionID: q.ID,
		})
	}
	for _, id := range flowSuffix {
		steps = append(steps, FlowStep{ID: id, Kind: StepKindBuiltin})
	}

	index := make(map[string]int, len(steps))
	for i, s := range steps {
		index[s.ID] = i
	}
	return &FlowPlan{steps: steps, index: index}
}

func (p *FlowPlan) Steps() []FlowStep { return p.steps }

func (p *FlowPlan) Len() int { return len(p.steps) }

// FirstStep is where a fresh guest session starts.
func (p *FlowPlan) FirstStep() string { return p.steps[0].ID }

// NextStep returns the step after current, ErrEndOfFlow at the end, or
// ErrUnknownStep when current is not part of the plan anymore.
func (p *FlowPlan) NextStep(current string) (string, error) {
	pos, ok := p.index[current]
	if !ok {
		return "", ErrUnknownStep
	}
	if pos == len(p.steps)-1 {
		return "", ErrEndOfFlow
	}
	return p.steps[pos+1].ID, nil
}

// PreviousStep returns the step before current, ErrStartOfFlow at the
// beginning, or ErrUnknownStep for a stale reference.
func (p *FlowPlan) PreviousStep(current string) (string, error) {
	pos, ok := p.index[current]
	if !ok {
		return "", ErrUnknownStep
	}
	if pos == 0 {
		return "", ErrStartOfFlow
	}
	return p.steps[pos-1].ID, nil
}
