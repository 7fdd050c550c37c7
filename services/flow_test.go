package services

import (
	"errors"
	"testing"

	"vesello-server/models"
)

func boolPtr(b bool) *bool { return &b }

func question(id uint, orderIndex int, active bool) models.CustomQuestion {
	return models.CustomQuestion{ID: id, EventID: 1, Question: "q", OrderIndex: orderIndex, IsActive: boolPtr(active)}
}

func TestPlanFlowWithoutQuestions(t *testing.T) {
	plan := PlanFlow(nil)

	want := len(flowPrefix) + len(flowSuffix)
	if plan.Len() != want {
		t.Fatalf("flow length = %d, want %d", plan.Len(), want)
	}
	if plan.FirstStep() != StepWelcome {
		t.Fatalf("first step = %q, want %q", plan.FirstStep(), StepWelcome)
	}
	last := plan.Steps()[plan.Len()-1]
	if last.ID != StepConfirmation {
		t.Fatalf("last step = %q, want %q", last.ID, StepConfirmation)
	}
}

func TestPlanFlowInsertsActiveQuestionsBetweenPrefixAndSuffix(t *testing.T) {
	// Event "ABC1234": two active questions plus one inactive
	plan := PlanFlow([]models.CustomQuestion{
		question(11, 2, true),
		question(10, 1, true),
		question(12, 3, false),
	})

	if plan.Len() != 11 {
		t.Fatalf("flow length = %d, want 11", plan.Len())
	}

	steps := plan.Steps()
	if steps[6].ID != "question-10" || steps[7].ID != "question-11" {
		t.Fatalf("question steps out of order: %q, %q", steps[6].ID, steps[7].ID)
	}
	for _, s := range steps {
		if s.QuestionID == 12 {
			t.Fatalf("inactive question contributed step %q", s.ID)
		}
	}
	if steps[5].ID != StepTransportation || steps[8].ID != StepNotes {
		t.Fatalf("questions not between prefix and suffix: %q .. %q", steps[5].ID, steps[8].ID)
	}
}

func TestPlanFlowBreaksOrderTiesByCreation(t *testing.T) {
	plan := PlanFlow([]models.CustomQuestion{
		question(21, 1, true),
		question(20, 1, true),
	})
	steps := plan.Steps()
	if steps[6].ID != "question-20" || steps[7].ID != "question-21" {
		t.Fatalf("tie not broken by creation order: %q, %q", steps[6].ID, steps[7].ID)
	}
}

func TestFlowNavigation(t *testing.T) {
	plan := PlanFlow([]models.CustomQuestion{question(5, 1, true)})

	next, err := plan.NextStep(StepWelcome)
	if err != nil || next != StepGuestIdentity {
		t.Fatalf("NextStep(welcome) = %q, %v", next, err)
	}

	// Round trip lands back on the starting step
	afterTransport, err := plan.NextStep(StepTransportation)
	if err != nil || afterTransport != "question-5" {
		t.Fatalf("NextStep(transportation) = %q, %v", afterTransport, err)
	}
	back, err := plan.PreviousStep(afterTransport)
	if err != nil || back != StepTransportation {
		t.Fatalf("PreviousStep(%q) = %q, %v", afterTransport, back, err)
	}

	if _, err := plan.PreviousStep(StepWelcome); !errors.Is(err, ErrStartOfFlow) {
		t.Fatalf("PreviousStep at start = %v, want ErrStartOfFlow", err)
	}
	if _, err := plan.NextStep(StepConfirmation); !errors.Is(err, ErrEndOfFlow) {
		t.Fatalf("NextStep at end = %v, want ErrEndOfFlow", err)
	}
}

func TestFlowNavigationUnknownStep(t *testing.T) {
	plan := PlanFlow(nil)

	// A question deactivated mid-session must not read as end-of-flow
	if _, err := plan.NextStep("question-99"); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("NextStep(stale) = %v, want ErrUnknownStep", err)
	}
	if _, err := plan.PreviousStep("question-99"); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("PreviousStep(stale) = %v, want ErrUnknownStep", err)
	}
}

func TestQuestionStepIDRoundTrip(t *testing.T) {
	id, ok := QuestionIDFromStep(QuestionStepID(37))
	if !ok || id != 37 {
		t.Fatalf("round trip = %d, %v", id, ok)
	}
	if _, ok := QuestionIDFromStep(StepWelcome); ok {
		t.Fatal("built-in step parsed as question")
	}
}
