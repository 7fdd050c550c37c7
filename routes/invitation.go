package routes

import (
	"errors"
	"time"

	"github.com/kataras/iris/v12"

	"vesello-server/models"
	"vesello-server/services"
	"vesello-server/storage"
	"vesello-server/utils"
)

// requireInvitation gates the guest-facing wizard: public resolve
// (cancelled -> 410) plus the RSVP feature toggle.
func requireInvitation(ctx iris.Context) *models.Event {
	event := resolvePublicEvent(ctx)
	if event == nil {
		return nil
	}
	if !event.RSVPEnabled {
		utils.JSONError(ctx, iris.StatusForbidden, services.CodeRSVPDisabled, "RSVP is not enabled for this event.")
		return nil
	}
	return event
}

// planEventFlow recomputes the wizard from the current active-question
// set. The plan is request-scoped on purpose: a question deactivated
// mid-session disappears from the very next navigation decision.
func planEventFlow(ctx iris.Context, event *models.Event) *services.FlowPlan {
	questions, err := services.ActiveQuestions(storage.DB, event.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	return services.PlanFlow(questions)
}

// GetInvitationFlow - GET /api/invitation/{publicID}/flow
func GetInvitationFlow(ctx iris.Context) {
	event := requireInvitation(ctx)
	if event == nil {
		return
	}
	plan := planEventFlow(ctx, event)
	if plan == nil {
		return
	}

	ctx.JSON(iris.Map{
		"steps":     plan.Steps(),
		"firstStep": plan.FirstStep(),
	})
}

// GetNextStep - GET /api/invitation/{publicID}/flow/next?current=attendance
func GetNextStep(ctx iris.Context) {
	stepNavigation(ctx, func(plan *services.FlowPlan, current string) (string, error) {
		return plan.NextStep(current)
	}, "end")
}

// GetPreviousStep - GET /api/invitation/{publicID}/flow/previous?current=attendance
func GetPreviousStep(ctx iris.Context) {
	stepNavigation(ctx, func(plan *services.FlowPlan, current string) (string, error) {
		return plan.PreviousStep(current)
	}, "start")
}

func stepNavigation(ctx iris.Context, move func(*services.FlowPlan, string) (string, error), boundary string) {
	event := requireInvitation(ctx)
	if event == nil {
		return
	}

	current := ctx.URLParam("current")
	if current == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "current step is required", ctx)
		return
	}

	plan := planEventFlow(ctx, event)
	if plan == nil {
		return
	}

	step, err := move(plan, current)
	switch {
	case errors.Is(err, services.ErrUnknownStep):
		// Stale reference (question toggled off mid-session): tell the
		// client to re-fetch the flow instead of pretending it ended.
		utils.JSONError(ctx, iris.StatusNotFound, "unknown_step", "Step is not part of the current flow; re-fetch the plan.")
	case errors.Is(err, services.ErrEndOfFlow), errors.Is(err, services.ErrStartOfFlow):
		ctx.JSON(iris.Map{"step": nil, "boundary": boundary})
	case err != nil:
		utils.CreateInternalServerError(ctx)
	default:
		ctx.JSON(iris.Map{"step": step})
	}
}

// SubmitRSVP - POST /api/invitation/{publicID}/rsvp
// Always inserts a new record; resubmission from the same household is
// not deduplicated.
func SubmitRSVP(ctx iris.Context) {
	event := resolvePublicEvent(ctx)
	if event == nil {
		return
	}

	var input services.RSVPSubmissionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	questions, err := services.EventQuestions(storage.DB, event.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	rsvp, subErr := services.AggregateSubmission(event, questions, input, time.Now().UTC())
	if subErr != nil {
		status := iris.StatusUnprocessableEntity
		if subErr.Code == services.CodeRSVPDisabled {
			status = iris.StatusForbidden
		}
		utils.JSONError(ctx, status, subErr.Code, subErr.Message)
		return
	}

	if err := storage.DB.Create(rsvp).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": rsvp})
}

// ListEventRSVPs - GET /api/events/{publicID}/rsvps (organizer/admin)
func ListEventRSVPs(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionRead)
	if event == nil {
		return
	}

	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	query := storage.DB.Model(&models.RSVP{}).Where("event_id = ?", event.ID)

	var total int64
	query.Count(&total)

	var rsvps []models.RSVP
	if err := query.Order("submitted_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&rsvps).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, rsvps, page, perPage, total)
}
