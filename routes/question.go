package routes

import (
	"encoding/json"

	"github.com/kataras/iris/v12"

	"vesello-server/models"
	"vesello-server/services"
	"vesello-server/storage"
	"vesello-server/utils"
)

type CreateQuestionInput struct {
	Question   string   `json:"question" validate:"required"`
	Type       string   `json:"type" validate:"omitempty,oneof=text yes-no choice"`
	Options    []string `json:"options"`
	OrderIndex int      `json:"orderIndex"`
}

type UpdateQuestionInput struct {
	Question   *string   `json:"question"`
	Type       *string   `json:"type"`
	Options    *[]string `json:"options"`
	OrderIndex *int      `json:"orderIndex"`
}

type ReorderQuestionsInput struct {
	// Question ids in their new flow order
	QuestionIDs []uint `json:"questionIDs" validate:"required,min=1"`
}

// ListCustomQuestions - GET /api/events/{publicID}/questions
// Organizer view: includes inactive questions.
func ListCustomQuestions(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionRead)
	if event == nil {
		return
	}

	questions, err := services.EventQuestions(storage.DB, event.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"data": questions})
}

// CreateCustomQuestion - POST /api/events/{publicID}/questions
func CreateCustomQuestion(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	var input CreateQuestionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	questionType := input.Type
	if questionType == "" {
		questionType = "text"
	}
	options, _ := json.Marshal(input.Options)

	question := models.CustomQuestion{
		EventID:    event.ID,
		Question:   input.Question,
		Type:       questionType,
		Options:    options,
		OrderIndex: input.OrderIndex,
	}
	if err := storage.DB.Create(&question).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "question.create", "custom_question", question.ID, nil, question)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": question})
}

// UpdateCustomQuestion - PATCH /api/events/{publicID}/questions/{questionID:uint}
func UpdateCustomQuestion(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	question := findEventQuestion(ctx, event.ID)
	if question == nil {
		return
	}

	var input UpdateQuestionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := *question
	if input.Question != nil {
		question.Question = *input.Question
	}
	if input.Type != nil {
		question.Type = *input.Type
	}
	if input.Options != nil {
		options, _ := json.Marshal(*input.Options)
		question.Options = options
	}
	if input.OrderIndex != nil {
		question.OrderIndex = *input.OrderIndex
	}

	if err := storage.DB.Save(question).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "question.update", "custom_question", question.ID, before, question)
	ctx.JSON(iris.Map{"data": question})
}

// ReorderCustomQuestions - PUT /api/events/{publicID}/questions/order
// Assigns OrderIndex by position of each id in the submitted list.
func ReorderCustomQuestions(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	var input ReorderQuestionsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	for position, questionID := range input.QuestionIDs {
		result := storage.DB.Model(&models.CustomQuestion{}).
			Where("id = ? AND event_id = ?", questionID, event.ID).
			Update("order_index", position+1)
		if result.Error != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		if result.RowsAffected == 0 {
			utils.JSONError(ctx, iris.StatusUnprocessableEntity, "question_event_mismatch", "Question does not belong to this event.")
			return
		}
	}

	utils.Audit(ctx, "question.reorder", "event", event.ID, nil, input.QuestionIDs)

	questions, err := services.EventQuestions(storage.DB, event.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"data": questions})
}

// DeactivateCustomQuestion - DELETE /api/events/{publicID}/questions/{questionID:uint}
// Soft delete: the question stops contributing a flow step but already
// submitted answers keep resolving against it.
func DeactivateCustomQuestion(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	question := findEventQuestion(ctx, event.ID)
	if question == nil {
		return
	}

	inactive := false
	question.IsActive = &inactive
	if err := storage.DB.Model(question).Update("is_active", false).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "question.deactivate", "custom_question", question.ID, nil, question)
	ctx.JSON(iris.Map{"data": question})
}

func findEventQuestion(ctx iris.Context, eventID uint) *models.CustomQuestion {
	questionID, err := ctx.Params().GetUint("questionID")
	if err != nil {
		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return nil
	}

	var question models.CustomQuestion
	if err := storage.DB.Where("id = ? AND event_id = ?", questionID, eventID).First(&question).Error; err != nil {
		ctx.StopWithJSON(iris.StatusNotFound, iris.Map{"error": "not_found"})
		return nil
	}
	return &question
}
