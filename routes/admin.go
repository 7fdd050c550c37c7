package routes

import (
	"net/http"
	"strings"

	"github.com/kataras/iris/v12"

	"vesello-server/models"
	"vesello-server/services"
	"vesello-server/storage"
	"vesello-server/utils"
)

type AdminCreateEventInput struct {
	Title        string `json:"title" validate:"required,max=255"`
	BrideName    string `json:"brideName" validate:"max=100"`
	GroomName    string `json:"groomName" validate:"max=100"`
	WeddingDate  string `json:"weddingDate" validate:"max=20"`
	VenueName    string `json:"venueName" validate:"max=255"`
	VenueAddress string `json:"venueAddress" validate:"max=512"`
}

type AssignOrganizerInput struct {
	UserID uint `json:"userID" validate:"required"`
}

type UpdateEventStatusInput struct {
	Status string `json:"status" validate:"required,oneof=planned active cancelled"`
}

// AdminListEvents - GET /api/admin/events?status=&q=&page=&per_page=
func AdminListEvents(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	query := storage.DB.Model(&models.Event{})
	if status := strings.TrimSpace(ctx.URLParamDefault("status", "")); status != "" {
		query = query.Where("status = ?", status)
	}
	if q := strings.TrimSpace(ctx.URLParamDefault("q", "")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(title) LIKE ? OR lower(public_id) LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var events []models.Event
	if err := query.Offset((page - 1) * perPage).Limit(perPage).Find(&events).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.JSONPage(ctx, events, page, perPage, total)
}

// AdminCreateEvent - POST /api/admin/events
// Creates an unassigned event; the organizer comes later via assign.
// The public code is minted once here and never changes.
func AdminCreateEvent(ctx iris.Context) {
	var input AdminCreateEventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	event := models.Event{
		PublicID:     utils.GeneratePublicID(),
		Title:        input.Title,
		BrideName:    input.BrideName,
		GroomName:    input.GroomName,
		WeddingDate:  input.WeddingDate,
		VenueName:    input.VenueName,
		VenueAddress: input.VenueAddress,
		Status:       services.EventStatusPlanned,
	}
	if err := storage.DB.Create(&event).Error; err != nil {
		// One retry with a fresh code, and only on a code collision
		if !isDuplicateKey(err) {
			utils.CreateInternalServerError(ctx)
			return
		}
		event.PublicID = utils.GeneratePublicID()
		if err := storage.DB.Create(&event).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	utils.Audit(ctx, "event.create", "event", event.ID, nil, event)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": event})
}

// AdminAssignOrganizer - POST /api/admin/events/{publicID}/organizer
// Writes both directions of the weak relation: organizer_id on the
// event and event_id on the profile.
func AdminAssignOrganizer(ctx iris.Context) {
	publicID := ctx.Params().Get("publicID")
	event, err := services.ResolveByPublicID(storage.DB, publicID)
	if err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	var input AssignOrganizerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, input.UserID).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found", "message": "user not found"})
		return
	}

	before := *event
	event.OrganizerID = &user.ID
	if err := storage.DB.Model(event).Update("organizer_id", user.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if user.Role != services.RoleSuperAdmin {
		storage.DB.Model(&user).Update("role", services.RoleOrganizer)
	}

	var profile models.UserProfile
	if err := storage.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		profile = models.UserProfile{UserID: user.ID, Role: services.RoleOrganizer, EventID: event.PublicID}
		storage.DB.Create(&profile)
	} else {
		updates := map[string]interface{}{"event_id": event.PublicID}
		if profile.Role != services.RoleSuperAdmin {
			updates["role"] = services.RoleOrganizer
		}
		storage.DB.Model(&profile).Updates(updates)
	}

	utils.Audit(ctx, "event.assign_organizer", "event", event.ID, before, event)
	ctx.JSON(iris.Map{"data": event})
}

// AdminUpdateEventStatus - PATCH /api/admin/events/{publicID}/status
// Cancelling takes the public page and invitation flow offline (410).
func AdminUpdateEventStatus(ctx iris.Context) {
	publicID := ctx.Params().Get("publicID")
	event, err := services.ResolveByPublicID(storage.DB, publicID)
	if err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	var input UpdateEventStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := event.Status
	event.Status = input.Status
	if err := storage.DB.Model(event).Update("status", input.Status).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "event.status_update", "event", event.ID, before, event.Status)
	invalidatePageCache(event.PublicID)

	ctx.JSON(iris.Map{"data": event})
}

// AdminListUsers - GET /api/admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		ctx.StatusCode(http.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "server_error", "message": err.Error()})
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// AdminChangeUserRole - PATCH /api/admin/users/{id:uint}/role
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Role == "" {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_role"})
		return
	}
	switch body.Role {
	case services.RoleGuest, services.RoleOrganizer, services.RoleSuperAdmin:
	default:
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_role"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	// Keep the profile's role mirror in sync
	storage.DB.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Update("role", body.Role)

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)

	ctx.JSON(iris.Map{"data": user})
}
