package routes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"

	"vesello-server/models"
	"vesello-server/services"
	"vesello-server/storage"
	"vesello-server/utils"
)

var bgContext = context.Background()

// isDuplicateKey reports whether err is a unique-constraint violation.
// Matched by message as well because error translation is not enabled
// on the gorm config.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// resolveCaller builds the authorization caller from the verified
// access token plus a profile lookup. A valid token whose profile is
// missing yields a roleless caller, which the predicate denies as
// forbidden (authenticated but unknown) rather than unauthorized.
func resolveCaller(ctx iris.Context) *services.Caller {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		return nil
	}
	claims := tok.(*utils.AccessToken)
	caller := &services.Caller{UserID: claims.ID}

	var profile models.UserProfile
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error; err == nil {
		caller.Role = profile.Role
		caller.EventID = profile.EventID
	}
	return caller
}

// requireEventAccess resolves the {publicID} event and runs the one
// ownership predicate. Every privileged event operation goes through
// here; per-endpoint checks are deliberately absent. Returns nil after
// writing the error response when the caller may not proceed.
func requireEventAccess(ctx iris.Context, action services.Action) *models.Event {
	publicID := ctx.Params().Get("publicID")

	event, err := services.ResolveByPublicID(storage.DB, publicID)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "Event not found.")
		} else {
			utils.CreateInternalServerError(ctx)
		}
		return nil
	}

	verdict := services.Authorize(resolveCaller(ctx), event, action)
	if !verdict.Allowed {
		status := http.StatusForbidden
		if verdict.Reason == services.DenyUnauthorized {
			status = http.StatusUnauthorized
		}
		utils.JSONError(ctx, status, string(verdict.Reason), "You have no access to this event.")
		return nil
	}
	return event
}

// resolvePublicEvent is the unprivileged counterpart: cancelled events
// answer 410, disabled features are checked by the caller.
func resolvePublicEvent(ctx iris.Context) *models.Event {
	publicID := ctx.Params().Get("publicID")

	event, err := services.ResolvePublic(storage.DB, publicID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventGone):
			utils.JSONError(ctx, http.StatusGone, "gone", "This event is no longer available.")
		case errors.Is(err, services.ErrEventNotFound):
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "Event not found.")
		default:
			utils.CreateInternalServerError(ctx)
		}
		return nil
	}
	return event
}
