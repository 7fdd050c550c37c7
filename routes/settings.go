package routes

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kataras/iris/v12"
	qrcode "github.com/skip2/go-qrcode"

	"vesello-server/services"
	"vesello-server/storage"
	"vesello-server/utils"
)

const shareTokenTTL = 30 * 24 * time.Hour

type SectionVisibilityInput struct {
	Sections map[string]bool `json:"sections" validate:"required"`
}

type SectionContentInput struct {
	Sections map[string]json.RawMessage `json:"sections" validate:"required"`
}

type FeatureTogglesInput struct {
	RSVPEnabled    *bool `json:"rsvpEnabled"`
	GalleryEnabled *bool `json:"galleryEnabled"`
}

// UpdateSectionVisibility - PATCH /api/events/{publicID}/sections/visibility
// Concurrent organizer edits race last-write-wins on the event row;
// there is no merge of simultaneous section updates.
func UpdateSectionVisibility(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	var input SectionVisibilityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	visibility := event.VisibleSections()
	for name, shown := range input.Sections {
		visibility[name] = shown
	}

	before := event.SectionVisibility
	merged, _ := json.Marshal(visibility)
	event.SectionVisibility = merged
	if err := storage.DB.Model(event).Update("section_visibility", event.SectionVisibility).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "event.section_visibility_update", "event", event.ID, before, event.SectionVisibility)
	invalidatePageCache(event.PublicID)

	ctx.JSON(iris.Map{"data": event})
}

// UpdateSectionContent - PATCH /api/events/{publicID}/sections/content
func UpdateSectionContent(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	var input SectionContentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	content := map[string]json.RawMessage{}
	if event.SectionContent != nil {
		json.Unmarshal(event.SectionContent, &content)
	}
	for name, body := range input.Sections {
		content[name] = body
	}

	before := event.SectionContent
	merged, _ := json.Marshal(content)
	event.SectionContent = merged
	if err := storage.DB.Model(event).Update("section_content", event.SectionContent).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "event.section_content_update", "event", event.ID, before, event.SectionContent)
	invalidatePageCache(event.PublicID)

	ctx.JSON(iris.Map{"data": event})
}

// UpdateFeatureToggles - PATCH /api/events/{publicID}/toggles
func UpdateFeatureToggles(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	var input FeatureTogglesInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.RSVPEnabled != nil {
		event.RSVPEnabled = *input.RSVPEnabled
		updates["rsvp_enabled"] = *input.RSVPEnabled
	}
	if input.GalleryEnabled != nil {
		event.GalleryEnabled = *input.GalleryEnabled
		updates["gallery_enabled"] = *input.GalleryEnabled
	}
	if len(updates) == 0 {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "No toggle provided.", ctx)
		return
	}

	if err := storage.DB.Model(event).Updates(updates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "event.toggles_update", "event", event.ID, nil, updates)
	invalidatePageCache(event.PublicID)

	ctx.JSON(iris.Map{"data": event})
}

// GetEventSettings - GET /api/events/{publicID}/settings (privileged read)
func GetEventSettings(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionRead)
	if event == nil {
		return
	}
	ctx.JSON(iris.Map{"data": event})
}

func publicEventURL(publicID string) string {
	base := os.Getenv("PUBLIC_SITE_BASE_URL")
	if base == "" {
		base = "https://vesello.app/event"
	}
	return base + "/" + publicID
}

// GetShareLink - GET /api/events/{publicID}/share
// Each call mints a fresh share token so individual copies of the link
// can be told apart; the token resolves back to the event in redis.
func GetShareLink(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionRead)
	if event == nil {
		return
	}

	token := utils.GenerateShortToken(8)
	storage.Redis.Set(bgContext, "share-token:"+token, event.PublicID, shareTokenTTL)

	ctx.JSON(iris.Map{
		"url":   publicEventURL(event.PublicID) + "?share=" + token,
		"token": token,
	})
}

// GetEventQR - GET /api/events/{publicID}/qr
// Returns a PNG QR of the public invitation link. Generation is glue;
// the access decision is the same predicate as every other privileged
// operation.
func GetEventQR(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionRead)
	if event == nil {
		return
	}

	size := ctx.URLParamIntDefault("size", 512)
	if size < 128 || size > 2048 {
		size = 512
	}

	png, err := qrcode.Encode(publicEventURL(event.PublicID), qrcode.Medium, size)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.ContentType("image/png")
	ctx.Write(png)
}
