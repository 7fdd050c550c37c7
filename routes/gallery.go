package routes

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"

	"vesello-server/models"
	"vesello-server/services"
	"vesello-server/storage"
	"vesello-server/utils"
)

type UploadGalleryItemInput struct {
	Image string `json:"image" validate:"required"` // base64 data URL
}

// ListGalleryItems - GET /api/gallery/{publicID} (public)
func ListGalleryItems(ctx iris.Context) {
	event := resolvePublicEvent(ctx)
	if event == nil {
		return
	}
	if !event.GalleryEnabled {
		utils.JSONError(ctx, iris.StatusForbidden, "gallery_disabled", "Gallery is not enabled for this event.")
		return
	}

	var items []models.GalleryItem
	if err := storage.DB.Where("event_id = ?", event.ID).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"data": items})
}

// UploadGalleryItem - POST /api/events/{publicID}/gallery
// The binary goes to the CDN collaborator; only the URL and the CDN
// public id are recorded here.
func UploadGalleryItem(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}
	if !event.GalleryEnabled {
		utils.JSONError(ctx, iris.StatusForbidden, "gallery_disabled", "Gallery is not enabled for this event.")
		return
	}

	var input UploadGalleryItemInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	publicID := fmt.Sprintf("galleries/%s/%s", event.PublicID, uuid.NewString())
	url, err := storage.Media.UploadBase64(input.Image, publicID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	uploaderID, _ := ctx.Values().Get("userID").(uint)

	item := models.GalleryItem{
		EventID:      event.ID,
		URL:          url,
		PublicID:     publicID,
		UploadedByID: uploaderID,
	}
	if err := storage.DB.Create(&item).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": item})
}

// DeleteGalleryItem - DELETE /api/events/{publicID}/gallery/{itemID:uint}
func DeleteGalleryItem(ctx iris.Context) {
	event := requireEventAccess(ctx, services.ActionWrite)
	if event == nil {
		return
	}

	itemID, err := ctx.Params().GetUint("itemID")
	if err != nil {
		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var item models.GalleryItem
	if err := storage.DB.Where("id = ? AND event_id = ?", itemID, event.ID).First(&item).Error; err != nil {
		ctx.StopWithJSON(iris.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	if item.PublicID != "" {
		storage.Media.Delete(item.PublicID)
	}
	if err := storage.DB.Delete(&item).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "gallery.delete", "gallery_item", item.ID, item, nil)
	ctx.JSON(iris.Map{"success": true})
}
