package routes

import (
	"encoding/json"
	"time"

	"github.com/kataras/iris/v12"

	"vesello-server/storage"
)

const pageCacheTTL = 60 * time.Second

func pageCacheKey(publicID string) string { return "event-page:" + publicID }

// GetPublicEvent serves the public microsite payload: the event with
// its section content filtered down to visible sections. Cancelled
// events answer 410 even though the row still exists.
func GetPublicEvent(ctx iris.Context) {
	publicID := ctx.Params().Get("publicID")

	if cached, err := storage.Redis.Get(bgContext, pageCacheKey(publicID)).Result(); err == nil && cached != "" {
		ctx.ContentType("application/json")
		ctx.WriteString(cached)
		return
	}

	event := resolvePublicEvent(ctx)
	if event == nil {
		return
	}

	visibility := event.VisibleSections()
	sections := map[string]json.RawMessage{}
	if event.SectionContent != nil {
		var content map[string]json.RawMessage
		if err := json.Unmarshal(event.SectionContent, &content); err == nil {
			for name, body := range content {
				if visibility[name] {
					sections[name] = body
				}
			}
		}
	}

	payload := iris.Map{
		"publicID":       event.PublicID,
		"title":          event.Title,
		"brideName":      event.BrideName,
		"groomName":      event.GroomName,
		"weddingDate":    event.WeddingDate,
		"venueName":      event.VenueName,
		"venueAddress":   event.VenueAddress,
		"galleryEnabled": event.GalleryEnabled,
		"rsvpEnabled":    event.RSVPEnabled,
		"sections":       sections,
	}

	if body, err := json.Marshal(payload); err == nil {
		storage.Redis.Set(bgContext, pageCacheKey(publicID), string(body), pageCacheTTL)
	}

	ctx.JSON(payload)
}

// invalidatePageCache drops the cached public payload after any
// organizer write so the next read sees fresh content.
func invalidatePageCache(publicID string) {
	storage.Redis.Del(bgContext, pageCacheKey(publicID))
}
