package services

import (
	"testing"

	"vesello-server/models"
)

func eventWithOrganizer(id uint, publicID string, organizerID uint) *models.Event {
	return &models.Event{ID: id, PublicID: publicID, OrganizerID: &organizerID}
}

func TestAuthorize(t *testing.T) {
	owned := eventWithOrganizer(1, "ABC1234", 42)
	foreign := eventWithOrganizer(2, "XYZ9999", 77)
	unassigned := &models.Event{ID: 3, PublicID: "NEW0001"}

	tests := []struct {
		name    string
		caller  *Caller
		event   *models.Event
		allowed bool
		reason  DenyReason
	}{
		{"no credential", nil, owned, false, DenyUnauthorized},
		{"superadmin bypasses ownership", &Caller{UserID: 1, Role: RoleSuperAdmin}, foreign, true, ""},
		{"superadmin on unassigned event", &Caller{UserID: 1, Role: RoleSuperAdmin}, unassigned, true, ""},
		{"owning organizer", &Caller{UserID: 42, Role: RoleOrganizer, EventID: "ABC1234"}, owned, true, ""},
		{"organizer of another event", &Caller{UserID: 42, Role: RoleOrganizer, EventID: "ABC1234"}, foreign, false, DenyForbidden},
		{"organizer on unassigned event", &Caller{UserID: 42, Role: RoleOrganizer, EventID: "ABC1234"}, unassigned, false, DenyForbidden},
		{"guest role", &Caller{UserID: 42, Role: RoleGuest}, owned, false, DenyForbidden},
		{"token without profile", &Caller{UserID: 42}, owned, false, DenyForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Same verdict no matter which field the caller mutates
			for _, action := range []Action{ActionRead, ActionWrite} {
				v := Authorize(tt.caller, tt.event, action)
				if v.Allowed != tt.allowed {
					t.Fatalf("action %s: allowed = %v, want %v", action, v.Allowed, tt.allowed)
				}
				if !v.Allowed && v.Reason != tt.reason {
					t.Fatalf("action %s: reason = %q, want %q", action, v.Reason, tt.reason)
				}
			}
		})
	}
}
