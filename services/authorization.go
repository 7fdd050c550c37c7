package services

import (
	"vesello-server/models"
)

// Role values stored on users and profiles.
const (
	RoleGuest      = "guest"
	RoleOrganizer  = "organizer"
	RoleSuperAdmin = "super_admin"
)

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

type DenyReason string

const (
	// DenyUnauthorized means no valid credential was presented.
	DenyUnauthorized DenyReason = "unauthorized"
	// DenyForbidden means the credential is valid but the caller has no
	// claim on the event (including "authenticated but unknown profile").
	DenyForbidden DenyReason = "forbidden"
)

// Caller is the resolved identity behind a privileged request. Routes
// build it from the access-token claims plus a profile lookup; a token
// whose profile lookup came back empty yields a Caller with an empty
// Role, which denies as forbidden rather than unauthorized.
type Caller struct {
	UserID  uint
	Role    string
	EventID string // public code of the administered event, empty when none
}

type Verdict struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Verdict            { return Verdict{Allowed: true} }
func deny(r DenyReason) Verdict { return Verdict{Reason: r} }

// Authorize is the single ownership predicate of the system. Every
// privileged read or write on an event (section visibility, section
// content, toggles, questions, QR/link generation, gallery writes)
// goes through here; there is deliberately no per-endpoint variant.
//
// Rules, in order: no caller -> unauthorized; superadmin -> allow;
// organizer owning the event -> allow; anything else -> forbidden.
func Authorize(caller *Caller, event *models.Event, action Action) Verdict {
	if caller == nil {
		return deny(DenyUnauthorized)
	}
	if caller.Role == RoleSuperAdmin {
		return allow()
	}
	if caller.Role == RoleOrganizer && event != nil &&
		event.OrganizerID != nil && *event.OrganizerID == caller.UserID {
		return allow()
	}
	return deny(DenyForbidden)
}
