package notification

import (
	"time"
)

// Types
const (
	TypeSystem  = "system"
	TypeUser    = "user"
	TypeCourse  = "course"
	TypeGrade   = "grade"
	TypeMessage = "message"
	TypeEvent   = "event"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type (
	// Action is an affordance attached to a notification (a label plus a
	// frontend target the UI navigates to).
	Action struct {
		Label  string `json:"label"`
		Target string `json:"target"`
	}

	Notification struct {
		ID         string     `json:"id"`
		Title      string     `json:"title"`
		Message    string     `json:"message"`
		Type       string     `json:"type"`
		Priority   string     `json:"priority"`
		Read       bool       `json:"read"`
		TargetRole string     `json:"target_role,omitempty"` // empty targets everyone
		CreatedAt  time.Time  `json:"created_at"`            // UTC
		ExpiresAt  *time.Time `json:"expires_at,omitempty"`
		Actions    []Action   `json:"actions,omitempty"`
	}

	// NewNotification contains information needed to add a Notification;
	// id and creation timestamp are synthesized by the store.
	NewNotification struct {
		Title      string     `json:"title" validate:"required"`
		Message    string     `json:"message" validate:"required"`
		Type       string     `json:"type"`
		Priority   string     `json:"priority"`
		Read       bool       `json:"read"`
		TargetRole string     `json:"target_role"`
		ExpiresAt  *time.Time `json:"expires_at"`
		Actions    []Action   `json:"actions"`
	}

	// Filter narrows the read-time view; storage always retains the full set.
	// TargetRole scopes the view to one role's alerts; broadcast entries
	// (empty TargetRole) are visible to every role.
	Filter struct {
		Type       string `json:"type" query:"type"`
		Priority   string `json:"priority" query:"priority"`
		Read       *bool  `json:"read" query:"read"`
		TargetRole string `json:"target_role" query:"target_role"`
	}
)

func (n Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}

func (f *Filter) IsEmpty() bool {
	return f.Type == "" && f.Priority == "" && f.Read == nil && f.TargetRole == ""
}

func (f *Filter) Match(n Notification) bool {
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	if f.Priority != "" && n.Priority != f.Priority {
		return false
	}
	if f.Read != nil && n.Read != *f.Read {
		return false
	}
	if f.TargetRole != "" && n.TargetRole != "" && n.TargetRole != f.TargetRole {
		return false
	}
	return true
}
