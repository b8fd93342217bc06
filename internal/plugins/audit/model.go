// Package audit records account activity: sign-ups, sign-ins, sign-outs and
// profile edits. Entries are written by the auth handlers after a successful
// operation and can be listed by the account owner at GET /profile/activity.
//
// Recording is fire-and-forget. A failed insert is logged and never fails
// the request that triggered it.
package audit

import (
	"time"

	"github.com/gobarber/gobarber/internal/plugins/auth"
)

// Actions follow the "resource.verb" pattern. The auth handlers emit them.
const (
	ActionUserRegistered   = auth.ActivityRegistered
	ActionSessionCreated   = auth.ActivitySessionCreated
	ActionSessionDestroyed = auth.ActivitySessionEnded
	ActionProfileUpdated   = auth.ActivityProfileUpdated
)

// Entry is one recorded account event.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityPage is the body of GET /profile/activity.
type ActivityPage struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}
