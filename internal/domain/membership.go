package domain

import "time"

type Membership struct {
	UserId    UserId     `json:"user_id"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the membership grants forum access at the given
// instant. A missing expiry means the membership does not lapse.
func (m *Membership) Active(now time.Time) bool {
	if m == nil || m.Status != "active" {
		return false
	}
	return m.ExpiresAt == nil || m.ExpiresAt.After(now)
}
