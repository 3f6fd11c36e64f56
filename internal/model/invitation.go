package model

import "time"

// Invitation is a pending offer to join a team. An invitation with a nil
// Email is open: anyone holding its id may accept. A bound invitation may
// only be accepted by a principal whose verified email matches exactly.
type Invitation struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	InvitedBy string    `json:"invited_by"`
	Email     *string   `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (i Invitation) Open() bool {
	return i.Email == nil
}
