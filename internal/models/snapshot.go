package models

import "time"

// StoreSnapshot is the full serializable state of the record store at a point
// in time. It is the document written by every persistence backend.
type StoreSnapshot struct {
	Users      []User `json:"users"`
	Marks      []Mark `json:"marks"`
	NextMarkID int    `json:"nextMarkId"`
}

// OtpChallenge is a pending password-reset code. At most one live challenge
// exists per username; challenges are single-use and are never persisted
// across restarts.
type OtpChallenge struct {
	Otp       string
	RegNumber string
	ExpiresAt time.Time
}
