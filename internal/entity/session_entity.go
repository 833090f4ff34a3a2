package entity

import "time"

type SessionUser struct {
	Id       string
	Username string
	Email    string
}

// SessionState is the believed authentication status of the current client.
// Confirmed is false while the value only comes from the durable cache;
// it flips to true once the auth backend has answered a check. Not a
// security boundary, purely a display hint.
type SessionState struct {
	IsAuthenticated bool
	Confirmed       bool
	User            *SessionUser
	CheckedAt       time.Time
}
