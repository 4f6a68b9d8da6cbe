package models

import "time"

// RefreshSession is the server-side half of a refresh token: the selector
// locates the row, the verifier is only ever stored hashed.
type RefreshSession struct {
	ID             int64
	UserID         int64
	Selector       string
	VerifierHash   string
	UserAgent      string
	IPAddress      string
	AccessTokenJTI string
	Used           bool
	CreatedAt      time.Time
	ExpiresAt      time.Time
}
