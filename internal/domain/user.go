package domain

import "time"

// User represents a registered account. SessionToken is the opaque
// credential issued once at registration and reused for every
// subsequent request.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	SessionToken string
	CreatedAt    time.Time
}
