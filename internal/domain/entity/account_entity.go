package entity

import (
	"time"
)

// Account is the aggregate root for the credential lifecycle domain.
// PasswordHash holds a bcrypt digest; plaintext passwords never persist.
//
// Verified and LoginEnabled are distinct flags the lifecycle sets together on
// successful verification.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Verified     bool
	LoginEnabled bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
