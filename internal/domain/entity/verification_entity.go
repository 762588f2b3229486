package entity

import "time"

// VerificationToken proves control of a registered email address. Only the
// bcrypt hash of the emailed secret is stored; at most one live token exists
// per account.
type VerificationToken struct {
	AccountID string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's window has elapsed at the given time.
func (t *VerificationToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
