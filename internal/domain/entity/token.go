package entity

import (
	"time"
)

// TokenPurpose distinguishes the two single-use token flows.
type TokenPurpose string

const (
	TokenEmailConfirmation TokenPurpose = "email-confirmation"
	TokenPasswordReset     TokenPurpose = "password-reset"
)

// TokenTTL is how long a token stays usable after creation.
const TokenTTL = 24 * time.Hour

// Token is a single-use, time-bounded opaque string bound to one user and one
// email address. Expiry is a pure function of DateCreation evaluated at check
// time; there is no stored consumed or expired flag and no background sweeper.
type Token struct {
	Token        string
	UserID       string
	Purpose      TokenPurpose
	Email        string
	DateCreation time.Time
}

// ExpiredAt reports whether the token is too old to use at the given instant.
// A token aged exactly TokenTTL is still accepted.
func (t *Token) ExpiredAt(now time.Time) bool {
	return now.Sub(t.DateCreation) > TokenTTL
}

// IsExpired reports whether the token is too old to use right now.
func (t *Token) IsExpired() bool {
	return t.ExpiredAt(time.Now())
}
