package entity

import (
	"time"
)

// MFAStatus tracks where a user stands in the delegated multi-factor flow.
// It replaces a nullable boolean: a user either never needs MFA, has a login
// pending provider confirmation, or has been confirmed by the provider.
type MFAStatus string

const (
	MFANotRequired MFAStatus = "not_required"
	MFAPending     MFAStatus = "pending"
	MFAConfirmed   MFAStatus = "confirmed"
)

// User is the aggregate root for the authentication domain
// Passwords are stored as bcrypt hashes in PasswordHash.
//
// MFAEmail is the email registered with the external MFA provider; empty means
// MFA is not required for this account.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Validated    bool
	MFAEmail     string
	MFAStatus    MFAStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MFARequired reports whether this account is enrolled with the MFA provider.
func (u *User) MFARequired() bool {
	return u.MFAEmail != ""
}

// Admitted reports whether the user may pass the session gate: a session alone
// suffices unless MFA is required, in which case the provider must have
// confirmed the current login.
func (u *User) Admitted() bool {
	return !u.MFARequired() || u.MFAStatus == MFAConfirmed
}
