package application

import "errors"

// Error taxonomy of the authentication core. Handlers map these to responses;
// nothing here is fatal to the process.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password; the
	// two are never distinguished to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotValidated means the credentials were right but the email
	// confirmation flow has not completed.
	ErrAccountNotValidated = errors.New("account not validated")

	// ErrTechnical means the backing store failed. It is never conflated with
	// bad credentials.
	ErrTechnical = errors.New("technical error")

	// ErrDelegate means the MFA provider was unreachable or answered garbage.
	ErrDelegate = errors.New("mfa provider failure")

	// ErrMFAPending means the provider has not yet confirmed this login; the
	// user stays unadmitted.
	ErrMFAPending = errors.New("mfa confirmation pending")

	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenExpired     = errors.New("token expired")
	ErrAlreadyValidated = errors.New("account already validated")
	ErrEmailTaken       = errors.New("email already registered")
)
