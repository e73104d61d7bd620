package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/gatekit/gatekit/internal/domain/entity"
	"github.com/gatekit/gatekit/internal/domain/repository"
	"github.com/gatekit/gatekit/internal/infrastructure/audit"
	"github.com/gatekit/gatekit/internal/infrastructure/mfa"
	"github.com/gatekit/gatekit/pkg/helpers"
)

// AuthService implements the credential check and the login state machine.
// It holds no mutable state of its own; all state lives in the user store.
type AuthService struct {
	Users  repository.UserRepository
	MFA    mfa.EnrollmentChecker
	Audit  *audit.Indexer
	Logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, checker mfa.EnrollmentChecker, auditIx *audit.Indexer, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, MFA: checker, Audit: auditIx, Logger: logger}
}

// Authenticate verifies email+password against the stored hash. It is a pure
// credential check: validation state and MFA policy are layered by the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.Logger.WithError(err).WithField("email", email).Error("user lookup failed")
		return nil, ErrTechnical
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login drives the state machine: credentials establish the session, and when
// the account is enrolled with the MFA provider the login parks in pending
// until the provider confirms the out-of-band check finished.
//
// The returned user is non-nil whenever credentials were accepted, including
// the ErrMFAPending and ErrDelegate cases, so the caller can still establish
// the session; the gate keeps rejecting until the status flips to confirmed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		s.Audit.Record(ctx, audit.Event{Action: audit.ActionLoginFailure, Email: email})
		return nil, err
	}
	if !u.Validated {
		s.Audit.Record(ctx, audit.Event{Action: audit.ActionLoginFailure, UserID: u.ID, Email: email, Meta: map[string]string{"reason": "not_validated"}})
		return nil, ErrAccountNotValidated
	}

	if !u.MFARequired() {
		s.Audit.Record(ctx, audit.Event{Action: audit.ActionLoginSuccess, UserID: u.ID, Email: email})
		return u, nil
	}

	// Park in pending before asking the provider, so a crash or retry between
	// here and confirmation is always observed as "not admitted".
	u.MFAStatus = entity.MFAPending
	if err := s.Users.Update(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("persist pending MFA state failed")
		return nil, ErrTechnical
	}

	if s.MFA == nil {
		s.Logger.WithField("user_id", u.ID).Error("MFA required but no provider configured")
		return u, ErrDelegate
	}

	enr, err := s.MFA.CheckEnrollment(ctx, u.MFAEmail)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("MFA provider check failed")
		s.Audit.Record(ctx, audit.Event{Action: audit.ActionMFAFailure, UserID: u.ID, Email: email})
		return u, ErrDelegate
	}

	if !enr.Finished() {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "registration_state": enr.RegistrationState}).Warn("MFA enabled but provider has not confirmed this login")
		s.Audit.Record(ctx, audit.Event{Action: audit.ActionMFAPending, UserID: u.ID, Email: email})
		return u, ErrMFAPending
	}

	u.MFAStatus = entity.MFAConfirmed
	if err := s.Users.Update(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("persist confirmed MFA state failed")
		return u, ErrTechnical
	}
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionMFAConfirmed, UserID: u.ID, Email: email})
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionLoginSuccess, UserID: u.ID, Email: email})
	return u, nil
}
