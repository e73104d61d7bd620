package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gatekit/gatekit/internal/domain/entity"
	"github.com/gatekit/gatekit/internal/domain/repository"
	"github.com/gatekit/gatekit/internal/infrastructure/audit"
	"github.com/gatekit/gatekit/internal/infrastructure/mfa"
	"github.com/gatekit/gatekit/pkg/helpers"
	"github.com/gatekit/gatekit/pkg/mailer"
)

// EmailEnqueuer publishes email jobs to the outbound queue.
// *helpers.RabbitPublisher satisfies it.
type EmailEnqueuer interface {
	PublishJSON(ctx context.Context, body any) error
}

// AccountService owns signup, the confirmation-token lifecycle, and password
// reset.
type AccountService struct {
	Users  repository.UserRepository
	Tokens repository.TokenRepository
	MFA    mfa.EnrollmentChecker
	Mail   EmailEnqueuer
	Audit  *audit.Indexer
	Logger *logrus.Logger

	ConfirmURL  string
	ResetURL    string
	MailEnabled bool
}

func NewAccountService(users repository.UserRepository, tokens repository.TokenRepository, checker mfa.EnrollmentChecker, mail EmailEnqueuer, auditIx *audit.Indexer, logger *logrus.Logger, confirmURL, resetURL string, mailEnabled bool) *AccountService {
	return &AccountService{
		Users:       users,
		Tokens:      tokens,
		MFA:         checker,
		Mail:        mail,
		Audit:       auditIx,
		Logger:      logger,
		ConfirmURL:  confirmURL,
		ResetURL:    resetURL,
		MailEnabled: mailEnabled,
	}
}

// Register creates an unvalidated user, probes the MFA provider for an
// existing enrollment, and issues the email-confirmation token. The account
// stays locked out of login until the token is consumed.
func (s *AccountService) Register(ctx context.Context, email, fullname, password string) (*entity.User, *entity.Token, error) {
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.Logger.WithError(err).WithField("email", email).Error("signup lookup failed")
		return nil, nil, ErrTechnical
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		s.Logger.WithError(err).Error("password hashing failed")
		return nil, nil, ErrTechnical
	}

	u := &entity.User{
		Email:        email,
		FullName:     fullname,
		PasswordHash: hash,
		Validated:    false,
		MFAStatus:    entity.MFANotRequired,
	}

	if s.MFA != nil {
		enr, err := s.MFA.CheckEnrollment(ctx, email)
		if err != nil {
			s.Logger.WithError(err).WithField("email", email).Error("MFA enrollment probe failed")
			return nil, nil, ErrDelegate
		}
		if enr.Finished() {
			// The provider already knows this email; future logins must pass MFA.
			u.MFAEmail = email
			u.MFAStatus = entity.MFAPending
			s.Logger.WithField("email", email).Debug("MFA email set from provider enrollment")
		} else if enr.Valid {
			s.Logger.WithField("email", email).Warn("user started provider registration but has not finished")
		}
	}

	if err := s.Users.Create(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("user create failed")
		return nil, nil, ErrTechnical
	}

	tok, err := s.IssueToken(ctx, u, entity.TokenEmailConfirmation, email)
	if err != nil {
		// Roll the user row back. An unvalidated user with no outstanding
		// token cannot log in, cannot confirm, and cannot sign up again.
		if derr := s.Users.Delete(ctx, u.ID); derr != nil {
			s.Logger.WithError(derr).WithField("user_id", u.ID).Error("signup rollback failed, orphaned unvalidated user")
		}
		return nil, nil, err
	}

	s.enqueueMail(ctx, mailer.EmailJob{
		To:       email,
		Template: mailer.TemplateConfirm,
		Data:     map[string]any{"Name": fullname, "Link": s.ConfirmURL + "?token=" + tok.Token},
	})
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionSignup, UserID: u.ID, Email: email})
	return u, tok, nil
}

// IssueToken creates a fresh random token for user+purpose. Previously issued
// tokens of the same purpose stay outstanding until they expire.
func (s *AccountService) IssueToken(ctx context.Context, u *entity.User, purpose entity.TokenPurpose, email string) (*entity.Token, error) {
	tok := &entity.Token{
		Token:   uuid.NewString(),
		UserID:  u.ID,
		Purpose: purpose,
		Email:   email,
	}
	if err := s.Tokens.Create(ctx, tok); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("token create failed")
		return nil, ErrTechnical
	}
	return tok, nil
}

// Confirm consumes an email-confirmation token and flips the user to
// validated. The user's validated flag is the consumption marker, so a second
// confirm of the same token reports the account as already validated.
func (s *AccountService) Confirm(ctx context.Context, tokenStr string) (*entity.User, error) {
	tok, err := s.Tokens.FindByTokenAndPurpose(ctx, tokenStr, entity.TokenEmailConfirmation)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		s.Logger.WithError(err).Error("token lookup failed")
		return nil, ErrTechnical
	}
	if tok.IsExpired() {
		return nil, ErrTokenExpired
	}

	u, err := s.Users.GetByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		s.Logger.WithError(err).WithField("user_id", tok.UserID).Error("user lookup failed")
		return nil, ErrTechnical
	}
	if u.Validated {
		return nil, ErrAlreadyValidated
	}

	u.Validated = true
	if err := s.Users.Update(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("persist validated failed")
		return nil, ErrTechnical
	}
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionConfirm, UserID: u.ID, Email: u.Email})
	return u, nil
}

// ForgotPassword issues a reset token and emails the link. Unknown emails are
// not reported to the caller, only audited.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Audit.Record(ctx, audit.Event{Action: audit.ActionResetIssued, Email: email, Meta: map[string]string{"unknown_email": "true"}})
			return nil
		}
		s.Logger.WithError(err).WithField("email", email).Error("reset lookup failed")
		return ErrTechnical
	}

	tok, err := s.IssueToken(ctx, u, entity.TokenPasswordReset, email)
	if err != nil {
		return err
	}

	s.enqueueMail(ctx, mailer.EmailJob{
		To:       email,
		Template: mailer.TemplateReset,
		Data:     map[string]any{"Name": u.FullName, "Link": s.ResetURL + "?token=" + tok.Token},
	})
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionResetIssued, UserID: u.ID, Email: email})
	return nil
}

// ResetPassword consumes a password-reset token. Reset tokens are deleted on
// success; an expired token is left alone and the user untouched.
func (s *AccountService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	tok, err := s.Tokens.FindByTokenAndPurpose(ctx, tokenStr, entity.TokenPasswordReset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		s.Logger.WithError(err).Error("token lookup failed")
		return ErrTechnical
	}
	if tok.IsExpired() {
		return ErrTokenExpired
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		s.Logger.WithError(err).Error("password hashing failed")
		return ErrTechnical
	}
	if err := s.Users.UpdatePassword(ctx, tok.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		s.Logger.WithError(err).WithField("user_id", tok.UserID).Error("password update failed")
		return ErrTechnical
	}
	if err := s.Tokens.Delete(ctx, tok.Token); err != nil {
		s.Logger.WithError(err).Warn("reset token delete failed")
	}
	s.Audit.Record(ctx, audit.Event{Action: audit.ActionResetComplete, UserID: tok.UserID, Email: tok.Email})
	return nil
}

func (s *AccountService) enqueueMail(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil || !s.MailEnabled {
		return
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("failed to publish email job")
	}
}
