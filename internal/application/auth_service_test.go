package application

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekit/gatekit/internal/domain/entity"
	"github.com/gatekit/gatekit/internal/infrastructure/mfa"
	"github.com/gatekit/gatekit/pkg/helpers"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedUser(t *testing.T, users *memUsers, email, password string, validated bool, mfaEmail string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{
		Email:        email,
		PasswordHash: hash,
		Validated:    validated,
		MFAEmail:     mfaEmail,
		MFAStatus:    entity.MFANotRequired,
	}
	if mfaEmail != "" {
		u.MFAStatus = entity.MFAPending
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "alice@example.com", "correct horse", true, "")
	svc := NewAuthService(users, nil, nil, quietLogger())

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginStoreFailure(t *testing.T) {
	users := newMemUsers()
	users.broken = true
	svc := NewAuthService(users, nil, nil, quietLogger())

	_, err := svc.Login(context.Background(), "alice@example.com", "pw")
	assert.ErrorIs(t, err, ErrTechnical)
}

func TestLoginAccountNotValidated(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "alice@example.com", "correct horse", false, "")
	svc := NewAuthService(users, nil, nil, quietLogger())

	_, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrAccountNotValidated)
}

func TestLoginWithoutMFA(t *testing.T) {
	users := newMemUsers()
	checker := &fakeChecker{}
	seedUser(t, users, "alice@example.com", "correct horse", true, "")
	svc := NewAuthService(users, checker, nil, quietLogger())

	u, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.Admitted())
	assert.Zero(t, checker.calls, "provider must not be called when the account has no MFA email")
}

func TestLoginMFAConfirmed(t *testing.T) {
	users := newMemUsers()
	checker := &fakeChecker{enr: mfa.Enrollment{Valid: true, RegistrationState: "finished"}}
	seeded := seedUser(t, users, "alice@example.com", "correct horse", true, "alice@example.com")
	svc := NewAuthService(users, checker, nil, quietLogger())

	u, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, entity.MFAConfirmed, u.MFAStatus)
	assert.True(t, u.Admitted())
	assert.Equal(t, 1, checker.calls)

	stored, err := users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MFAConfirmed, stored.MFAStatus)
}

func TestLoginMFAUnfinished(t *testing.T) {
	users := newMemUsers()
	checker := &fakeChecker{enr: mfa.Enrollment{Valid: true, RegistrationState: "in_progress"}}
	seeded := seedUser(t, users, "alice@example.com", "correct horse", true, "alice@example.com")
	svc := NewAuthService(users, checker, nil, quietLogger())

	u, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrMFAPending)
	require.NotNil(t, u, "credentials were accepted, the caller still sets the session")
	assert.False(t, u.Admitted())

	stored, err := users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MFAPending, stored.MFAStatus)
}

func TestLoginDelegateFailure(t *testing.T) {
	users := newMemUsers()
	checker := &fakeChecker{err: errors.New("connect: connection refused")}
	seeded := seedUser(t, users, "alice@example.com", "correct horse", true, "alice@example.com")
	svc := NewAuthService(users, checker, nil, quietLogger())

	u, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrDelegate)
	require.NotNil(t, u)
	assert.False(t, u.Admitted(), "provider failure must not admit the user")

	stored, err := users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MFAPending, stored.MFAStatus)
}

func TestLoginMFARequiredButNoProvider(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "alice@example.com", "correct horse", true, "alice@example.com")
	svc := NewAuthService(users, nil, nil, quietLogger())

	u, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrDelegate)
	require.NotNil(t, u)
	assert.False(t, u.Admitted())
}

func TestLoginResetsStaleConfirmedStatus(t *testing.T) {
	// A fresh login always re-asks the provider, even if a previous login
	// left the status at confirmed.
	users := newMemUsers()
	checker := &fakeChecker{enr: mfa.Enrollment{Valid: true, RegistrationState: "started"}}
	seeded := seedUser(t, users, "alice@example.com", "correct horse", true, "alice@example.com")
	seeded.MFAStatus = entity.MFAConfirmed
	require.NoError(t, users.Update(context.Background(), seeded))
	svc := NewAuthService(users, checker, nil, quietLogger())

	_, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrMFAPending)

	stored, err := users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MFAPending, stored.MFAStatus)
}
