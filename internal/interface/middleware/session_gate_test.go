package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekit/gatekit/internal/domain/entity"
	"github.com/gatekit/gatekit/internal/domain/repository"
	"github.com/gatekit/gatekit/pkg/session"
)

type fakeUserRepo struct {
	byEmail map[string]*entity.User
	failing bool
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if f.failing {
		return nil, errors.New("store down")
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) Update(ctx context.Context, u *entity.User) error { return nil }
func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return nil
}
func (f *fakeUserRepo) Delete(ctx context.Context, id string) error { return nil }

func gateRouter(t *testing.T, repo repository.UserRepository) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := session.NewManager("test-secret", time.Hour, "", false)
	logger := logrus.New()

	r := gin.New()
	protected := r.Group("/", SessionGate(sessions, repo, logger))
	protected.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userEmail"))
	})
	return r, sessions
}

func doGet(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGateRejectsWithoutSession(t *testing.T) {
	r, _ := gateRouter(t, &fakeUserRepo{byEmail: map[string]*entity.User{}})
	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateAdmitsUserWithoutMFA(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*entity.User{
		"a@x.com": {ID: "u1", Email: "a@x.com", Validated: true},
	}}
	r, sessions := gateRouter(t, repo)

	value, _, err := sessions.Issue("a@x.com")
	require.NoError(t, err)

	w := doGet(r, value)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@x.com", w.Body.String())
}

func TestGateRejectsPendingMFARegardlessOfSession(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*entity.User{
		"a@x.com": {ID: "u1", Email: "a@x.com", Validated: true, MFAEmail: "a@x.com", MFAStatus: entity.MFAPending},
	}}
	r, sessions := gateRouter(t, repo)
	value, _, err := sessions.Issue("a@x.com")
	require.NoError(t, err)

	w := doGet(r, value)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Flipping the status server-side takes effect on the next request.
	repo.byEmail["a@x.com"].MFAStatus = entity.MFAConfirmed
	w = doGet(r, value)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateRejectionIsGeneric(t *testing.T) {
	repo := &fakeUserRepo{byEmail: map[string]*entity.User{
		"pending@x.com": {ID: "u1", Email: "pending@x.com", Validated: true, MFAEmail: "pending@x.com", MFAStatus: entity.MFAPending},
	}}
	r, sessions := gateRouter(t, repo)

	anon := doGet(r, "")
	value, _, err := sessions.Issue("pending@x.com")
	require.NoError(t, err)
	pending := doGet(r, value)

	assert.Equal(t, anon.Code, pending.Code, "MFA-incomplete must be indistinguishable from unauthenticated")
	assert.Contains(t, pending.Body.String(), "not authenticated")
	assert.NotContains(t, strings.ToLower(pending.Body.String()), "mfa")
}

func TestGateClearsStaleSession(t *testing.T) {
	r, sessions := gateRouter(t, &fakeUserRepo{byEmail: map[string]*entity.User{}})
	value, _, err := sessions.Issue("ghost@x.com")
	require.NoError(t, err)

	w := doGet(r, value)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "stale session cookie must be cleared")
}

func TestGateStoreFailureIsNotUnauthorized(t *testing.T) {
	r, sessions := gateRouter(t, &fakeUserRepo{failing: true})
	value, _, err := sessions.Issue("a@x.com")
	require.NoError(t, err)

	w := doGet(r, value)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "store failure must not look like invalid credentials")
}
