// Package session implements the signed client-side session cookie. The
// cookie carries exactly one identity attribute: the authenticated email.
// All authorization state beyond that (validation, MFA) is re-derived from
// the user store on every request, so server-side revocation takes effect on
// the very next request.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "session"

// ErrNoSession is returned when the request carries no usable session.
var ErrNoSession = errors.New("no session")

// Manager signs and verifies session cookies (HS256).
type Manager struct {
	secret []byte
	ttl    time.Duration
	domain string
	secure bool
}

func NewManager(secret string, ttl time.Duration, domain string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, domain: domain, secure: secure}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a session value carrying only the email.
func (m *Manager) Issue(email string) (string, time.Time, error) {
	exp := time.Now().Add(m.ttl)
	c := &claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Parse verifies a session value and returns the email it carries.
func (m *Manager) Parse(value string) (string, error) {
	c := &claims{}
	tkn, err := jwt.ParseWithClaims(value, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tkn.Valid || c.Email == "" {
		return "", ErrNoSession
	}
	return c.Email, nil
}

// Set establishes the session on the response.
func (m *Manager) Set(c *gin.Context, email string) error {
	value, exp, err := m.Issue(email)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAgeFrom(exp), "/", m.domain, m.secure, true)
	return nil
}

// Clear removes the session unconditionally. It is reachable from every state
// and cannot fail.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.domain, m.secure, true)
}

// Read extracts the authenticated email from the request, or ErrNoSession.
func (m *Manager) Read(c *gin.Context) (string, error) {
	value, err := c.Cookie(CookieName)
	if err != nil || value == "" {
		return "", ErrNoSession
	}
	email, err := m.Parse(value)
	if err != nil {
		return "", ErrNoSession
	}
	return email, nil
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
