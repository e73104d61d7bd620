package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gatekit/gatekit/internal/application"
	"github.com/gatekit/gatekit/pkg/response"
	"github.com/gatekit/gatekit/pkg/session"
	"github.com/gatekit/gatekit/pkg/validation"
)

type AuthHandler struct {
	Auth     *application.AuthService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, sessions *session.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/login
//
// Credential and validation failures share one generic rejection; only the
// MFA-pending outcome is named, since the caller must continue out-of-band.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	u, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)

	// Credentials were accepted whenever a user comes back, even if the MFA
	// leg did not complete; the session is established and the gate keeps
	// rejecting until the provider confirms.
	if u != nil {
		if serr := h.Sessions.Set(c, u.Email); serr != nil {
			h.Logger.WithError(serr).Error("session issue failed")
			resp := response.Error[any](c, http.StatusInternalServerError, "technical error", nil)
			c.JSON(resp.Status, resp)
			return
		}
	}

	switch {
	case err == nil:
		resp := response.Success(c, http.StatusOK, gin.H{"email": u.Email, "mfa_required": u.MFARequired()}, "login successful", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrMFAPending):
		resp := response.Error[any](c, http.StatusForbidden, "multi-factor confirmation pending", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, application.ErrAccountNotValidated):
		resp := response.Error[any](c, http.StatusUnauthorized, "invalid email or password", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrDelegate):
		resp := response.Error[any](c, http.StatusBadGateway, "technical error", nil)
		c.JSON(resp.Status, resp)
	default:
		resp := response.Error[any](c, http.StatusInternalServerError, "technical error", nil)
		c.JSON(resp.Status, resp)
	}
}

// Logout POST /api/logout
//
// Unconditional: works from any state, requires no valid session, never fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Sessions.Clear(c)
	resp := response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
	c.JSON(resp.Status, resp)
}

// Me GET /api/me (behind the session gate)
func (h *AuthHandler) Me(c *gin.Context) {
	resp := response.Success(c, http.StatusOK, gin.H{
		"id":    c.GetString("userID"),
		"email": c.GetString("userEmail"),
	}, "authenticated", nil)
	c.JSON(resp.Status, resp)
}
