package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gatekit/gatekit/internal/application"
	"github.com/gatekit/gatekit/pkg/response"
	"github.com/gatekit/gatekit/pkg/validation"
)

type AccountHandler struct {
	Accounts *application.AccountService
	Logger   *logrus.Logger
}

func NewAccountHandler(accounts *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Logger: logger}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullname" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
}

type forgotRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// Signup POST /api/signup
func (h *AccountHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	u, _, err := h.Accounts.Register(c.Request.Context(), req.Email, req.FullName, req.Password)
	switch {
	case err == nil:
		resp := response.Success(c, http.StatusCreated, gin.H{"id": u.ID, "email": u.Email}, "account created, check your email to confirm", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrEmailTaken):
		resp := response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrDelegate):
		resp := response.Error[any](c, http.StatusBadGateway, "technical error", nil)
		c.JSON(resp.Status, resp)
	default:
		resp := response.Error[any](c, http.StatusInternalServerError, "technical error", nil)
		c.JSON(resp.Status, resp)
	}
}

// Confirm GET /api/confirm?token=...
//
// Token errors are reported distinctly so the user can retry meaningfully.
func (h *AccountHandler) Confirm(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		resp := response.Error[any](c, http.StatusBadRequest, "missing token", nil)
		c.JSON(resp.Status, resp)
		return
	}

	u, err := h.Accounts.Confirm(c.Request.Context(), tokenStr)
	switch {
	case err == nil:
		resp := response.Success(c, http.StatusOK, gin.H{"email": u.Email, "validated": true}, "account validated", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrTokenNotFound):
		resp := response.Error[any](c, http.StatusBadRequest, "invalid confirmation token", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrTokenExpired):
		resp := response.Error[any](c, http.StatusBadRequest, "confirmation token expired", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrAlreadyValidated):
		resp := response.Error[any](c, http.StatusBadRequest, "account already validated", nil)
		c.JSON(resp.Status, resp)
	default:
		resp := response.Error[any](c, http.StatusInternalServerError, "technical error", nil)
		c.JSON(resp.Status, resp)
	}
}

// Forgot POST /api/password/forgot
//
// Always answers OK for well-formed requests to avoid account enumeration.
func (h *AccountHandler) Forgot(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	if err := h.Accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		resp := response.Error[any](c, http.StatusInternalServerError, "technical error", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the email exists, a reset link has been sent", nil)
	c.JSON(resp.Status, resp)
}

// Reset POST /api/password/reset
func (h *AccountHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	err := h.Accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	switch {
	case err == nil:
		resp := response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrTokenNotFound):
		resp := response.Error[any](c, http.StatusBadRequest, "invalid reset token", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrTokenExpired):
		resp := response.Error[any](c, http.StatusBadRequest, "reset token expired", nil)
		c.JSON(resp.Status, resp)
	default:
		resp := response.Error[any](c, http.StatusInternalServerError, "technical error", nil)
		c.JSON(resp.Status, resp)
	}
}
