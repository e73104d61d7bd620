package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatekit/gatekit/internal/container"
	handlers "github.com/gatekit/gatekit/internal/interface/http"
	"github.com/gatekit/gatekit/internal/interface/middleware"
)

// AccountModule wires signup, email confirmation, and password reset.
// All endpoints are public with per-IP rate limits.
type AccountModule struct {
	Handler *handlers.AccountHandler
}

func NewAccountModule(h *handlers.AccountHandler) *AccountModule {
	return &AccountModule{Handler: h}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	confirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.GET("/confirm", confirmLimiter, m.Handler.Confirm)
	rg.POST("/password/forgot", forgotLimiter, m.Handler.Forgot)
	rg.POST("/password/reset", resetLimiter, m.Handler.Reset)
}
