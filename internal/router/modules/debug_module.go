package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatekit/gatekit/internal/container"
	"github.com/gatekit/gatekit/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoint (expvar), rate-limited per IP.
	// Loopback and private callers bypass the limit so internal scrapes
	// are never throttled.
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
