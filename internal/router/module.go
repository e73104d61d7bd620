package router

import "github.com/gin-gonic/gin"

// Module is a feature area (auth, account, debug) that mounts its own routes
// and per-route middleware on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
