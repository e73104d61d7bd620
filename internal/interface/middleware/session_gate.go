package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gatekit/gatekit/internal/domain/repository"
	"github.com/gatekit/gatekit/pkg/response"
	"github.com/gatekit/gatekit/pkg/session"
)

// SessionGate is the single choke point every protected request passes
// through. It reads the session email, re-resolves the user record, and
// applies the MFA admission policy. All rejections look the same to the
// caller; the gate never reveals which check failed.
//
// The gate is a pure decision over (session, user lookup): it has no state of
// its own and is safe to invoke concurrently for unrelated requests.
func SessionGate(sessions *session.Manager, users repository.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := sessions.Read(c)
		if err != nil {
			reject(c)
			return
		}

		u, err := users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Session references a user that no longer exists.
				logger.WithField("email", email).Debug("clearing stale session credentials")
				sessions.Clear(c)
				reject(c)
				return
			}
			logger.WithError(err).WithField("email", email).Error("session gate user lookup failed")
			resp := response.Error[any](c, http.StatusInternalServerError, "technical error", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		if !u.Admitted() {
			logger.WithField("user_id", u.ID).Debug("MFA enabled but login not confirmed")
			reject(c)
			return
		}

		c.Set("userID", u.ID)
		c.Set("userEmail", u.Email)
		c.Next()
	}
}

func reject(c *gin.Context) {
	resp := response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
	c.AbortWithStatusJSON(resp.Status, resp)
}
