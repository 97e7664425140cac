package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-register/internal/config"
	"store-register/internal/session"
)

const sessionKey = "sessionID"

// SessionMiddleware makes sure every draft request carries a session id,
// issuing a fresh cookie when the client has none or sends garbage.
func SessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = session.NewID()
		}

		maxAge := int(cfg.SessionTTL / time.Second)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.SessionCookie, id, maxAge, "/", "", false, true)

		c.Set(sessionKey, id)
		c.Next()
	}
}

func logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		config.GetLogger().WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
