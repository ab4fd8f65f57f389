package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

type tokenValidator interface {
	UserIDFromToken(token string) (string, error)
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// bearerAuth resolves the Authorization header to a user id or aborts with
// 401.
func bearerAuth(v tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader(common.AuthorizationHeaderName))
		if len(h) < len(common.BearerPrefix) || !strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := v.UserIDFromToken(strings.TrimSpace(h[len(common.BearerPrefix):]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
