package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/logger"
	"github.com/kestrelhq/botgate/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler translates errors attached by handlers into the envelope the
// admin surface speaks.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if problem, ok := err.(*domain.Problem); ok {
			if problem.Log != nil {
				logger.Error("request failed", zap.Error(problem.Log))
			}
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		if appErr, ok := err.(*domain.Error); ok {
			if appErr.Log != nil {
				logger.Error("request failed", zap.Error(appErr.Log))
			}
			c.JSON(appErr.Code, api.Fail(appErr.Message))
			c.Abort()
			return
		}

		logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.Fail("An unexpected error occurred."))
		c.Abort()
	}
}
