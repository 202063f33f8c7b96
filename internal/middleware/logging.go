package middleware

import (
	"time"

	"lab-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger attaches a request scoped logger to the user context and
// logs every completed request. It must run after the requestid middleware.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.GetRespHeader(fiber.HeaderXRequestID)

		reqLogger := logger.Logger.With().Str("request_id", requestID).Logger()
		c.SetUserContext(logger.NewContext(c.UserContext(), reqLogger))

		err := c.Next()
		if err != nil {
			// Let the app error handler write the response so the status below is final.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		status := c.Response().StatusCode()

		event := reqLogger.Info()
		if status >= 500 {
			event = reqLogger.Error().Err(err)
		} else if status >= 400 {
			event = reqLogger.Warn()
		}

		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", duration).
			Str("ip", c.IP()).
			Int("response_size", len(c.Response().Body())).
			Msg("request completed")

		return nil
	}
}
