package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger logs one line per request, including the editing session it targets.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | session: ${reqHeader:" + SessionHeader + "}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
