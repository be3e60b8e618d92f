package rest

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/logging"
	"github.com/dmitrijs2005/herbalgarden/internal/server/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"

	localRequestID = "request_id"
	localIdentity  = "identity"
)

// requestLogger tags the request with an id and writes one access log line.
func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	rid := c.Get(requestIDHeader)
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Locals(localRequestID, rid)
	c.Set(requestIDHeader, rid)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler set the final status before logging.
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.log(c).Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *HTTPServer) log(c *fiber.Ctx) logging.Logger {
	if rid, ok := c.Locals(localRequestID).(string); ok {
		return s.logger.With("request_id", rid)
	}
	return s.logger
}

// sessionToken reads the session cookie, falling back to a Bearer header.
func sessionToken(c *fiber.Ctx) string {
	if t := strings.TrimSpace(c.Cookies(common.TokenCookieName)); t != "" {
		return t
	}
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireAdmin admits only requests carrying a valid admin session.
func (s *HTTPServer) requireAdmin(c *fiber.Ctx) error {
	token := sessionToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			s.log(c).Debug(c.UserContext(), "expired session token")
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}
	if claims.Role != common.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	}

	c.Locals(localIdentity, claims.Identity())
	return c.Next()
}
