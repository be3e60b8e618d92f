package rest

import (
	"errors"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/gofiber/fiber/v2"
)

const (
	msgServerError = "Server error"
	msgBadBody     = "Invalid request body"
	msgInvalidID   = "Invalid id"
)

// authFailure renders err as {success:false, message}. notFound is the
// route-specific wording for common.ErrorNotFound.
func (s *HTTPServer) authFailure(c *fiber.Ctx, err error, notFound string) error {
	code, msg := fiber.StatusBadRequest, ""

	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		msg = ve.Msg
	case errors.Is(err, common.ErrDuplicateEmail):
		msg = "Email already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		msg = "Invalid email or password"
	case errors.Is(err, common.ErrInvalidOrExpiredOTP):
		msg = "Invalid or expired OTP"
	case errors.Is(err, common.ErrPasswordMismatch):
		msg = "Passwords do not match"
	case errors.Is(err, common.ErrorNotFound):
		msg = notFound
	default:
		code, msg = fiber.StatusInternalServerError, msgServerError
		s.log(c).Error(c.UserContext(), "auth request failed", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(authResponse{Success: false, Message: msg})
}

// adminFailure renders err as {message}.
func (s *HTTPServer) adminFailure(c *fiber.Ctx, err error, notFound string) error {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return message(c, fiber.StatusBadRequest, ve.Msg)
	case errors.Is(err, common.ErrorNotFound):
		return message(c, fiber.StatusNotFound, notFound)
	case errors.Is(err, common.ErrAlreadyExists):
		return message(c, fiber.StatusConflict, "Slug already exists")
	}
	s.log(c).Error(c.UserContext(), "admin request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return message(c, fiber.StatusInternalServerError, msgServerError)
}

func message(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"message": msg})
}
