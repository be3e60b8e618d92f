package rest

import (
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/dmitrijs2005/herbalgarden/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type authResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Token   string             `json:"token,omitempty"`
	User    *models.PublicUser `json:"user,omitempty"`
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetRequest struct {
	Email              string `json:"email"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
	OTP                string `json:"otp"`
}

// parseBody decodes the request body into v. An empty body leaves v zeroed so
// the service reports the missing fields.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(v)
}

func ok(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(authResponse{Success: true, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(authResponse{Success: false, Message: msgBadBody})
}

func (s *HTTPServer) signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		return badBody(c)
	}

	_, err := s.auth.Signup(c.UserContext(), services.SignupInput{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return s.authFailure(c, err, "User not found")
	}
	return ok(c, fiber.StatusCreated, "User registered successfully")
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return badBody(c)
	}

	res, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.authFailure(c, err, "Invalid email or password")
	}

	c.Cookie(&fiber.Cookie{
		Name:     common.TokenCookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  time.Now().Add(s.tokenValidity),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	user := res.User
	return c.Status(fiber.StatusOK).JSON(authResponse{
		Success: true,
		Message: "Login successful",
		Token:   res.Token,
		User:    &user,
	})
}

func (s *HTTPServer) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     common.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ok(c, fiber.StatusOK, "Logged out")
}

func (s *HTTPServer) forgotPassword(c *fiber.Ctx) error {
	var req emailRequest
	if err := parseBody(c, &req); err != nil {
		return badBody(c)
	}

	if err := s.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return s.authFailure(c, err, "Email not found")
	}
	return ok(c, fiber.StatusOK, "OTP sent to your email")
}

func (s *HTTPServer) verifyOTP(c *fiber.Ctx) error {
	var req emailRequest
	if err := parseBody(c, &req); err != nil {
		return badBody(c)
	}

	if err := s.auth.VerifyOTP(c.UserContext(), req.Email, req.OTP); err != nil {
		return s.authFailure(c, err, "Invalid or expired OTP")
	}
	return ok(c, fiber.StatusOK, "OTP verified successfully")
}

func (s *HTTPServer) resetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := parseBody(c, &req); err != nil {
		return badBody(c)
	}

	err := s.auth.ResetPassword(c.UserContext(), services.ResetInput{
		Email:              req.Email,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
		OTP:                req.OTP,
	})
	if err != nil {
		return s.authFailure(c, err, "User not found")
	}
	return ok(c, fiber.StatusOK, "Password reset successfully")
}
