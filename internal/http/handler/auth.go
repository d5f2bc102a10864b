package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"infolock/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Register creates a new user account.
//
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "registration payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Router /api/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		if req.Username == "" || req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "username, email and password are required")
		}

		if err := svc.Register(c.UserContext(), req.Username, req.Email, req.Password); err != nil {
			switch {
			case errors.Is(err, service.ErrUsernameTaken):
				return writeError(c, fiber.StatusBadRequest, "USERNAME_TAKEN", "username is already taken")
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusBadRequest, "EMAIL_TAKEN", "email is already in use")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		return c.JSON(fiber.Map{"message": "user registered"})
	}
}

// Login verifies credentials and issues a JWT.
//
// @Summary Authenticate and obtain a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "login payload"
// @Success 200 {object} loginResponse
// @Failure 401 {object} errorPayload
// @Router /api/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "email and password are required")
		}

		tok, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(loginResponse{Token: tok})
	}
}
