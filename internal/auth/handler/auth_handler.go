package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/crystalafinch/authentication/internal/auth/dto"
	"github.com/crystalafinch/authentication/internal/auth/service"
	apperrors "github.com/crystalafinch/authentication/internal/errors"
	"github.com/crystalafinch/authentication/internal/logging"
)

const (
	msgInvalidInput       = "invalid input"
	msgInvalidEmail       = "Invalid email"
	msgInvalidCredentials = "Invalid credentials"
)

type AuthHandler struct {
	userService *service.UserService
	cookies     *CookieManager
	log         logging.Logger
}

func NewAuthHandler(userService *service.UserService, cookies *CookieManager, log logging.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, cookies: cookies, log: log}
}

func (h *AuthHandler) CreateAccount(c *fiber.Ctx) error {
	var input dto.CredentialsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgInvalidInput))
	}

	user, pair, err := h.userService.CreateAccount(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	h.cookies.Attach(c, pair)

	return c.Status(fiber.StatusCreated).JSON(dto.Success(dto.AuthPayload{User: dto.NewUserOutput(user)}))
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var input dto.CredentialsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgInvalidInput))
	}

	user, pair, err := h.userService.SignIn(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	h.cookies.Attach(c, pair)

	return c.Status(fiber.StatusOK).JSON(dto.Success(dto.AuthPayload{User: dto.NewUserOutput(user)}))
}

// CheckAuth never answers with an HTTP error for a missing or broken session:
// "no session" is a normal {user:null} result with the cookies cleared.
func (h *AuthHandler) CheckAuth(c *fiber.Ctx) error {
	accessToken := c.Cookies(AccessCookieName)
	refreshToken := c.Cookies(RefreshCookieName)

	user, rotated, err := h.userService.Resolve(c.UserContext(), accessToken, refreshToken)
	if err != nil || user == nil {
		h.cookies.Clear(c)
		return c.Status(fiber.StatusOK).JSON(dto.Success(dto.AuthPayload{User: nil}))
	}

	if rotated != nil {
		h.cookies.Attach(c, *rotated)
	}

	return c.Status(fiber.StatusOK).JSON(dto.Success(dto.AuthPayload{User: dto.NewUserOutput(user)}))
}

// SignOut is idempotent: cookies are cleared whether or not a session exists.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	h.cookies.Clear(c)
	return c.Status(fiber.StatusOK).JSON(dto.Success(nil))
}

// fail maps service errors to client responses. Enumeration-sensitive
// failures (email taken, no such user) are deliberately indistinguishable
// from a wrong password; the full detail was already reported server-side.
func (h *AuthHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidEmail):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgInvalidEmail))
	case errors.Is(err, apperrors.ErrEmailAlreadyInUse),
		errors.Is(err, apperrors.ErrNoSuchUser),
		errors.Is(err, apperrors.ErrInvalidCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(msgInvalidCredentials))
	default:
		h.log.Error(c.UserContext(), "auth request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Failure("internal server error"))
	}
}
