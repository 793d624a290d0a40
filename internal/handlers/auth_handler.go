package handlers

import (
	"errors"

	"github.com/fredseo/showhub-backend/internal/dto"
	"github.com/fredseo/showhub-backend/internal/principal"
	"github.com/fredseo/showhub-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService *services.AuthService
	oauth       *services.GoogleOAuth
}

func NewAuthHandler(authService *services.AuthService, oauth *services.GoogleOAuth) *AuthHandler {
	return &AuthHandler{authService: authService, oauth: oauth}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return unauthorized(c, err.Error())
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return unauthorized(c, err.Error())
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.Logout(&req); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	resp, err := h.authService.Me(userID)
	if err != nil {
		return notFound(c, "User not found")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return notFound(c, "User not found")
		}
		return internalError(c)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.UpdatePassword(userID, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return notFound(c, "User not found")
		case errors.Is(err, services.ErrWrongPassword):
			return badRequest(c, err.Error())
		default:
			return badRequest(c, err.Error())
		}
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// UpdateRole is mounted behind the admin middleware.
func (h *AuthHandler) UpdateRole(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.UpdateRole(targetID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return notFound(c, "User not found")
		case errors.Is(err, services.ErrInvalidRole):
			return badRequest(c, err.Error())
		default:
			return internalError(c)
		}
	}
	return c.JSON(resp)
}

func (h *AuthHandler) SendVerification(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	if err := h.authService.SendVerificationMail(userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return notFound(c, "User not found")
		}
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"message": "Verification email sent successfully"})
}

func (h *AuthHandler) ConfirmEmail(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	resp, err := h.authService.ConfirmEmail(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return notFound(c, "User not found")
		}
		return badRequest(c, err.Error())
	}
	return c.JSON(resp)
}

// GoogleLogin redirects the browser into the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state, err := h.oauth.SignState(services.StateLogin, uuid.Nil, "")
	if err != nil {
		return internalError(c)
	}
	return c.Redirect(h.oauth.LoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the sign-in code exchange and issues a token pair.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if _, _, err := h.oauth.VerifyState(c.Query("state"), services.StateLogin); err != nil {
		return unauthorized(c, "Invalid OAuth state")
	}

	code := c.Query("code")
	if code == "" {
		return badRequest(c, "Missing authorization code")
	}

	profile, err := h.oauth.ExchangeLogin(c.Context(), code)
	if err != nil {
		return unauthorized(c, "Google sign-in failed")
	}

	resp, err := h.authService.GoogleSignIn(profile.Email, profile.Name, profile.ID)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	return c.JSON(resp)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
