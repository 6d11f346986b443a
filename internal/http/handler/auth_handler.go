package handler

import (
	"context"
	"errors"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/GSMS-B/ProjectQR/internal/app/service"
	"github.com/GSMS-B/ProjectQR/internal/http/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthDeps groups dependencies required by auth handlers.
type AuthDeps struct {
	Logger      *zap.Logger
	AuthService service.AuthService
	Tokens      service.TokenService
}

// AuthHandler implements signup, login, and token introspection.
type AuthHandler struct {
	logger      *zap.Logger
	authService service.AuthService
	tokens      service.TokenService
}

// NewAuthHandler creates an auth handler with the provided dependencies.
func NewAuthHandler(deps AuthDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		logger:      logger,
		authService: deps.AuthService,
		tokens:      deps.Tokens,
	}
}

// Register wires auth routes onto the provided router.
func (h *AuthHandler) Register(router fiber.Router) {
	auth := router.Group("/api/auth")
	{
		auth.Post("/signup", h.Signup)
		auth.Post("/login", h.Login)
		auth.Get("/me", middleware.RequireAuth(h.tokens), h.Me)
		auth.Get("/verify", middleware.RequireAuth(h.tokens), h.Verify)
	}
}

// CredentialsRequest is the body for both signup and login.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AccountResponse is the JSON view of an account.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

func accountResponse(account *model.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Email:     account.Email,
		Tier:      account.Tier,
		CreatedAt: account.CreatedAt,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	account, token, err := h.authService.Signup(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "email already registered",
			})
		case errors.Is(err, service.ErrWeakPassword):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "signup failed",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account": accountResponse(account),
		"token":   token,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	account, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid email or password",
			})
		case errors.Is(err, service.ErrAccountDisabled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "account is disabled",
			})
		default:
			h.logger.Error("login failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "login failed",
			})
		}
	}

	return c.JSON(fiber.Map{
		"account": accountResponse(account),
		"token":   token,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	account, err := h.authService.Account(ctx, middleware.AccountID(c))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "account not found",
			})
		}
		h.logger.Error("failed to load account", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load account",
		})
	}

	return c.JSON(accountResponse(account))
}

// Verify handles GET /api/auth/verify; reaching it means the token passed.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"valid":      true,
		"account_id": middleware.AccountID(c),
	})
}
