package handler

import (
	"context"
	"errors"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/GSMS-B/ProjectQR/internal/app/safety"
	"github.com/GSMS-B/ProjectQR/internal/app/service"
	"github.com/GSMS-B/ProjectQR/internal/http/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
	QRService   service.QRService
	Safety      *safety.Evaluator
	Tokens      service.TokenService
	BaseURL     string
}

// APIHandler implements the link management endpoints.
type APIHandler struct {
	logger      *zap.Logger
	linkService service.LinkService
	qrService   service.QRService
	safety      *safety.Evaluator
	tokens      service.TokenService
	baseURL     string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:      logger,
		linkService: deps.LinkService,
		qrService:   deps.QRService,
		safety:      deps.Safety,
		tokens:      deps.Tokens,
		baseURL:     deps.BaseURL,
	}
}

// Register wires API routes onto the provided router. The QR image stays
// public; everything else needs a bearer token except create, which also
// accepts anonymous links.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		links := api.Group("/links")
		{
			links.Get("/:code/image", h.LinkImage)
			links.Post("/", middleware.OptionalAuth(h.tokens), h.CreateLink)
			links.Get("/", middleware.RequireAuth(h.tokens), h.ListLinks)
			links.Get("/:code", middleware.OptionalAuth(h.tokens), h.GetLink)
			links.Patch("/:code", middleware.RequireAuth(h.tokens), h.UpdateLink)
			links.Delete("/:code", middleware.RequireAuth(h.tokens), h.DeleteLink)
			links.Get("/:code/history", middleware.RequireAuth(h.tokens), h.LinkHistory)
		}
	}
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	Code             string     `json:"code,omitempty" validate:"omitempty,min=6,max=32,alphanum"`
	URL              string     `json:"url" validate:"required,url"`
	Title            string     `json:"title,omitempty" validate:"omitempty,max=255"`
	ShowPreview      *bool      `json:"show_preview,omitempty"`
	AnalyticsEnabled *bool      `json:"analytics_enabled,omitempty"`
	QRColor          string     `json:"qr_color,omitempty" validate:"omitempty,hexcolor"`
	QRBackground     string     `json:"qr_background,omitempty" validate:"omitempty,hexcolor"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// LinkResponse is the JSON view of a link.
type LinkResponse struct {
	Code             string     `json:"code"`
	ShortURL         string     `json:"short_url"`
	URL              string     `json:"url"`
	Title            string     `json:"title,omitempty"`
	Active           bool       `json:"active"`
	ShowPreview      bool       `json:"show_preview"`
	AnalyticsEnabled bool       `json:"analytics_enabled"`
	QRColor          string     `json:"qr_color"`
	QRBackground     string     `json:"qr_background"`
	TotalScans       int64      `json:"total_scans"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (h *APIHandler) linkResponse(link *model.Link) LinkResponse {
	return LinkResponse{
		Code:             link.ShortCode,
		ShortURL:         h.baseURL + "/" + link.ShortCode,
		URL:              link.Destination,
		Title:            link.Title,
		Active:           link.Active,
		ShowPreview:      link.ShowPreview,
		AnalyticsEnabled: link.AnalyticsEnabled,
		QRColor:          link.QRColor,
		QRBackground:     link.QRBackground,
		TotalScans:       link.TotalScans,
		ExpiresAt:        link.ExpiresAt,
		CreatedAt:        link.CreatedAt,
	}
}

// CreateLink handles POST /api/links. The destination must pass the safety
// gate before the link is created.
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
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

	evaluation := h.safety.Evaluate(ctx, req.URL, false)
	if !evaluation.Safe {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "destination failed safety checks",
			"details": evaluation.Errors,
		})
	}

	input := service.CreateLinkInput{
		Code:             req.Code,
		Destination:      req.URL,
		Title:            req.Title,
		ShowPreview:      req.ShowPreview,
		AnalyticsEnabled: req.AnalyticsEnabled,
		QRColor:          req.QRColor,
		QRBackground:     req.QRBackground,
		ExpiresAt:        req.ExpiresAt,
	}
	if accountID := middleware.AccountID(c); accountID != "" {
		input.OwnerID = &accountID
	}

	link, err := h.linkService.CreateLink(ctx, input)
	if err != nil {
		if errors.Is(err, repository.ErrCodeTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "short code already taken",
			})
		}
		h.logger.Error("failed to create link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create link",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"link":     h.linkResponse(link),
		"warnings": evaluation.Warnings,
	})
}

// ListLinks handles GET /api/links, scoped to the caller's account.
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	limit := 20
	offset := 0
	if parsed := c.QueryInt("limit"); parsed > 0 && parsed <= 100 {
		limit = parsed
	}
	if parsed := c.QueryInt("offset"); parsed > 0 {
		offset = parsed
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	links, err := h.linkService.ListLinks(ctx, middleware.AccountID(c), limit, offset)
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list links",
		})
	}

	response := make([]LinkResponse, len(links))
	for i := range links {
		response[i] = h.linkResponse(&links[i])
	}

	return c.JSON(fiber.Map{
		"links":  response,
		"limit":  limit,
		"offset": offset,
		"count":  len(response),
	})
}

// GetLink handles GET /api/links/:code
func (h *APIHandler) GetLink(c *fiber.Ctx) error {
	code := c.Params("code")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, err := h.linkService.GetLink(ctx, code)
	if err != nil {
		return h.linkError(c, err, code, "failed to get link")
	}
	return c.JSON(h.linkResponse(link))
}

// UpdateLinkRequest represents the request body for updating a link.
type UpdateLinkRequest struct {
	URL              *string    `json:"url,omitempty" validate:"omitempty,url"`
	Title            *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Active           *bool      `json:"active,omitempty"`
	ShowPreview      *bool      `json:"show_preview,omitempty"`
	AnalyticsEnabled *bool      `json:"analytics_enabled,omitempty"`
	QRColor          *string    `json:"qr_color,omitempty" validate:"omitempty,hexcolor"`
	QRBackground     *string    `json:"qr_background,omitempty" validate:"omitempty,hexcolor"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// UpdateLink handles PATCH /api/links/:code. A destination change re-runs
// the safety gate and lands in the link's history.
func (h *APIHandler) UpdateLink(c *fiber.Ctx) error {
	code := c.Params("code")

	var req UpdateLinkRequest
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

	var warnings []string
	if req.URL != nil {
		evaluation := h.safety.Evaluate(ctx, *req.URL, false)
		if !evaluation.Safe {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "destination failed safety checks",
				"details": evaluation.Errors,
			})
		}
		warnings = evaluation.Warnings
	}

	input := service.UpdateLinkInput{
		Destination:      req.URL,
		Title:            req.Title,
		Active:           req.Active,
		ShowPreview:      req.ShowPreview,
		AnalyticsEnabled: req.AnalyticsEnabled,
		QRColor:          req.QRColor,
		QRBackground:     req.QRBackground,
		ExpiresAt:        req.ExpiresAt,
	}

	link, err := h.linkService.UpdateLink(ctx, code, middleware.AccountID(c), input)
	if err != nil {
		return h.linkError(c, err, code, "failed to update link")
	}

	return c.JSON(fiber.Map{
		"link":     h.linkResponse(link),
		"warnings": warnings,
	})
}

// DeleteLink handles DELETE /api/links/:code with a soft delete.
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	code := c.Params("code")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := h.linkService.DeleteLink(ctx, code, middleware.AccountID(c)); err != nil {
		return h.linkError(c, err, code, "failed to delete link")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LinkHistory handles GET /api/links/:code/history
func (h *APIHandler) LinkHistory(c *fiber.Ctx) error {
	code := c.Params("code")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	history, err := h.linkService.LinkHistory(ctx, code, middleware.AccountID(c))
	if err != nil {
		return h.linkError(c, err, code, "failed to load history")
	}

	entries := make([]fiber.Map, len(history))
	for i, entry := range history {
		entries[i] = fiber.Map{
			"old_url":    entry.OldURL,
			"new_url":    entry.NewURL,
			"changed_at": entry.ChangedAt,
		}
	}
	return c.JSON(fiber.Map{"code": code, "history": entries})
}

// LinkImage handles GET /api/links/:code/image, returning the QR PNG.
func (h *APIHandler) LinkImage(c *fiber.Ctx) error {
	code := c.Params("code")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, err := h.linkService.GetLink(ctx, code)
	if err != nil {
		return h.linkError(c, err, code, "failed to get link")
	}

	size := c.QueryInt("size")
	png, err := h.qrService.RenderPNG(h.baseURL+"/"+link.ShortCode, link.QRColor, link.QRBackground, size)
	if err != nil {
		if errors.Is(err, service.ErrBadColor) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to render qr image", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render image",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

func (h *APIHandler) linkError(c *fiber.Ctx, err error, code, msg string) error {
	switch {
	case errors.Is(err, repository.ErrLinkNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "link not found",
		})
	case errors.Is(err, service.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "link belongs to another account",
		})
	default:
		h.logger.Error(msg, zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": msg,
		})
	}
}
