package handler

import (
	"context"
	"errors"

	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/GSMS-B/ProjectQR/internal/app/service"
	"github.com/GSMS-B/ProjectQR/internal/http/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReportDeps groups dependencies required by report handlers.
type ReportDeps struct {
	Logger        *zap.Logger
	ReportService service.ReportService
	Tokens        service.TokenService
}

// ReportHandler implements the abuse report API.
type ReportHandler struct {
	logger        *zap.Logger
	reportService service.ReportService
	tokens        service.TokenService
}

// NewReportHandler creates a report handler with the provided dependencies.
func NewReportHandler(deps ReportDeps) *ReportHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{
		logger:        logger,
		reportService: deps.ReportService,
		tokens:        deps.Tokens,
	}
}

// Register wires report routes onto the provided router. Filing is public;
// the review queue needs a token.
func (h *ReportHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		api.Post("/report/:code", h.FileReport)
		reports := api.Group("/reports", middleware.RequireAuth(h.tokens))
		{
			reports.Get("/", h.PendingReports)
			reports.Patch("/:id", h.SetStatus)
		}
	}
}

// FileReportRequest is the body for filing an abuse report.
type FileReportRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// FileReport handles POST /api/report/:code
func (h *ReportHandler) FileReport(c *fiber.Ctx) error {
	code := c.Params("code")

	var req FileReportRequest
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

	report, err := h.reportService.FileReport(ctx, code, c.IP(), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyReason):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "report reason is required",
			})
		case errors.Is(err, repository.ErrLinkNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		default:
			h.logger.Error("failed to file report", zap.Error(err), zap.String("code", code))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to file report",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     report.ID,
		"status": report.Status,
	})
}

// PendingReports handles GET /api/reports
func (h *ReportHandler) PendingReports(c *fiber.Ctx) error {
	limit := 50
	offset := 0
	if parsed := c.QueryInt("limit"); parsed > 0 && parsed <= 200 {
		limit = parsed
	}
	if parsed := c.QueryInt("offset"); parsed > 0 {
		offset = parsed
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	reports, err := h.reportService.PendingReports(ctx, limit, offset)
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"count":   len(reports),
	})
}

// SetStatusRequest is the body for a report status change.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed dismissed actioned"`
}

// SetStatus handles PATCH /api/reports/:id
func (h *ReportHandler) SetStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req SetStatusRequest
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

	if err := h.reportService.SetStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "report not found",
			})
		}
		h.logger.Error("failed to update report", zap.Error(err), zap.String("id", id))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update report",
		})
	}

	return c.JSON(fiber.Map{"id": id, "status": req.Status})
}
