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

// AnalyticsDeps groups dependencies required by analytics handlers.
type AnalyticsDeps struct {
	Logger    *zap.Logger
	Analytics service.AnalyticsService
	Tokens    service.TokenService
}

// AnalyticsHandler exposes the scan aggregation endpoints.
type AnalyticsHandler struct {
	logger    *zap.Logger
	analytics service.AnalyticsService
	tokens    service.TokenService
}

// NewAnalyticsHandler creates an analytics handler with the provided dependencies.
func NewAnalyticsHandler(deps AnalyticsDeps) *AnalyticsHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{
		logger:    logger,
		analytics: deps.Analytics,
		tokens:    deps.Tokens,
	}
}

// Register wires analytics routes onto the provided router. Global stats are
// public; per-link reports need a token.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	analytics := router.Group("/api/analytics")
	{
		analytics.Get("/global/stats", h.GlobalStats)
		analytics.Get("/:code", middleware.RequireAuth(h.tokens), h.LinkAnalytics)
		analytics.Get("/:code/timeline", middleware.RequireAuth(h.tokens), h.Timeline)
		analytics.Get("/:code/summary", middleware.RequireAuth(h.tokens), h.Summary)
	}
}

// GlobalStats handles GET /api/analytics/global/stats
func (h *AnalyticsHandler) GlobalStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := h.analytics.GlobalStats(ctx)
	if err != nil {
		h.logger.Error("failed to load global stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}
	return c.JSON(stats)
}

// LinkAnalytics handles GET /api/analytics/:code?days=N
func (h *AnalyticsHandler) LinkAnalytics(c *fiber.Ctx) error {
	report, ok, err := h.loadReport(c)
	if !ok {
		return err
	}
	return c.JSON(report)
}

// Timeline handles GET /api/analytics/:code/timeline?days=N, returning just
// the zero-filled daily series.
func (h *AnalyticsHandler) Timeline(c *fiber.Ctx) error {
	report, ok, err := h.loadReport(c)
	if !ok {
		return err
	}
	return c.JSON(fiber.Map{
		"code":     report.ShortCode,
		"days":     report.WindowDays,
		"timeline": report.Timeline,
	})
}

// Summary handles GET /api/analytics/:code/summary
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	code := c.Params("code")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	summary, err := h.analytics.LinkSummary(ctx, code, middleware.AccountID(c))
	if err != nil {
		// Links owned by another account look like missing ones.
		if errors.Is(err, repository.ErrLinkNotFound) || errors.Is(err, service.ErrNotOwner) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		}
		h.logger.Error("failed to load summary", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load summary",
		})
	}
	return c.JSON(summary)
}

// loadReport resolves the report or writes the error response itself; ok is
// false once a response has been written.
func (h *AnalyticsHandler) loadReport(c *fiber.Ctx) (*service.LinkAnalytics, bool, error) {
	code := c.Params("code")
	days := c.QueryInt("days", 30)

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := h.analytics.LinkAnalytics(ctx, code, middleware.AccountID(c), days)
	if err != nil {
		// Links owned by another account look like missing ones.
		if errors.Is(err, repository.ErrLinkNotFound) || errors.Is(err, service.ErrNotOwner) {
			return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		}
		h.logger.Error("failed to aggregate analytics", zap.Error(err), zap.String("code", code))
		return nil, false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to aggregate analytics",
		})
	}
	return report, true, nil
}
