package handler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/GSMS-B/ProjectQR/internal/app/safety"
	"github.com/GSMS-B/ProjectQR/internal/app/service"
	infraProm "github.com/GSMS-B/ProjectQR/internal/infra/prometheus"
	httpUtil "github.com/GSMS-B/ProjectQR/internal/http/util"
	"github.com/GSMS-B/ProjectQR/internal/http/view"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const continueTokenTTL = 60 * time.Second

// RedirectDeps groups dependencies required by redirect handlers.
type RedirectDeps struct {
	Logger    *zap.Logger
	Links     repository.LinkRepository
	Secret    []byte
	Publisher *service.ScanPublisher
	Safety    *safety.Evaluator
	Reports   service.ReportService
}

// RedirectHandler implements the scan-and-redirect flow with the security
// preview interstitial.
type RedirectHandler struct {
	logger    *zap.Logger
	links     repository.LinkRepository
	tokens    *httpUtil.TokenSigner
	publisher *service.ScanPublisher
	safety    *safety.Evaluator
	reports   service.ReportService
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:    logger,
		links:     deps.Links,
		tokens:    httpUtil.NewTokenSigner(deps.Secret, continueTokenTTL),
		publisher: deps.Publisher,
		safety:    deps.Safety,
		reports:   deps.Reports,
	}
}

// Register wires redirect routes onto the provided router. The catch-all
// :code route goes last.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/preview/:code", h.Preview)
	router.Get("/report/:code", h.ReportForm)
	router.Post("/report/:code", h.SubmitReportForm)
	router.Get("/:code/_go/:token", h.Go)
	router.Get("/:code", h.Resolve)
}

// Health is a simple root endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "ProjectQR",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Resolve handles GET /:code: logs the scan and either redirects straight to
// the destination or shows the security preview.
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing link code",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, loadErr := h.loadLink(ctx, code)
	if loadErr != nil {
		infraProm.RedirectsTotal.WithLabelValues(loadErr.Outcome).Inc()
		return c.Status(loadErr.StatusCode).JSON(fiber.Map{
			"error": loadErr.Message,
		})
	}

	if link.AnalyticsEnabled && h.publisher != nil {
		go h.publishScan(link.ID, c.IP(), c.Get(fiber.HeaderUserAgent), c.Get(fiber.HeaderReferer))
	}

	if link.ShowPreview {
		infraProm.RedirectsTotal.WithLabelValues("preview").Inc()
		return h.renderPreview(c, link)
	}

	infraProm.RedirectsTotal.WithLabelValues("redirect").Inc()
	h.logger.Debug("redirecting short link",
		zap.String("code", code), zap.String("target", link.Destination))
	return c.Redirect(link.Destination, fiber.StatusFound)
}

// Preview handles GET /preview/:code without logging a scan, so refreshing
// the interstitial does not inflate analytics.
func (h *RedirectHandler) Preview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, loadErr := h.loadLink(ctx, c.Params("code"))
	if loadErr != nil {
		return c.Status(loadErr.StatusCode).JSON(fiber.Map{
			"error": loadErr.Message,
		})
	}
	return h.renderPreview(c, link)
}

// Go verifies the continue token and issues the final redirect.
func (h *RedirectHandler) Go(c *fiber.Ctx) error {
	code := c.Params("code")
	token := c.Params("token")
	if code == "" || token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing code or token",
		})
	}

	if err := h.tokens.Validate(code, token); err != nil {
		if errors.Is(err, httpUtil.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to validate continue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to validate token",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, loadErr := h.loadLink(ctx, code)
	if loadErr != nil {
		return c.Status(loadErr.StatusCode).JSON(fiber.Map{
			"error": loadErr.Message,
		})
	}

	infraProm.RedirectsTotal.WithLabelValues("continue").Inc()
	h.logger.Debug("final redirect",
		zap.String("code", code), zap.String("target", link.Destination))
	return c.Redirect(link.Destination, fiber.StatusFound)
}

// ReportForm handles GET /report/:code, rendering either the form or the
// thanks page after submission.
func (h *RedirectHandler) ReportForm(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, loadErr := h.loadLink(ctx, c.Params("code"))
	if loadErr != nil {
		return c.Status(loadErr.StatusCode).JSON(fiber.Map{
			"error": loadErr.Message,
		})
	}

	html, err := view.RenderReportPage(view.ReportPageData{
		Code:      link.ShortCode,
		TargetURL: link.Destination,
		SubmitURL: "/report/" + link.ShortCode,
		Submitted: c.QueryBool("submitted"),
	})
	if err != nil {
		h.logger.Error("failed to render report page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.Type("html", "utf-8").SendString(html)
}

// SubmitReportForm handles the HTML form POST and bounces back to the
// thanks page.
func (h *RedirectHandler) SubmitReportForm(c *fiber.Ctx) error {
	code := c.Params("code")
	reason := c.FormValue("reason")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := h.reports.FileReport(ctx, code, c.IP(), reason); err != nil {
		if errors.Is(err, service.ErrEmptyReason) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "report reason is required",
			})
		}
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "short link not found",
			})
		}
		h.logger.Error("failed to file report", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to file report",
		})
	}

	return c.Redirect("/report/"+code+"?submitted=true", fiber.StatusSeeOther)
}

func (h *RedirectHandler) renderPreview(c *fiber.Ctx, link *model.Link) error {
	token, err := h.tokens.Issue(link.ShortCode)
	if err != nil {
		h.logger.Error("failed to issue continue token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to prepare redirect",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	data := view.PreviewPageData{
		Title:       link.Title,
		Code:        link.ShortCode,
		TargetURL:   link.Destination,
		Domain:      hostOf(link.Destination),
		ContinueURL: fmt.Sprintf("/%s/_go/%s", link.ShortCode, token),
		ReportURL:   "/report/" + link.ShortCode,
	}
	if h.safety != nil {
		info := h.safety.Preview(ctx, link.Destination)
		data.HasTLS = info.HasTLS
		data.TLSIssuer = info.TLSIssuer
		data.Safe = info.Safe
		data.Threats = info.Threats
		data.DomainAgeDays = info.DomainAgeDays
		data.DomainCreated = info.DomainCreated
		data.NewDomain = info.NewDomain
	} else {
		data.Safe = true
	}

	html, err := view.RenderPreviewPage(data)
	if err != nil {
		h.logger.Error("failed to render preview page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.Type("html", "utf-8").SendString(html)
}

type linkLoadError struct {
	StatusCode int
	Message    string
	Outcome    string
}

func (h *RedirectHandler) loadLink(ctx context.Context, code string) (*model.Link, *linkLoadError) {
	if code == "" {
		return nil, &linkLoadError{
			StatusCode: fiber.StatusBadRequest,
			Message:    "missing link code",
			Outcome:    "bad_request",
		}
	}

	link, err := h.links.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, &linkLoadError{
				StatusCode: fiber.StatusNotFound,
				Message:    "short link not found",
				Outcome:    "not_found",
			}
		}
		h.logger.Error("failed to load link", zap.Error(err), zap.String("code", code))
		return nil, &linkLoadError{
			StatusCode: fiber.StatusInternalServerError,
			Message:    "internal server error",
			Outcome:    "error",
		}
	}

	if !link.Active {
		return nil, &linkLoadError{
			StatusCode: fiber.StatusGone,
			Message:    "link is no longer active",
			Outcome:    "inactive",
		}
	}
	if link.ExpiresAt != nil && time.Now().After(*link.ExpiresAt) {
		return nil, &linkLoadError{
			StatusCode: fiber.StatusGone,
			Message:    "link expired",
			Outcome:    "expired",
		}
	}

	return link, nil
}

func (h *RedirectHandler) publishScan(linkID, ip, userAgent, referrer string) {
	if err := h.publisher.Publish(linkID, ip, userAgent, referrer); err != nil {
		h.logger.Error("failed to publish scan event",
			zap.Error(err), zap.String("link_id", linkID))
	}
}

func hostOf(raw string) string {
	if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return raw
}
