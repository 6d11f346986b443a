package server

import (
	"context"

	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/GSMS-B/ProjectQR/internal/app/safety"
	"github.com/GSMS-B/ProjectQR/internal/app/service"
	inthttp "github.com/GSMS-B/ProjectQR/internal/http/handler"
	"github.com/GSMS-B/ProjectQR/internal/http/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles everything the HTTP server wires into its handlers.
type Dependencies struct {
	Logger *zap.Logger
	Redis  *redis.Client

	Links     repository.LinkRepository
	Linker    service.LinkService
	QR        service.QRService
	Auth      service.AuthService
	Tokens    service.TokenService
	Analytics service.AnalyticsService
	Reports   service.ReportService
	Safety    *safety.Evaluator
	Publisher *service.ScanPublisher

	Secret  []byte
	BaseURL string
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	authHandler := inthttp.NewAuthHandler(inthttp.AuthDeps{
		Logger:      s.deps.Logger,
		AuthService: s.deps.Auth,
		Tokens:      s.deps.Tokens,
	})
	authHandler.Register(s.app)

	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:      s.deps.Logger,
		LinkService: s.deps.Linker,
		QRService:   s.deps.QR,
		Safety:      s.deps.Safety,
		Tokens:      s.deps.Tokens,
		BaseURL:     s.deps.BaseURL,
	})
	apiHandler.Register(s.app)

	analyticsHandler := inthttp.NewAnalyticsHandler(inthttp.AnalyticsDeps{
		Logger:    s.deps.Logger,
		Analytics: s.deps.Analytics,
		Tokens:    s.deps.Tokens,
	})
	analyticsHandler.Register(s.app)

	reportHandler := inthttp.NewReportHandler(inthttp.ReportDeps{
		Logger:        s.deps.Logger,
		ReportService: s.deps.Reports,
		Tokens:        s.deps.Tokens,
	})
	reportHandler.Register(s.app)

	// Registered last: its :code route catches everything else.
	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:    s.deps.Logger,
		Links:     s.deps.Links,
		Secret:    s.deps.Secret,
		Publisher: s.deps.Publisher,
		Safety:    s.deps.Safety,
		Reports:   s.deps.Reports,
	})
	redirectHandler.Register(s.app)
}
