package server

import (
	"context"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/service"
	inthttp "github.com/Vanjivaka-Sairam/url-shortener/internal/http/handler"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/http/middleware"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/http/util"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure and domain dependencies required
// by the HTTP server.
type Dependencies struct {
	Logger    *zap.Logger
	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	NATS      *nats.Conn
	JetStream nats.JetStreamContext
	Users     repository.UserRepository
	Links     service.LinkService
	Resolver  *service.Resolver
	Tokens    *util.TokenSigner
	BaseURL   string
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

func (s *Server) registerRoutes() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}

	authHandler := inthttp.NewAuthHandler(inthttp.AuthDeps{
		Logger: s.deps.Logger,
		Users:  s.deps.Users,
		Tokens: s.deps.Tokens,
	})
	authHandler.Register(s.app)

	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:  s.deps.Logger,
		Links:   s.deps.Links,
		BaseURL: s.deps.BaseURL,
	})
	apiHandler.Register(s.app, middleware.Auth(s.deps.Tokens))

	// Registered last: /:code is a catch-all.
	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:   s.deps.Logger,
		Resolver: s.deps.Resolver,
	})
	redirectHandler.Register(s.app)
}
