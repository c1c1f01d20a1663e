package handler

import (
	"context"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/service"
	infraprometheus "github.com/Vanjivaka-Sairam/url-shortener/internal/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RedirectDeps groups dependencies required by redirect handlers.
type RedirectDeps struct {
	Logger   *zap.Logger
	Resolver *service.Resolver
}

// RedirectHandler serves the public redirect surface.
type RedirectHandler struct {
	logger   *zap.Logger
	resolver *service.Resolver
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		resolver: deps.Resolver,
	}
}

// Register wires redirect routes onto the provided router. The code
// route is a catch-all and must be registered after the API routes.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/:code", h.Resolve)
}

// Health is a simple root endpoint so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "url-shortener",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Resolve handles GET /:code. HIT redirects, NOT_FOUND maps to 404,
// EXPIRED to 410 and a storage failure to 500 so a missing link is
// never conflated with an unreachable store.
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

	resolution, err := h.resolver.Resolve(ctx, code, service.VisitContext{
		UserAgent:     c.Get("User-Agent"),
		SourceAddress: c.IP(),
	})
	if err != nil {
		infraprometheus.RedirectsTotal.WithLabelValues("error").Inc()
		h.logger.Error("failed to resolve link", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	infraprometheus.RedirectsTotal.WithLabelValues(resolution.Outcome.String()).Inc()

	switch resolution.Outcome {
	case service.OutcomeHit:
		h.logger.Debug("redirecting short link",
			zap.String("code", code), zap.String("target", resolution.TargetURL))
		return c.Redirect(resolution.TargetURL, fiber.StatusFound)
	case service.OutcomeExpired:
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"error": "link expired",
		})
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "short link not found",
		})
	}
}
