package handler

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/service"
	infraprometheus "github.com/Vanjivaka-Sairam/url-shortener/internal/infra/prometheus"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/http/middleware"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger  *zap.Logger
	Links   service.LinkService
	BaseURL string
}

// APIHandler implements the owner-scoped management API.
type APIHandler struct {
	logger  *zap.Logger
	links   service.LinkService
	baseURL string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:  logger,
		links:   deps.Links,
		baseURL: strings.TrimRight(deps.BaseURL, "/"),
	}
}

// Register wires API routes onto the provided router behind the auth
// middleware.
func (h *APIHandler) Register(router fiber.Router, auth fiber.Handler) {
	api := router.Group("/api", auth)
	{
		links := api.Group("/links")
		{
			links.Post("/", h.CreateLink)
			links.Get("/", h.ListLinks)
			links.Get("/:code/analytics", h.GetAnalytics)
			links.Patch("/:code", h.SetActive)
			links.Delete("/:code", h.DeleteLink)
		}
	}
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ShortURL    string    `json:"shortUrl"`
	ShortCode   string    `json:"shortCode"`
	OriginalURL string    `json:"originalUrl"`
	IsActive    bool      `json:"isActive"`
	TotalClicks int64     `json:"totalClicks"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *APIHandler) linkResponse(link *model.Link) LinkResponse {
	return LinkResponse{
		ShortURL:    h.baseURL + "/" + link.ShortCode,
		ShortCode:   link.ShortCode,
		OriginalURL: link.TargetURL,
		IsActive:    link.IsActive,
		TotalClicks: link.TotalClicks,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
	}
}

// CreateLink handles POST /api/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url is required",
		})
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url must be a valid http(s) URL",
		})
	}

	link, err := h.links.CreateLink(h.ctx(c), ownerID, req.URL)
	if err != nil {
		h.logger.Error("failed to create link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create link",
		})
	}

	infraprometheus.LinksCreated.Inc()
	return c.Status(fiber.StatusCreated).JSON(h.linkResponse(link))
}

// ListLinks handles GET /api/links
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	links, err := h.links.ListLinks(h.ctx(c), ownerID)
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
		"links": response,
		"count": len(response),
	})
}

// GetAnalytics handles GET /api/links/:code/analytics
func (h *APIHandler) GetAnalytics(c *fiber.Ctx) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	code := c.Params("code")

	summary, err := h.links.GetAnalytics(h.ctx(c), ownerID, code)
	if err != nil {
		return h.linkError(c, err, code, "failed to aggregate analytics")
	}

	return c.JSON(summary)
}

// SetActiveRequest represents the request body for toggling a link.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive handles PATCH /api/links/:code
func (h *APIHandler) SetActive(c *fiber.Ctx) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	code := c.Params("code")

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "active is required",
		})
	}

	link, err := h.links.SetActive(h.ctx(c), ownerID, code, *req.Active)
	if err != nil {
		return h.linkError(c, err, code, "failed to update link")
	}

	return c.JSON(h.linkResponse(link))
}

// DeleteLink handles DELETE /api/links/:code
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	code := c.Params("code")

	if err := h.links.DeleteLink(h.ctx(c), ownerID, code); err != nil {
		return h.linkError(c, err, code, "failed to delete link")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// linkError maps a missing or foreign-owned link to 404 and anything
// else to 500. Owner mismatches are deliberately indistinguishable
// from absent codes.
func (h *APIHandler) linkError(c *fiber.Ctx, err error, code, msg string) error {
	if errors.Is(err, repository.ErrLinkNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "link not found",
		})
	}
	h.logger.Error(msg, zap.Error(err), zap.String("code", code))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

func (h *APIHandler) ctx(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
