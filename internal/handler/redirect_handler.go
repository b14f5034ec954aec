package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/smartlink/internal/models"
	"github.com/user/smartlink/internal/service"
	"github.com/user/smartlink/internal/validation"
	"go.uber.org/zap"
)

// RedirectHandler serves the public redirect and analytics routes.
type RedirectHandler struct {
	links  *service.LinkService
	logger *zap.Logger
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(links *service.LinkService, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{links: links, logger: logger}
}

// Redirect handles GET /api/redirect/:slug/:platform.
//
// Platforms outside the allow-list are rejected before the store is
// consulted. A resolved pair issues a 302 to the stored destination;
// the click increment happens in the background and never delays or
// fails the redirect.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	slug := c.Param("slug")
	platform := c.Param("platform")

	if !validation.IsValidSlug(slug) {
		renderNotFoundPage(c)
		return
	}
	if !validation.IsAllowedPlatform(platform) {
		renderPlatformPage(c, slug, platform)
		return
	}

	destination, err := h.links.Resolve(c.Request.Context(), slug, platform)
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		renderNotFoundPage(c)
	case errors.Is(err, service.ErrPlatformUnavailable):
		renderPlatformPage(c, slug, platform)
	case err != nil:
		h.logger.Error("redirect failed",
			zap.String("slug", slug),
			zap.String("platform", platform),
			zap.Error(err),
		)
		renderServerErrorPage(c)
	default:
		// 302, not 301: permanent redirects get cached by browsers
		// and would starve the click analytics.
		c.Redirect(http.StatusFound, destination)
	}
}

// Analytics handles GET /api/analytics/:slug.
func (h *RedirectHandler) Analytics(c *gin.Context) {
	slug := c.Param("slug")

	summary, err := h.links.Analytics(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: "SmartLink not found",
				Code:  models.ErrCodeNotFound,
			})
			return
		}
		h.logger.Error("analytics lookup failed", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error",
			Code:  models.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
