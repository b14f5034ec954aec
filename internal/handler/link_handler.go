// ===========================================
// Package handler - HTTP Request Handlers
// ===========================================
// Handlers are thin: parse the request, call the service, format the
// response. Error-to-HTTP mapping is centralized so every endpoint
// speaks the same ErrorResponse dialect.
// ===========================================

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

// LinkHandler handles SmartLink CRUD requests.
type LinkHandler struct {
	links  *service.LinkService
	logger *zap.Logger
}

// NewLinkHandler creates a new SmartLink handler.
func NewLinkHandler(links *service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{links: links, logger: logger}
}

// Create handles POST /api/links.
// 201 with the stored record | 400 invalid payload | 409 slug taken.
func (h *LinkHandler) Create(c *gin.Context) {
	var payload models.LinkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  models.ErrCodeInvalidInput,
		})
		return
	}

	link, err := h.links.Create(c.Request.Context(), &payload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// List handles GET /api/links. Newest first.
func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.links.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// Get handles GET /api/links/:slug.
func (h *LinkHandler) Get(c *gin.Context) {
	slug := c.Param("slug")
	if !validation.IsValidSlug(slug) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid slug",
			Code:  models.ErrCodeInvalidInput,
			Details: []models.FieldError{
				{Field: "slug", Message: "slug may only contain lowercase letters, numbers and single hyphens"},
			},
		})
		return
	}

	link, err := h.links.Get(c.Request.Context(), slug)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// CheckSlug handles GET /api/links/check-slug/:slug.
// Pure read; a slug that can never exist simply reports available.
func (h *LinkHandler) CheckSlug(c *gin.Context) {
	slug := c.Param("slug")

	available, err := h.links.CheckSlugAvailable(c.Request.Context(), slug)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CheckSlugResponse{
		Available: available,
		Slug:      slug,
	})
}

// Update handles PUT /api/links/:slug. Full replace of the
// user-editable fields with the same validation as creation.
func (h *LinkHandler) Update(c *gin.Context) {
	slug := c.Param("slug")
	if !validation.IsValidSlug(slug) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid slug",
			Code:  models.ErrCodeInvalidInput,
			Details: []models.FieldError{
				{Field: "slug", Message: "slug may only contain lowercase letters, numbers and single hyphens"},
			},
		})
		return
	}

	var payload models.LinkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  models.ErrCodeInvalidInput,
		})
		return
	}

	link, err := h.links.Update(c.Request.Context(), slug, &payload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// Delete handles DELETE /api/links/:slug.
// Returns the removed slug for confirmation.
func (h *LinkHandler) Delete(c *gin.Context) {
	slug := c.Param("slug")

	if err := h.links.Delete(c.Request.Context(), slug); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DeleteResponse{
		Message: "SmartLink deleted",
		Slug:    slug,
	})
}

// handleError converts service errors to HTTP responses.
// Unknown errors are logged server-side and surface as a generic 500.
func (h *LinkHandler) handleError(c *gin.Context, err error) {
	var invalid *validation.InvalidInputError

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid payload",
			Code:    models.ErrCodeInvalidInput,
			Details: invalid.Fields,
		})

	case errors.Is(err, service.ErrSlugTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: "This slug is already in use",
			Code:  models.ErrCodeConflict,
		})

	case errors.Is(err, service.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "SmartLink not found",
			Code:  models.ErrCodeNotFound,
		})

	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error",
			Code:  models.ErrCodeInternalError,
		})
	}
}
