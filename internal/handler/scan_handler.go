package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/smartlink/internal/models"
	"github.com/user/smartlink/internal/odesli"
	"go.uber.org/zap"
)

// ScanHandler exposes the external link scanner.
type ScanHandler struct {
	scanner *odesli.Client
	logger  *zap.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanner *odesli.Client, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{scanner: scanner, logger: logger}
}

// Scan handles POST /api/scan.
// Resolves a single track URL into per-platform links for the client
// to review; nothing is persisted here.
func (h *ScanHandler) Scan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid payload",
			Code:  models.ErrCodeInvalidInput,
			Details: []models.FieldError{
				{Field: "url", Message: "url must be a valid absolute URL"},
			},
		})
		return
	}

	result, err := h.scanner.Lookup(req.URL)
	if err != nil {
		if errors.Is(err, odesli.ErrNoSong) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: "No song found. Check the URL or use a valid ISRC/UPC.",
				Code:  models.ErrCodeNotFound,
			})
			return
		}
		h.logger.Error("scan failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Link resolution service unavailable",
			Code:  models.ErrCodeUpstreamUnavailable,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
