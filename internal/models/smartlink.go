// ===========================================
// Package models - Domain Models
// ===========================================
// Data shapes shared between layers. Models are dumb containers;
// behavior lives in the service layer. JSON tags define the API
// contract and mirror the persisted document layout.
// ===========================================

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SmartLink maps one music track to its destinations on every
// streaming platform, plus click analytics. The primary entity.
type SmartLink struct {
	ID             uuid.UUID         `json:"id"`
	Artist         string            `json:"artist"`
	Title          string            `json:"title"`
	Slug           string            `json:"slug"` // unique, lowercase, URL-safe
	CoverURL       string            `json:"coverUrl"`
	StreamingLinks map[string]string `json:"streamingLinks"` // platform key -> destination URL
	Analytics      *AnalyticsTags    `json:"analytics,omitempty"`
	ClickStats     ClickStats        `json:"clickStats"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// AnalyticsTags holds the optional marketing tag IDs attached to a
// link's public page. Blank values are dropped during normalization,
// so a set field is always non-empty.
type AnalyticsTags struct {
	GtmID       string `json:"gtmId,omitempty" validate:"omitempty,gtmid"`
	Ga4ID       string `json:"ga4Id,omitempty" validate:"omitempty,ga4id"`
	GoogleAdsID string `json:"googleAdsId,omitempty" validate:"omitempty,adsid"`
}

// Empty reports whether no tag ID is set.
func (a *AnalyticsTags) Empty() bool {
	return a == nil || (a.GtmID == "" && a.Ga4ID == "" && a.GoogleAdsID == "")
}

// ClickStats tracks redirect traffic. TotalViews counts every
// successful redirect; Clicks breaks the count down per platform.
type ClickStats struct {
	TotalViews int64            `json:"totalViews"`
	Clicks     map[string]int64 `json:"clicks"`
}

// ===========================================
// Request DTOs
// ===========================================

// LinkPayload is the raw body of a create/update request, before
// normalization. StreamingLinks stays a raw message so the
// normalization layer can coerce malformed shapes (null, arrays)
// to an empty map instead of failing the decode.
//
// The flat GtmID/Ga4ID/GoogleAdsID fields are accepted and validated
// for compatibility with older clients, but only the nested analytics
// object is ever persisted.
type LinkPayload struct {
	Artist         string          `json:"artist"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	CoverURL       string          `json:"coverUrl"`
	StreamingLinks json.RawMessage `json:"streamingLinks"`
	GtmID          string          `json:"gtmId"`
	Ga4ID          string          `json:"ga4Id"`
	GoogleAdsID    string          `json:"googleAdsId"`
	Analytics      *AnalyticsTags  `json:"analytics"`
}

// LinkInput is a normalized, validation-ready payload.
// Produced by the normalize package; consumed by validation and the
// service layer.
type LinkInput struct {
	Artist         string            `json:"artist" validate:"required,max=100"`
	Title          string            `json:"title" validate:"required,max=100"`
	Slug           string            `json:"slug" validate:"required,slug"`
	CoverURL       string            `json:"coverUrl" validate:"required,url"`
	StreamingLinks map[string]string `json:"streamingLinks" validate:"-"`
	GtmID          string            `json:"gtmId" validate:"omitempty,gtmid"`
	Ga4ID          string            `json:"ga4Id" validate:"omitempty,ga4id"`
	GoogleAdsID    string            `json:"googleAdsId" validate:"omitempty,adsid"`
	Analytics      *AnalyticsTags    `json:"analytics"`
}

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ===========================================
// Response DTOs
// ===========================================

// AnalyticsSummary is returned by GET /api/analytics/:slug.
type AnalyticsSummary struct {
	Slug             string           `json:"slug"`
	Artist           string           `json:"artist"`
	Title            string           `json:"title"`
	TotalViews       int64            `json:"totalViews"`
	ClicksByPlatform map[string]int64 `json:"clicksByPlatform"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// CheckSlugResponse is returned by GET /api/links/check-slug/:slug.
type CheckSlugResponse struct {
	Available bool   `json:"available"`
	Slug      string `json:"slug"`
}

// DeleteResponse confirms a deletion with the removed slug.
type DeleteResponse struct {
	Message string `json:"message"`
	Slug    string `json:"slug"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ===========================================
// Error Response
// ===========================================

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse provides a consistent error format across endpoints.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// Machine-readable error codes. Clients switch on these.
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)
