// ===========================================
// Package normalize - Payload Canonicalization
// ===========================================
// Runs before validation on the create and update paths. Produces a
// canonical LinkInput from whatever shape the client sent: trimmed
// text, lowercased slug, defaulted cover image, cleaned streaming
// links, and analytics IDs with blanks dropped instead of stored as
// empty strings.
// ===========================================

package normalize

import (
	"encoding/json"
	"strings"

	"github.com/user/smartlink/internal/models"
)

// DefaultCoverURL is used when a payload carries no cover image.
const DefaultCoverURL = "https://via.placeholder.com/300x300/6366f1/ffffff?text=Cover"

// Link canonicalizes a raw create/update payload.
// It never fails: malformed sub-shapes degrade to their zero form
// (an array or null streamingLinks becomes an empty map) and the
// validation layer decides what is actually acceptable.
func Link(p *models.LinkPayload) *models.LinkInput {
	in := &models.LinkInput{
		Artist:         strings.TrimSpace(p.Artist),
		Title:          strings.TrimSpace(p.Title),
		Slug:           strings.ToLower(strings.TrimSpace(p.Slug)),
		CoverURL:       strings.TrimSpace(p.CoverURL),
		StreamingLinks: streamingLinks(p.StreamingLinks),
		GtmID:          strings.TrimSpace(p.GtmID),
		Ga4ID:          strings.TrimSpace(p.Ga4ID),
		GoogleAdsID:    strings.TrimSpace(p.GoogleAdsID),
		Analytics:      analytics(p.Analytics),
	}

	if in.CoverURL == "" {
		in.CoverURL = DefaultCoverURL
	}

	return in
}

// streamingLinks coerces the raw field to a platform->URL map and
// drops entries whose value is blank after trimming. Missing, null,
// or non-object input yields an empty map.
func streamingLinks(raw json.RawMessage) map[string]string {
	links := map[string]string{}
	if len(raw) == 0 {
		return links
	}

	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return links
	}

	for platform, url := range decoded {
		if url = strings.TrimSpace(url); url != "" {
			links[platform] = url
		}
	}
	return links
}

// analytics trims the tag IDs and drops the whole sub-record when
// nothing remains set.
func analytics(a *models.AnalyticsTags) *models.AnalyticsTags {
	if a == nil {
		return nil
	}

	cleaned := &models.AnalyticsTags{
		GtmID:       strings.TrimSpace(a.GtmID),
		Ga4ID:       strings.TrimSpace(a.Ga4ID),
		GoogleAdsID: strings.TrimSpace(a.GoogleAdsID),
	}
	if cleaned.Empty() {
		return nil
	}
	return cleaned
}
