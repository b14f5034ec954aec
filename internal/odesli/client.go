// ===========================================
// Package odesli - External Link Scanner
// ===========================================
// Thin client for the Odesli (song.link) lookup API. Given one track
// URL it returns the track metadata and its destinations on every
// platform Odesli knows about, with Odesli's platform vocabulary
// mapped into ours. Lookup never persists anything; the client
// reviews the result before submitting a creation request.
// ===========================================

package odesli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/user/smartlink/internal/config"
	"github.com/valyala/fasthttp"
)

// ErrNoSong means the lookup succeeded but resolved no song entity
// (bad URL, unknown ISRC, or an album/artist page).
var ErrNoSong = errors.New("no song found for this URL")

// platformAliases maps Odesli platform keys onto the internal
// vocabulary. Keys not listed here pass through unchanged.
var platformAliases = map[string]string{
	"spotify":      "spotify",
	"appleMusic":   "appleMusic",
	"youtube":      "youtube",
	"youtubeMusic": "youtube",
	"deezer":       "deezer",
	"amazonMusic":  "amazonMusic",
	"tidal":        "tidal",
}

// Result is what a successful scan returns.
type Result struct {
	Artist       string            `json:"artist"`
	Title        string            `json:"title"`
	ThumbnailURL string            `json:"thumbnailUrl"`
	Links        map[string]string `json:"links"`
}

// Client calls the Odesli lookup API.
type Client struct {
	cfg config.OdesliConfig
}

// NewClient creates an Odesli client.
func NewClient(cfg config.OdesliConfig) *Client {
	return &Client{cfg: cfg}
}

// Lookup resolves a track URL into cross-platform links.
// Returns ErrNoSong when Odesli knows nothing about the URL; any
// other failure is an upstream error.
func (c *Client) Lookup(trackURL string) (*Result, error) {
	query := url.Values{}
	query.Set("url", trackURL)
	query.Set("userCountry", c.cfg.UserCountry)
	query.Set("platform", "spotify")

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.cfg.BaseURL + "/v1-alpha.1/links?" + query.Encode())

	if err := fasthttp.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
		return nil, fmt.Errorf("odesli request failed: %w", err)
	}

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusNotFound:
		// Odesli answers 404 for URLs it cannot resolve at all.
		return nil, ErrNoSong
	case status != fasthttp.StatusOK:
		return nil, fmt.Errorf("odesli request failed: status %d", status)
	}

	return parseResponse(resp.Body())
}

// parseResponse extracts the first song entity and the per-platform
// links from Odesli's response. The response shape is heterogeneous
// (entity maps keyed by opaque IDs), so it is walked with gjson
// rather than decoded into a fixed struct.
func parseResponse(body []byte) (*Result, error) {
	var song gjson.Result
	gjson.GetBytes(body, "entitiesByUniqueId").ForEach(func(_, entity gjson.Result) bool {
		if entity.Get("type").String() == "song" {
			song = entity
			return false
		}
		return true
	})
	if !song.Exists() {
		return nil, ErrNoSong
	}

	links := map[string]string{}
	gjson.GetBytes(body, "linksByPlatform").ForEach(func(platform, entry gjson.Result) bool {
		if u := entry.Get("url").String(); u != "" {
			links[mapPlatform(platform.String())] = u
		}
		return true
	})

	return &Result{
		Artist:       song.Get("artistName").String(),
		Title:        song.Get("title").String(),
		ThumbnailURL: song.Get("thumbnailUrl").String(),
		Links:        links,
	}, nil
}

func mapPlatform(key string) string {
	if mapped, ok := platformAliases[key]; ok {
		return mapped
	}
	return key
}
