package odesli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/smartlink/internal/config"
)

const sampleResponse = `{
	"entityUniqueId": "SPOTIFY_SONG::abc",
	"userCountry": "US",
	"entitiesByUniqueId": {
		"ITUNES_SONG::123": {
			"id": "123",
			"type": "song",
			"title": "One More Time",
			"artistName": "Daft Punk",
			"thumbnailUrl": "https://is1-ssl.mzstatic.com/cover.jpg",
			"apiProvider": "itunes"
		},
		"SPOTIFY_SONG::abc": {
			"id": "abc",
			"type": "song",
			"title": "One More Time",
			"artistName": "Daft Punk",
			"thumbnailUrl": "https://i.scdn.co/image/cover.jpg",
			"apiProvider": "spotify"
		}
	},
	"linksByPlatform": {
		"spotify": {"url": "https://open.spotify.com/track/abc"},
		"appleMusic": {"url": "https://music.apple.com/us/album/123"},
		"youtube": {"url": "https://www.youtube.com/watch?v=abc"},
		"youtubeMusic": {"url": "https://music.youtube.com/watch?v=abc"},
		"deezer": {"url": "https://www.deezer.com/track/1"},
		"tidal": {"url": "https://listen.tidal.com/track/1"},
		"soundcloud": {"url": "https://soundcloud.com/daftpunk/one-more-time"},
		"napster": {"url": ""}
	}
}`

func testClient(baseURL string) *Client {
	return NewClient(config.OdesliConfig{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		UserCountry: "US",
	})
}

func TestLookup(t *testing.T) {
	var gotQuery map[string]string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"url":         r.URL.Query().Get("url"),
			"userCountry": r.URL.Query().Get("userCountry"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer upstream.Close()

	result, err := testClient(upstream.URL).Lookup("https://open.spotify.com/track/abc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if gotQuery["url"] != "https://open.spotify.com/track/abc" {
		t.Errorf("forwarded url = %q", gotQuery["url"])
	}
	if gotQuery["userCountry"] != "US" {
		t.Errorf("userCountry = %q", gotQuery["userCountry"])
	}

	if result.Artist != "Daft Punk" || result.Title != "One More Time" {
		t.Errorf("metadata = %q / %q", result.Artist, result.Title)
	}
	if result.ThumbnailURL == "" {
		t.Error("thumbnailUrl empty")
	}

	// youtubeMusic folds into youtube; unknown platforms pass through;
	// entries with a blank url are dropped.
	if result.Links["youtube"] == "" {
		t.Errorf("youtube link missing: %+v", result.Links)
	}
	if result.Links["soundcloud"] != "https://soundcloud.com/daftpunk/one-more-time" {
		t.Errorf("soundcloud link = %q", result.Links["soundcloud"])
	}
	if _, ok := result.Links["napster"]; ok {
		t.Errorf("blank-url platform kept: %+v", result.Links)
	}
	for _, platform := range []string{"spotify", "appleMusic", "deezer", "tidal"} {
		if result.Links[platform] == "" {
			t.Errorf("missing %s link: %+v", platform, result.Links)
		}
	}
}

func TestLookupNoSongEntity(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"entitiesByUniqueId": {
				"SPOTIFY_ALBUM::xyz": {"type": "album", "title": "Discovery"}
			},
			"linksByPlatform": {}
		}`))
	}))
	defer upstream.Close()

	_, err := testClient(upstream.URL).Lookup("https://open.spotify.com/album/xyz")
	if !errors.Is(err, ErrNoSong) {
		t.Fatalf("err = %v, want ErrNoSong", err)
	}
}

func TestLookupUpstream404(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	_, err := testClient(upstream.URL).Lookup("https://example.com/nothing")
	if !errors.Is(err, ErrNoSong) {
		t.Fatalf("err = %v, want ErrNoSong", err)
	}
}

func TestLookupUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	_, err := testClient(upstream.URL).Lookup("https://open.spotify.com/track/abc")
	if err == nil || errors.Is(err, ErrNoSong) {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestLookupUpstreamUnreachable(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	upstream.Close()

	_, err := testClient(upstream.URL).Lookup("https://open.spotify.com/track/abc")
	if err == nil {
		t.Fatal("err = nil, want connection error")
	}
}

func TestMapPlatform(t *testing.T) {
	tests := map[string]string{
		"youtubeMusic": "youtube",
		"youtube":      "youtube",
		"spotify":      "spotify",
		"appleMusic":   "appleMusic",
		"amazonMusic":  "amazonMusic",
		"soundcloud":   "soundcloud",
		"pandora":      "pandora",
	}
	for in, want := range tests {
		if got := mapPlatform(in); got != want {
			t.Errorf("mapPlatform(%q) = %q, want %q", in, got, want)
		}
	}
}
