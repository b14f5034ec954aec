package handler

import (
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
)

// The redirect endpoint is opened from shared links in browsers, so
// its failures render small self-contained HTML pages instead of
// JSON.

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>SmartLink not found</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; text-align: center; padding: 2rem; }
    .error { max-width: 400px; margin: 0 auto; }
    h1 { color: #ef4444; }
  </style>
</head>
<body>
  <div class="error">
    <h1>&#128279; SmartLink not found</h1>
    <p>The link you are looking for does not exist or has been removed.</p>
  </div>
</body>
</html>`

const platformPageFmt = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Platform not available</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; text-align: center; padding: 2rem; }
    .error { max-width: 400px; margin: 0 auto; }
    h1 { color: #f59e0b; }
    .back-link { color: #3b82f6; text-decoration: none; }
  </style>
</head>
<body>
  <div class="error">
    <h1>&#127925; Platform not available</h1>
    <p>This track is not available on %s.</p>
    <a href="/%s" class="back-link">&#8592; Back to the other platforms</a>
  </div>
</body>
</html>`

const serverErrorPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Server error</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; text-align: center; padding: 2rem; }
    .error { max-width: 400px; margin: 0 auto; }
    h1 { color: #ef4444; }
  </style>
</head>
<body>
  <div class="error">
    <h1>&#9888; Server error</h1>
    <p>Something went wrong. Please try again later.</p>
  </div>
</body>
</html>`

func renderNotFoundPage(c *gin.Context) {
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))
}

// renderPlatformPage escapes the path parameters: they come straight
// from the request URL.
func renderPlatformPage(c *gin.Context, slug, platform string) {
	page := fmt.Sprintf(platformPageFmt, html.EscapeString(platform), html.EscapeString(slug))
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(page))
}

func renderServerErrorPage(c *gin.Context) {
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(serverErrorPage))
}
