package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// MaxPageSize is the maximum size of rendered HTML kept in memory.
// Larger pages are truncated to this size.
const MaxPageSize = 10 * 1024 * 1024 // 10 MB

// Page is a rendered page as returned by a renderer.
type Page struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Links are classified against it.
	FinalURL string `json:"finalUrl"`

	// StatusCode is the HTTP status of the final response.
	StatusCode int `json:"statusCode"`

	// ContentType is the MIME type of the response without parameters.
	ContentType string `json:"contentType"`

	// HTML is the rendered document. Excluded from JSON to keep reports small.
	HTML string `json:"-"`

	// Size is the HTML size in bytes.
	Size int `json:"size"`

	// Hash is the SHA-256 of the HTML. Used to detect unchanged pages.
	Hash string `json:"hash"`

	// Renderer names the renderer that produced the page.
	Renderer string `json:"renderer"`

	// FromCache is true when the page came from the render cache.
	FromCache bool `json:"fromCache"`

	// FetchMillis is the render duration in milliseconds.
	FetchMillis int64 `json:"fetchMillis"`

	// FetchedAt is when the page was rendered.
	FetchedAt time.Time `json:"fetchedAt"`
}

// ComputeHash sets Size and Hash from the HTML.
func (p *Page) ComputeHash() {
	p.Size = len(p.HTML)
	if p.HTML == "" {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256([]byte(p.HTML))
	p.Hash = hex.EncodeToString(hash[:])
}

// IsHTML returns true if the content type indicates HTML.
// An empty content type is treated as HTML.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(strings.TrimSpace(p.ContentType))
	return ct == "" ||
		strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml+xml")
}

// BaseURL returns the URL links should be resolved against.
func (p *Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// TruncateHTML ensures the HTML doesn't exceed MaxPageSize.
func (p *Page) TruncateHTML() {
	if len(p.HTML) > MaxPageSize {
		p.HTML = p.HTML[:MaxPageSize]
	}
}
