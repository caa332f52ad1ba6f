package render

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/contentscale/internal/model"
)

// Renderer produces the HTML of a URL.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (*model.Page, error)
	Name() string
}

// DefaultUserAgent is a desktop Chrome User-Agent. Many sites serve reduced
// markup to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// SiteOptions are per-host request settings.
type SiteOptions struct {
	Headers   map[string]string
	Cookie    string
	UserAgent string
}

// SiteLookup returns the settings for a host, if any.
type SiteLookup func(host string) (SiteOptions, bool)

// parseTarget checks that rawURL is an absolute http(s) URL.
func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// NormalizeURL returns a canonical form of rawURL used for cache keys: the
// fragment is dropped, scheme and host are lowercased and an empty path becomes "/".
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// mediaType returns the lowercase MIME type without parameters.
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
