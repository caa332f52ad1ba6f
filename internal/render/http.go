package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/contentscale/internal/model"
)

// DefaultTimeout bounds one render.
const DefaultTimeout = 30 * time.Second

// HTTPRenderer fetches pages with a plain GET request. It does not run scripts.
type HTTPRenderer struct {
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
	sites       SiteLookup
}

// HTTPOption configures an HTTPRenderer.
type HTTPOption func(*HTTPRenderer)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(r *HTTPRenderer) {
		if client != nil {
			r.client = client
		}
	}
}

// WithUserAgent sets the default User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(r *HTTPRenderer) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithTimeout bounds each render.
func WithTimeout(d time.Duration) HTTPOption {
	return func(r *HTTPRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMaxBodySize limits how many bytes of a response are read.
func WithMaxBodySize(n int64) HTTPOption {
	return func(r *HTTPRenderer) {
		if n > 0 {
			r.maxBodySize = n
		}
	}
}

// WithSites sets the per-host header lookup.
func WithSites(lookup SiteLookup) HTTPOption {
	return func(r *HTTPRenderer) {
		r.sites = lookup
	}
}

// NewHTTPRenderer creates an HTTPRenderer with a 30 second timeout and a 10 MiB body limit.
func NewHTTPRenderer(opts ...HTTPOption) *HTTPRenderer {
	r := &HTTPRenderer{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		maxBodySize: model.MaxPageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns "http".
func (r *HTTPRenderer) Name() string {
	return "http"
}

// Render fetches rawURL and returns its HTML decoded to UTF-8.
func (r *HTTPRenderer) Render(ctx context.Context, rawURL string) (*model.Page, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	r.setHeaders(req, target.Hostname())

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	page := &model.Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: mediaType(contentType),
		Renderer:    r.Name(),
	}
	if !page.IsHTML() {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, page.ContentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyBody
	}

	page.HTML = decodeBody(raw, contentType)
	page.FetchedAt = time.Now().UTC()
	page.FetchMillis = time.Since(start).Milliseconds()
	page.TruncateHTML()
	page.ComputeHash()
	return page, nil
}

func (r *HTTPRenderer) setHeaders(req *http.Request, host string) {
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if r.sites == nil {
		return
	}
	site, ok := r.sites(host)
	if !ok {
		return
	}
	if site.UserAgent != "" {
		req.Header.Set("User-Agent", site.UserAgent)
	}
	for k, v := range site.Headers {
		req.Header.Set(k, v)
	}
	if site.Cookie != "" {
		req.Header.Set("Cookie", site.Cookie)
	}
}

// decodeBody converts raw to UTF-8 using the Content-Type charset, a <meta>
// declaration or content sniffing. Undecodable bodies are returned as-is.
func decodeBody(raw []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw)
	}
	return strings.ToValidUTF8(string(decoded), "�")
}
