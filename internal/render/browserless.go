package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/contentscale/internal/model"
)

// BrowserlessRenderer renders pages in headless Chrome through a Browserless
// /content endpoint, so content inserted by scripts is included.
type BrowserlessRenderer struct {
	endpoint    string
	token       string
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
	sites       SiteLookup
}

// BrowserlessOption configures a BrowserlessRenderer.
type BrowserlessOption func(*BrowserlessRenderer)

// WithBrowserlessToken sets the API token sent as the token query parameter.
func WithBrowserlessToken(token string) BrowserlessOption {
	return func(r *BrowserlessRenderer) {
		r.token = token
	}
}

// WithBrowserlessClient replaces the HTTP client.
func WithBrowserlessClient(client *http.Client) BrowserlessOption {
	return func(r *BrowserlessRenderer) {
		if client != nil {
			r.client = client
		}
	}
}

// WithBrowserlessTimeout bounds each render, navigation included.
func WithBrowserlessTimeout(d time.Duration) BrowserlessOption {
	return func(r *BrowserlessRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithBrowserlessSites sets the per-host header lookup.
func WithBrowserlessSites(lookup SiteLookup) BrowserlessOption {
	return func(r *BrowserlessRenderer) {
		r.sites = lookup
	}
}

// NewBrowserlessRenderer creates a renderer for the Browserless service at endpoint.
func NewBrowserlessRenderer(endpoint string, opts ...BrowserlessOption) (*BrowserlessRenderer, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEndpoint, err)
	}

	r := &BrowserlessRenderer{
		endpoint:    endpoint,
		client:      &http.Client{},
		timeout:     DefaultTimeout,
		maxBodySize: model.MaxPageSize,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Name returns "browserless".
func (r *BrowserlessRenderer) Name() string {
	return "browserless"
}

type contentRequest struct {
	URL                 string            `json:"url"`
	GotoOptions         gotoOptions       `json:"gotoOptions"`
	RejectResourceTypes []string          `json:"rejectResourceTypes"`
	SetExtraHTTPHeaders map[string]string `json:"setExtraHTTPHeaders,omitempty"`
}

type gotoOptions struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int64  `json:"timeout"`
}

// Render asks Browserless for the DOM of rawURL once the network is idle.
// Fonts and media are not loaded.
func (r *BrowserlessRenderer) Render(ctx context.Context, rawURL string) (*model.Page, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(contentRequest{
		URL: target.String(),
		GotoOptions: gotoOptions{
			WaitUntil: "networkidle2",
			Timeout:   r.timeout.Milliseconds(),
		},
		RejectResourceTypes: []string{"font", "media"},
		SetExtraHTTPHeaders: r.extraHeaders(target.Hostname()),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout+5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.contentURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browserless render %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d from browserless: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read browserless response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyBody
	}

	page := &model.Page{
		URL:         rawURL,
		FinalURL:    target.String(),
		StatusCode:  resp.StatusCode,
		ContentType: "text/html",
		HTML:        strings.ToValidUTF8(string(raw), "�"),
		Renderer:    r.Name(),
		FetchedAt:   time.Now().UTC(),
		FetchMillis: time.Since(start).Milliseconds(),
	}
	page.TruncateHTML()
	page.ComputeHash()
	return page, nil
}

func (r *BrowserlessRenderer) contentURL() string {
	u := r.endpoint + "/content"
	if r.token != "" {
		u += "?token=" + url.QueryEscape(r.token)
	}
	return u
}

func (r *BrowserlessRenderer) extraHeaders(host string) map[string]string {
	headers := map[string]string{"User-Agent": r.userAgent}
	if r.sites == nil {
		return headers
	}
	site, ok := r.sites(host)
	if !ok {
		return headers
	}
	if site.UserAgent != "" {
		headers["User-Agent"] = site.UserAgent
	}
	for k, v := range site.Headers {
		headers[k] = v
	}
	if site.Cookie != "" {
		headers["Cookie"] = site.Cookie
	}
	return headers
}
