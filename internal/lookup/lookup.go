// Package lookup retrieves word definitions from Wiktionary.
//
// The bot treats lookup as an opaque service: a query string goes in, a
// structured definition or a not-found result comes out. This file
// implements the service interface and the HTTP client; extraction of
// the definition from the page markup lives in extract.go.
package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BTreeMap/DefineBot/internal/models"
)

// Constants for Wiktionary client configuration
const (
	// DefaultBaseURL is the Wiktionary page prefix queries are appended to.
	DefaultBaseURL = "https://en.wiktionary.org/wiki/"
	// DefaultUserAgent is sent with every page request.
	DefaultUserAgent = "Mozilla/5.0 (Linux x86_64)"
	// DefaultRequestTimeout bounds a single page fetch.
	DefaultRequestTimeout = 30 * time.Second
)

// Service defines the definition-lookup abstraction consumed by the bot.
type Service interface {
	// Lookup returns the definition for query, or models.ErrNotFound when
	// the source has no content for it. Any other error is transient.
	Lookup(ctx context.Context, query string) (*models.Definition, error)
}

// Opts holds configuration options for the Wiktionary client.
type Opts struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// Option defines a configuration option for the Wiktionary client.
type Option func(*Opts)

// WithBaseURL overrides the Wiktionary page prefix (used in tests).
func WithBaseURL(base string) Option {
	return func(o *Opts) {
		o.BaseURL = base
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *Opts) {
		o.UserAgent = ua
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = c
	}
}

// WiktionaryClient fetches definition pages over HTTP.
type WiktionaryClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// Compile-time check that WiktionaryClient implements Service.
var _ Service = (*WiktionaryClient)(nil)

// NewWiktionaryClient creates a Wiktionary lookup client, applying any
// provided options for customization.
func NewWiktionaryClient(opts ...Option) *WiktionaryClient {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &WiktionaryClient{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    cfg.HTTPClient,
	}
}

// Lookup fetches the page for query and extracts the first definition set.
func (c *WiktionaryClient) Lookup(ctx context.Context, query string) (*models.Definition, error) {
	pageURL := c.baseURL + url.PathEscape(strings.ReplaceAll(query, " ", "_"))
	slog.Debug("WiktionaryClient.Lookup: fetching page", "query", query, "url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request for %q: %w", query, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request for %q failed: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		slog.Info("WiktionaryClient.Lookup: page not found", "query", query, "status", resp.StatusCode)
		return nil, fmt.Errorf("no page for %q: %w", query, models.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup request for %q returned status %d", query, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup response for %q: %w", query, err)
	}

	def, err := extractDefinition(body)
	if err != nil {
		slog.Info("WiktionaryClient.Lookup: no definition on page", "query", query, "error", err)
		return nil, fmt.Errorf("no definition for %q: %w", query, models.ErrNotFound)
	}
	def.SourceURL = pageURL
	slog.Debug("WiktionaryClient.Lookup: definition found", "query", query, "word_class", def.WordClass)
	return def, nil
}
