// Package remote defines the social-platform abstraction the bot polls
// and replies through, and implements it for Reddit.
//
// This file implements the Reddit client as a script app using the
// OAuth2 password grant.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BTreeMap/DefineBot/internal/models"
)

// Constants for Reddit client configuration
const (
	// DefaultAuthBaseURL hosts the OAuth2 token endpoint.
	DefaultAuthBaseURL = "https://www.reddit.com"
	// DefaultAPIBaseURL hosts the authenticated API.
	DefaultAPIBaseURL = "https://oauth.reddit.com"
	// DefaultUserAgent identifies the bot per Reddit's API rules.
	DefaultUserAgent = "definebot/1.0"
	// DefaultRequestTimeout bounds a single API call.
	DefaultRequestTimeout = 30 * time.Second
)

// Opts holds configuration options for the Reddit client.
type Opts struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	AuthBaseURL  string
	APIBaseURL   string
	HTTPClient   *http.Client
}

// Option defines a configuration option for the Reddit client.
type Option func(*Opts)

// WithCredentials sets the script-app credentials.
func WithCredentials(clientID, clientSecret, username, password string) Option {
	return func(o *Opts) {
		o.ClientID = clientID
		o.ClientSecret = clientSecret
		o.Username = username
		o.Password = password
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *Opts) {
		o.UserAgent = ua
	}
}

// WithBaseURLs overrides the auth and API endpoints (used in tests).
func WithBaseURLs(authBase, apiBase string) Option {
	return func(o *Opts) {
		o.AuthBaseURL = authBase
		o.APIBaseURL = apiBase
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = c
	}
}

// RedditClient talks to the Reddit API as an authenticated script app.
type RedditClient struct {
	cfg    Opts
	client *http.Client

	accessToken string
}

// Compile-time check that RedditClient implements Service.
var _ Service = (*RedditClient)(nil)

// NewRedditClient creates a Reddit client, applying any provided options
// for customization. Credentials are required.
func NewRedditClient(opts ...Option) (*RedditClient, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("reddit credentials not fully configured")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = DefaultAuthBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	slog.Debug("RedditClient.NewRedditClient: client configured", "username", cfg.Username, "user_agent", cfg.UserAgent)
	return &RedditClient{cfg: cfg, client: client}, nil
}

// Authenticate obtains an access token via the password grant and
// resolves the bot's own account name.
func (c *RedditClient) Authenticate(ctx context.Context) (models.Identity, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.cfg.Username},
		"password":   {c.cfg.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthBaseURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Identity{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return models.Identity{}, fmt.Errorf("token request rejected: %w", err)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return models.Identity{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return models.Identity{}, fmt.Errorf("token response contained no access token")
	}
	c.accessToken = token.AccessToken

	var me struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, "/api/v1/me", nil, &me); err != nil {
		return models.Identity{}, fmt.Errorf("failed to resolve own identity: %w", err)
	}
	slog.Info("RedditClient.Authenticate: authenticated", "username", me.Name)
	return models.Identity{Username: me.Name}, nil
}

// listing is the wrapper Reddit puts around comment sequences.
type listing struct {
	Data struct {
		Children []struct {
			Data commentData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type commentData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Body   string `json:"body"`
}

func (d commentData) toModel() models.Comment {
	return models.Comment{
		ID:       d.ID,
		Fullname: d.Name,
		Author:   d.Author,
		Body:     d.Body,
	}
}

// ListComments fetches up to limit recent comments from the sources
// selector, newest first.
func (c *RedditClient) ListComments(ctx context.Context, sources string, limit int) ([]models.Comment, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var l listing
	if err := c.getJSON(ctx, "/r/"+sources+"/comments", query, &l); err != nil {
		return nil, fmt.Errorf("failed to list comments from %s: %w", sources, err)
	}
	comments := make([]models.Comment, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		comments = append(comments, child.Data.toModel())
	}
	slog.Debug("RedditClient.ListComments: comments retrieved", "sources", sources, "count", len(comments))
	return comments, nil
}

// SubmitReply posts text as a reply to parentFullname.
func (c *RedditClient) SubmitReply(ctx context.Context, parentFullname string, text string) (*models.Comment, error) {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {parentFullname},
		"text":     {text},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+"/api/comment", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build reply request: %w", err)
	}
	c.setAuthHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reply request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("reply to %s rejected: %w", parentFullname, err)
	}

	var posted struct {
		JSON struct {
			Errors [][]string `json:"errors"`
			Data   struct {
				Things []struct {
					Data commentData `json:"data"`
				} `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&posted); err != nil {
		return nil, fmt.Errorf("failed to decode reply response: %w", err)
	}
	for _, apiErr := range posted.JSON.Errors {
		// Reddit reports comment-rate throttling in the response body with
		// a 200 status, not a 429.
		if len(apiErr) > 0 && strings.EqualFold(apiErr[0], "RATELIMIT") {
			return nil, fmt.Errorf("reply to %s throttled: %w", parentFullname, models.ErrRateLimited)
		}
	}
	if len(posted.JSON.Errors) > 0 {
		return nil, fmt.Errorf("reply to %s failed: %v", parentFullname, posted.JSON.Errors)
	}
	if len(posted.JSON.Data.Things) == 0 {
		return nil, fmt.Errorf("reply to %s returned no created comment", parentFullname)
	}
	created := posted.JSON.Data.Things[0].Data.toModel()
	slog.Info("RedditClient.SubmitReply: reply posted", "parent", parentFullname, "id", created.ID)
	return &created, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *RedditClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.cfg.APIBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	c.setAuthHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request for %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

func (c *RedditClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
}

// checkStatus maps HTTP failures to the error taxonomy. 429 becomes the
// distinguished rate-limit signal.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("status %d: %w", resp.StatusCode, models.ErrRateLimited)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
