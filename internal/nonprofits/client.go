package nonprofits

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"achpay/internal/cache"
	"achpay/internal/log"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultCacheSize = 256
	maxBodyBytes     = 2 << 20
)

// Config configures the nonprofit search client.
type Config struct {
	BaseURL    string
	APIKey     string
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client proxies search terms to the partner nonprofit search API.
// Any upstream problem yields an empty result.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.LRUCache[[]json.RawMessage]
	group   singleflight.Group
	logger  *log.Logger
}

type searchResponse struct {
	Nonprofits []json.RawMessage `json:"nonprofits"`
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
		logger:  logger.WithComponent(log.ComponentNonprofit),
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.NewLRUCache[[]json.RawMessage](defaultCacheSize, cfg.CacheTTL)
	}
	return c
}

// Cache exposes the result cache for registration with a cache.Manager. Nil when caching is off.
func (c *Client) Cache() cache.Cleaner {
	if c.cache == nil {
		return nil
	}
	return c.cache
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Search returns the nonprofits matching term, never nil.
func (c *Client) Search(ctx context.Context, term string) []json.RawMessage {
	term = strings.TrimSpace(term)
	if term == "" {
		return []json.RawMessage{}
	}
	if !c.Enabled() {
		c.logger.WarnContext(ctx, "Nonprofit search skipped, no API key configured")
		return []json.RawMessage{}
	}

	key := strings.ToLower(term)
	if c.cache != nil {
		if hit, ok := c.cache.Get(key); ok {
			return hit
		}
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		results, err := c.fetch(ctx, term)
		if err != nil {
			c.logger.WarnContext(ctx, "Nonprofit search failed",
				log.FieldSearchTerm, term,
				log.FieldError, err)
			return []json.RawMessage{}, nil
		}
		if c.cache != nil {
			c.cache.Set(key, results)
		}
		return results, nil
	})
	return v.([]json.RawMessage)
}

func (c *Client) fetch(ctx context.Context, term string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v0.2/search/%s?apiKey=%s",
		c.baseURL, url.PathEscape(term), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Nonprofits == nil {
		return []json.RawMessage{}, nil
	}
	return body.Nonprofits, nil
}
