package ecommerce

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

const (
	// ShopifyDefaultAPIVersion is the Admin API version requests target
	ShopifyDefaultAPIVersion = "2025-01"
	// ShopifyAccessTokenHeader carries the Admin API access token
	ShopifyAccessTokenHeader = "X-Shopify-Access-Token"
)

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingStore       = errors.New("shopify: store is required")
	ErrShopifyConfigMissingAccessToken = errors.New("shopify: access token is required")
	ErrShopifyConfigInvalidBaseURL     = errors.New("shopify: invalid base URL")
	ErrShopifyConfigInvalidTimeout     = errors.New("shopify: timeouts must be positive")
	ErrShopifyConfigInvalidRetryPolicy = errors.New("shopify: invalid retry policy")
)

// RetryPolicy holds per-class delays and attempt caps. A cap is the total
// number of attempts allowed when the last one failed with that class.
type RetryPolicy struct {
	RateLimitDelay         time.Duration
	RateLimitMaxAttempts   int
	ServerErrorDelay       time.Duration
	ServerErrorMaxAttempts int
	ConnectionDelay        time.Duration
	ConnectionMaxAttempts  int
	TimeoutMaxAttempts     int
}

// DefaultRetryPolicy returns the policy used against the Admin API
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		RateLimitDelay:         2 * time.Second,
		RateLimitMaxAttempts:   5,
		ServerErrorDelay:       3 * time.Second,
		ServerErrorMaxAttempts: 7,
		ConnectionDelay:        3 * time.Second,
		ConnectionMaxAttempts:  7,
		TimeoutMaxAttempts:     2,
	}
}

// Validate checks the caps and delays
func (p RetryPolicy) Validate() error {
	if p.RateLimitMaxAttempts < 1 || p.ServerErrorMaxAttempts < 1 ||
		p.ConnectionMaxAttempts < 1 || p.TimeoutMaxAttempts < 1 {
		return fmt.Errorf("%w: attempt caps must be at least 1", ErrShopifyConfigInvalidRetryPolicy)
	}
	if p.RateLimitDelay < 0 || p.ServerErrorDelay < 0 || p.ConnectionDelay < 0 {
		return fmt.Errorf("%w: delays cannot be negative", ErrShopifyConfigInvalidRetryPolicy)
	}
	return nil
}

// limits returns the attempt cap and retry delay for a retryable class
func (p RetryPolicy) limits(class integration.FailureClass) (int, time.Duration) {
	switch class {
	case integration.FailureRateLimited:
		return p.RateLimitMaxAttempts, p.RateLimitDelay
	case integration.FailureServerError:
		return p.ServerErrorMaxAttempts, p.ServerErrorDelay
	case integration.FailureTransient:
		return p.ConnectionMaxAttempts, p.ConnectionDelay
	case integration.FailureTimeout:
		return p.TimeoutMaxAttempts, 0
	}
	return 0, 0
}

// ShopifyConfig is the store context for one Shopify shop. Build it with
// NewShopifyConfig; clients copy it at construction and never modify it.
type ShopifyConfig struct {
	// Store is the shop name ("my-shop") or its myshopify.com domain
	Store string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the Admin API version, e.g. 2025-01
	APIVersion string
	// LocationID is the inventory location stamped on quantity adjustments
	LocationID string
	// BaseURL overrides https://{store}.myshopify.com (tests, proxies)
	BaseURL string
	// ConnectTimeout bounds dialing and the TLS handshake
	ConnectTimeout time.Duration
	// ReadTimeout bounds waiting for response headers and body
	ReadTimeout time.Duration
	// DefaultThrottleWait is applied when a response has no cost extension
	DefaultThrottleWait time.Duration
	// Retry is the executor retry policy
	Retry RetryPolicy
}

// ShopifyConfigOption is a functional option for ShopifyConfig
type ShopifyConfigOption func(*ShopifyConfig)

// WithAPIVersion sets the Admin API version
func WithAPIVersion(version string) ShopifyConfigOption {
	return func(c *ShopifyConfig) {
		c.APIVersion = version
	}
}

// WithLocationID sets the inventory location id
func WithLocationID(locationID string) ShopifyConfigOption {
	return func(c *ShopifyConfig) {
		c.LocationID = locationID
	}
}

// WithBaseURL overrides the shop URL
func WithBaseURL(baseURL string) ShopifyConfigOption {
	return func(c *ShopifyConfig) {
		c.BaseURL = baseURL
	}
}

// WithTimeouts sets the connect and read timeouts
func WithTimeouts(connect, read time.Duration) ShopifyConfigOption {
	return func(c *ShopifyConfig) {
		c.ConnectTimeout = connect
		c.ReadTimeout = read
	}
}

// WithDefaultThrottleWait sets the wait used when the cost extension is missing
func WithDefaultThrottleWait(d time.Duration) ShopifyConfigOption {
	return func(c *ShopifyConfig) {
		c.DefaultThrottleWait = d
	}
}

// WithRetryPolicy sets the retry policy
func WithRetryPolicy(p RetryPolicy) ShopifyConfigOption {
	return func(c *ShopifyConfig) {
		c.Retry = p
	}
}

// NewShopifyConfig creates and validates a store context
func NewShopifyConfig(store, accessToken string, opts ...ShopifyConfigOption) (*ShopifyConfig, error) {
	cfg := &ShopifyConfig{
		Store:          strings.TrimSpace(store),
		AccessToken:    strings.TrimSpace(accessToken),
		APIVersion:     ShopifyDefaultAPIVersion,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    15 * time.Second,
		Retry:          DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the Shopify configuration
func (c *ShopifyConfig) Validate() error {
	if c.Store == "" && c.BaseURL == "" {
		return ErrShopifyConfigMissingStore
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingAccessToken
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s", ErrShopifyConfigInvalidBaseURL, c.BaseURL)
		}
	}
	if c.ConnectTimeout <= 0 || c.ReadTimeout <= 0 {
		return ErrShopifyConfigInvalidTimeout
	}
	if c.DefaultThrottleWait < 0 {
		return ErrShopifyConfigInvalidTimeout
	}
	return c.Retry.Validate()
}

// ShopURL returns the base URL of the shop
func (c *ShopifyConfig) ShopURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	host := c.Store
	if !strings.Contains(host, ".") {
		host += ".myshopify.com"
	}
	return "https://" + host
}

// Endpoint returns the GraphQL Admin API endpoint
func (c *ShopifyConfig) Endpoint() string {
	version := c.APIVersion
	if version == "" {
		version = ShopifyDefaultAPIVersion
	}
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.ShopURL(), version)
}
