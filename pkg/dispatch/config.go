package dispatch

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Config contains configuration for the request dispatcher.
//
// Example configuration (HCL):
//
//	server_url = "http://127.0.0.1:8000"
//	timeout    = "30s"
//	tls_verify = true
type Config struct {
	// BaseURL is the backend host every request path is appended to.
	// Example: "http://127.0.0.1:8000"
	BaseURL string `json:"baseUrl"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development with self-signed certs.
	TLSVerify *bool `json:"tlsVerify,omitempty"`

	// Timeout for a single request, including reading the response body.
	// Default: 30 seconds
	Timeout time.Duration `json:"timeout,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify: &tlsVerify,
		Timeout:   30 * time.Second,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("base_url must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	return nil
}

// baseURL returns BaseURL without a trailing slash so paths can be appended
// as-is.
func (c *Config) baseURL() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// NewHTTPClient creates a configured HTTP client for the dispatcher. The
// client keeps cookies set by the backend in a public-suffix aware jar.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	// cookiejar.New never fails when given Options.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
		Jar:       jar,
	}
}
