// Package support holds small helpers that sit beside the dispatcher: a
// plain JSON fetch, the system logout call and a cookie-string reader.
package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/boardkit/boardclient/pkg/notify"
)

const (
	// LogoutPath is the system logout endpoint.
	LogoutPath = "/sys/logout"

	// LogoutRedirect is the view shown after a successful logout.
	LogoutRedirect = "/sys/"
)

// ErrCookieNotFound is returned by GetCookie when the name is absent.
var ErrCookieNotFound = errors.New("cookie not found")

// Client performs requests outside the dispatcher's session handling.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	Navigator notify.Navigator
	Logger    hclog.Logger
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) logger() hclog.Logger {
	if c.Logger != nil {
		return c.Logger.Named("support")
	}
	return hclog.NewNullLogger()
}

// FetchJSON sends payload as JSON to rawURL and returns the decoded response
// body. GET requests carry no body. The status code is not inspected.
func (c *Client) FetchJSON(ctx context.Context, method, rawURL string, payload any) (any, error) {
	var body io.Reader
	if method != http.MethodGet && payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger().Debug("fetched", "method", method, "url", rawURL, "status", resp.StatusCode)

	var out any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// Logout ends the server-side session. On 200 the navigator replaces the
// current view with LogoutRedirect. The status code is returned either way.
func (c *Client) Logout(ctx context.Context) (int, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + LogoutPath

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK {
		if c.Navigator != nil {
			c.Navigator.Replace(LogoutRedirect)
		}
	} else {
		c.logger().Warn("logout rejected", "status", resp.StatusCode)
	}

	return resp.StatusCode, nil
}

// GetCookie returns the URL-decoded value of name from a cookie string of
// the form "a=1; b=2". Values that fail to decode are returned as-is.
func GetCookie(cookies, name string) (string, error) {
	if cookies == "" {
		return "", ErrCookieNotFound
	}

	for _, pair := range strings.Split(cookies, "; ") {
		key, value, _ := strings.Cut(pair, "=")
		if key != name {
			continue
		}
		if decoded, err := url.PathUnescape(value); err == nil {
			return decoded, nil
		}
		return value, nil
	}

	return "", ErrCookieNotFound
}
