package dispatch

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Cookies renders the cookies the backend has set for BaseURL in the
// "name=value; name=value" form of a Cookie header.
func (d *Dispatcher) Cookies() string {
	if d.client.Jar == nil {
		return ""
	}

	u, err := d.cookieURL()
	if err != nil {
		return ""
	}

	cookies := d.client.Jar.Cookies(u)
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// SetCookies loads cookies in the form Cookies returns into the jar, scoped
// to the BaseURL host, so later requests send them again.
func (d *Dispatcher) SetCookies(header string) error {
	if d.client.Jar == nil || strings.TrimSpace(header) == "" {
		return nil
	}

	u, err := d.cookieURL()
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}

	cookies, err := http.ParseCookie(header)
	if err != nil {
		return fmt.Errorf("failed to parse cookies: %w", err)
	}
	for _, c := range cookies {
		c.Path = "/"
	}

	d.client.Jar.SetCookies(u, cookies)
	return nil
}

func (d *Dispatcher) cookieURL() (*url.URL, error) {
	return url.Parse(d.config.baseURL() + "/")
}
