// Package notify defines the user-notification and navigation capabilities
// that request handling depends on, with implementations for terminal and
// desktop use.
package notify

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/browser"
)

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Alert(msg string)
}

// Navigator moves the user to another location of the application.
type Navigator interface {
	// Navigate pushes path as a new location.
	Navigate(path string)

	// Replace swaps the current location for path.
	Replace(path string)
}

// UINotifier writes notices to a cli.Ui error stream.
type UINotifier struct {
	UI cli.Ui
}

func (n *UINotifier) Alert(msg string) {
	n.UI.Error(msg)
}

// BrowserNavigator opens application locations in the user's browser.
type BrowserNavigator struct {
	// BaseURL is the address of the web application; paths are resolved
	// against it.
	BaseURL string

	Logger hclog.Logger

	// open defaults to browser.OpenURL.
	open func(string) error
}

// NewBrowserNavigator creates a BrowserNavigator for baseURL.
func NewBrowserNavigator(baseURL string, logger hclog.Logger) *BrowserNavigator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &BrowserNavigator{
		BaseURL: baseURL,
		Logger:  logger.Named("navigator"),
		open:    browser.OpenURL,
	}
}

func (n *BrowserNavigator) Navigate(path string) {
	n.visit(path)
}

// Replace behaves like Navigate; a browser launched from outside keeps no
// history to replace.
func (n *BrowserNavigator) Replace(path string) {
	n.visit(path)
}

func (n *BrowserNavigator) visit(path string) {
	target, err := Resolve(n.BaseURL, path)
	if err != nil {
		n.Logger.Error("invalid navigation target", "path", path, "error", err)
		return
	}

	if err := n.open(target); err != nil {
		n.Logger.Warn("could not open browser", "url", target, "error", err)
	}
}

// LogNavigator records navigation targets instead of acting on them. It is
// the default for headless use.
type LogNavigator struct {
	Logger hclog.Logger

	mu      sync.Mutex
	current string
}

// NewLogNavigator creates a LogNavigator.
func NewLogNavigator(logger hclog.Logger) *LogNavigator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LogNavigator{Logger: logger.Named("navigator")}
}

func (n *LogNavigator) Navigate(path string) {
	n.set(path)
	n.Logger.Info("navigate", "path", path)
}

func (n *LogNavigator) Replace(path string) {
	n.set(path)
	n.Logger.Info("replace location", "path", path)
}

// Current returns the last navigation target.
func (n *LogNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *LogNavigator) set(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
}

// Resolve joins an application path onto a base URL.
func Resolve(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url must be absolute, got %q", base)
	}

	return strings.TrimRight(u.String(), "/") + "/" + strings.TrimLeft(path, "/"), nil
}
