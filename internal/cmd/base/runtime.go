package base

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/boardkit/boardclient/internal/config"
	"github.com/boardkit/boardclient/pkg/dispatch"
	"github.com/boardkit/boardclient/pkg/notify"
	"github.com/boardkit/boardclient/pkg/session"
	"github.com/boardkit/boardclient/pkg/store"
	"github.com/boardkit/boardclient/pkg/support"
)

// CookieKey is the storage key the backend's cookie string is kept under
// between invocations.
const CookieKey = "cookie"

// Runtime is the wired client stack a command works against.
type Runtime struct {
	Config     *config.Config
	Storage    store.Storage
	Session    *session.Session
	Navigation *session.Navigation
	Cookies    *store.Persisted[string]
	Navigator  notify.Navigator
	Dispatcher *dispatch.Dispatcher
	Support    *support.Client
	Registry   *prometheus.Registry

	closeStorage func() error
}

// Close releases the storage backend.
func (r *Runtime) Close() error {
	if r.closeStorage == nil {
		return nil
	}
	return r.closeStorage()
}

// NewRuntime loads configuration from configPath and wires storage, session,
// navigation state and the dispatcher.
func (c *Command) NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return c.NewRuntimeFromConfig(ctx, cfg)
}

// NewRuntimeFromConfig wires the client stack from cfg.
func (c *Command) NewRuntimeFromConfig(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	log := c.Log
	if log == nil {
		log = hclog.NewNullLogger()
	}
	log.SetLevel(cfg.Level())

	storage, closeStorage, err := cfg.Storage.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("error opening storage: %w", err)
	}

	rt := &Runtime{
		Config:       cfg,
		Storage:      storage,
		Registry:     prometheus.NewRegistry(),
		closeStorage: closeStorage,
	}

	rt.Session, err = session.New(ctx, storage)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error loading session: %w", err)
	}

	rt.Navigation, err = session.NewNavigation(ctx, storage)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error loading navigation state: %w", err)
	}

	rt.Cookies, err = store.NewPersisted(ctx, storage, CookieKey, "")
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error loading cookies: %w", err)
	}

	if cfg.OpenBrowser {
		rt.Navigator = notify.NewBrowserNavigator(cfg.ServerURL, log)
	} else {
		rt.Navigator = notify.NewLogNavigator(log)
	}

	rt.Dispatcher, err = dispatch.New(
		cfg.Dispatch(),
		rt.Session,
		&notify.UINotifier{UI: c.UI},
		rt.Navigator,
		dispatch.WithLogger(log),
		dispatch.WithMetrics(dispatch.NewMetrics(rt.Registry)),
	)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error creating dispatcher: %w", err)
	}
	if err := rt.Dispatcher.SetCookies(rt.Cookies.Get()); err != nil {
		log.Warn("ignoring stored cookies", "error", err)
	}

	rt.Support = &support.Client{
		HTTP:      rt.Dispatcher.HTTPClient(),
		BaseURL:   cfg.ServerURL,
		Navigator: rt.Navigator,
		Logger:    log,
	}

	return rt, nil
}
