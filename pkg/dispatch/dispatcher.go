package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/boardkit/boardclient/pkg/notify"
)

// SessionExpiredMessage is shown when the backend rejects a session.
const SessionExpiredMessage = "Login is required."

// RequestIDHeader carries a per-request identifier for log correlation.
const RequestIDHeader = "X-Request-ID"

// SessionStore is the session state the dispatcher reads the access token
// from and clears when the backend answers 401.
type SessionStore interface {
	oauth2.TokenSource
	Reset(ctx context.Context) error
}

// Dispatcher sends requests to the backend and routes each outcome to the
// request's callbacks, the notifier or the navigator.
type Dispatcher struct {
	config    *Config
	client    *http.Client
	session   SessionStore
	notifier  notify.Notifier
	navigator notify.Navigator
	metrics   *Metrics
	logger    hclog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The dispatcher uses a "dispatch" sub-logger.
func WithLogger(logger hclog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger.Named("dispatch")
		}
	}
}

// WithMetrics records request counts and durations.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithHTTPClient replaces the client built from Config.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// New creates a Dispatcher.
func New(
	cfg *Config,
	session SessionStore,
	notifier notify.Notifier,
	navigator notify.Navigator,
	opts ...Option,
) (*Dispatcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if navigator == nil {
		return nil, fmt.Errorf("navigator is required")
	}

	d := &Dispatcher{
		config:    cfg,
		session:   session,
		notifier:  notifier,
		navigator: navigator,
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = cfg.NewHTTPClient()
	}

	return d, nil
}

// HTTPClient returns the client requests are sent with. Its cookie jar holds
// the cookies the backend has set.
func (d *Dispatcher) HTTPClient() *http.Client {
	return d.client
}

// Do sends the request and returns once the outcome has been handled:
// callbacks run, the notifier alerted, or the session reset. Failures are
// never returned to the caller.
func (d *Dispatcher) Do(ctx context.Context, r Request) {
	start := time.Now()
	outcome := d.dispatch(ctx, r)
	d.metrics.observe(r.Operation, outcome, time.Since(start))
}

// Go runs Do in a new goroutine. The returned channel is closed once the
// outcome has been handled.
func (d *Dispatcher) Go(ctx context.Context, r Request) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Do(ctx, r)
	}()
	return done
}

func (d *Dispatcher) dispatch(ctx context.Context, r Request) Outcome {
	requestID := uuid.NewString()
	logger := d.logger.With("operation", r.Operation.String(), "path", r.Path, "request_id", requestID)

	req, err := d.newRequest(ctx, r, requestID)
	if err != nil {
		logger.Error("error building request", "error", err)
		d.notifier.Alert(err.Error())
		return OutcomeError
	}

	logger.Debug("sending request", "method", req.Method, "url", req.URL.String())

	resp, err := d.client.Do(req)
	if err != nil {
		logger.Error("error sending request", "error", err)
		d.notifier.Alert(err.Error())
		return OutcomeError
	}
	defer resp.Body.Close()

	logger.Debug("received response", "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized && r.Operation != OpLogin {
		d.expire(ctx, logger)
		return OutcomeExpired
	}

	if resp.StatusCode == http.StatusNoContent {
		if r.OnSuccess != nil {
			r.OnSuccess(nil)
		}
		return OutcomeSuccess
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("error reading response body", "error", err)
		d.notifier.Alert(err.Error())
		return OutcomeError
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	// Some backends answer 200 with an empty body instead of 204.
	if ok && len(bytes.TrimSpace(data)) == 0 {
		if r.OnSuccess != nil {
			r.OnSuccess(nil)
		}
		return OutcomeSuccess
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}
	if err := json.Unmarshal(data, &result.Body); err != nil {
		logger.Error("error decoding response body", "status", resp.StatusCode, "error", err)
		d.notifier.Alert(fmt.Sprintf("failed to decode response: %v", err))
		return OutcomeError
	}

	if ok {
		if r.OnSuccess != nil {
			r.OnSuccess(result)
		}
		return OutcomeSuccess
	}

	logger.Warn("request failed", "status", resp.StatusCode)
	if r.OnFailure != nil {
		r.OnFailure(result)
	} else {
		d.notifier.Alert(result.String())
	}
	return OutcomeFailure
}

// expire clears the session, tells the user and sends them to the root view.
func (d *Dispatcher) expire(ctx context.Context, logger hclog.Logger) {
	logger.Warn("session rejected by server, resetting")

	if err := d.session.Reset(context.WithoutCancel(ctx)); err != nil {
		logger.Error("error resetting session", "error", err)
	}
	d.notifier.Alert(SessionExpiredMessage)
	d.navigator.Navigate("/")
}

func (d *Dispatcher) newRequest(ctx context.Context, r Request, requestID string) (*http.Request, error) {
	if err := r.Operation.Validate(); err != nil {
		return nil, err
	}

	endpoint := d.config.baseURL() + r.Path
	contentType := ContentTypeJSON
	var body io.Reader

	switch {
	case r.Operation == OpLogin:
		values, err := encodeValues(r.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode login form: %w", err)
		}
		contentType = ContentTypeForm
		body = strings.NewReader(values.Encode())

	case r.Operation == OpGet:
		values, err := encodeValues(r.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}
		if len(values) > 0 {
			sep := "?"
			if strings.Contains(endpoint, "?") {
				sep = "&"
			}
			endpoint += sep + values.Encode()
		}

	default:
		data, err := encodeJSON(r.Params)
		if err != nil {
			return nil, err
		}
		if data != nil {
			body = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.Operation.Method(), endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", ContentTypeJSON)
	req.Header.Set(RequestIDHeader, requestID)

	token, err := d.session.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}
	if token != nil && token.AccessToken != "" {
		token.SetAuthHeader(req)
	}

	return req, nil
}
