package alfalfa

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/five82/alfalfa/internal/fanout"
	"github.com/five82/alfalfa/internal/poller"
)

const (
	DefaultHost           = "http://localhost"
	DefaultAPIVersion     = "v2"
	LegacyAPIVersion      = "v1"
	DefaultRequestTimeout = 30 * time.Second
	DefaultWorkers        = fanout.DefaultLimit
	DefaultWaitTimeout    = poller.DefaultTimeout
	DefaultPollInterval   = poller.DefaultInterval
)

type settings struct {
	apiVersion     string
	httpClient     *http.Client
	requestTimeout time.Duration
	userAgent      string
	logger         *slog.Logger
	workers        int
	waitTimeout    time.Duration
	pollInterval   time.Duration
	retryTries     uint
	retryInterval  time.Duration
}

func defaultSettings() settings {
	return settings{
		apiVersion:     DefaultAPIVersion,
		requestTimeout: DefaultRequestTimeout,
		logger:         slog.New(slog.DiscardHandler),
		workers:        DefaultWorkers,
		waitTimeout:    DefaultWaitTimeout,
		pollInterval:   DefaultPollInterval,
	}
}

// Option configures a Client.
type Option func(*settings)

// WithAPIVersion selects the server dialect. "v1" targets the GraphQL and
// Haystack interface; anything else is a REST version.
func WithAPIVersion(version string) Option {
	return func(s *settings) {
		if version != "" {
			s.apiVersion = version
		}
	}
}

// WithHTTPClient replaces the HTTP client used for every request.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

// WithRequestTimeout bounds a single request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers bounds the concurrency of batch operations.
func WithWorkers(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithWaitTimeout sets the default timeout of status waits.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithRetry retries read-only calls that fail with a network error, up to
// maxTries attempts with exponential backoff starting at initial. API errors
// are never retried.
func WithRetry(maxTries uint, initial time.Duration) Option {
	return func(s *settings) {
		s.retryTries = maxTries
		s.retryInterval = initial
	}
}

// ActionOption tunes a call that can wait for the resulting status.
type ActionOption func(*action)

type action struct {
	wait    bool
	timeout time.Duration
}

// NoWait returns as soon as the server accepted the request.
func NoWait() ActionOption {
	return func(a *action) {
		a.wait = false
	}
}

// WaitTimeout overrides the wait timeout for one call.
func WaitTimeout(d time.Duration) ActionOption {
	return func(a *action) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func (c *Client) action(opts []ActionOption) action {
	a := action{wait: true, timeout: c.cfg.waitTimeout}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}
