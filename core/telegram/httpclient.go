package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/netutil"
)

// ClientOptions tunes the HTTP client used for Bot API calls. Zero values
// fall back to defaults.
type ClientOptions struct {
	Timeout        time.Duration
	HeaderTimeout  time.Duration
	Retries        int
	RetryBackoff   time.Duration
	MaxIdlePerHost int
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.Timeout <= 0 {
		// must exceed the long poll timeout
		o.Timeout = 30 * time.Second
	}
	if o.HeaderTimeout <= 0 {
		o.HeaderTimeout = 25 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	} else if o.Retries == 0 {
		o.Retries = 2
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
	if o.MaxIdlePerHost <= 0 {
		o.MaxIdlePerHost = 10
	}
	return o
}

// NewHTTPClient returns a client for Telegram API calls that retries
// connection failures but never a request the server may have seen.
func NewHTTPClient(opts ClientOptions) *http.Client {
	opts = opts.withDefaults()
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   opts.MaxIdlePerHost,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: opts.HeaderTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &dialRetryTransport{
			base:    base,
			retries: opts.Retries,
			backoff: opts.RetryBackoff,
		},
	}
}

type dialRetryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *dialRetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries; attempt++ {
		if !netutil.ShouldRetry(err) {
			return nil, err
		}
		retry, rewindErr := rewind(req)
		if rewindErr != nil {
			return nil, err
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
		logger.TG.Debug("bot api retry",
			slog.String("event", "tg.http.retry"),
			slog.Int("attempt", attempt+1),
			slog.String("err_kind", netutil.Kind(err)),
		)
		resp, err = t.base.RoundTrip(retry)
	}
	return resp, err
}

// rewind clones req with a fresh body. Requests whose body cannot be
// replayed are not retried.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, http.ErrBodyNotAllowed
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
