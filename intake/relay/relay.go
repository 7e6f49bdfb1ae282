// Package relay forwards confirmed submissions to the moderation API.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/netutil"
)

const (
	// DefaultTimeout bounds a single submission call.
	DefaultTimeout = 10 * time.Second
	submitPath     = "/api/submissions"
	maxBodyInError = 512
)

// Request is the submission payload. It is built once per confirmation
// and never modified.
type Request struct {
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	PhotoFileID string `json:"photo_file_id"`
	FilePath    string `json:"file_path"`
	Server      string `json:"server"`
	Car         string `json:"car"`
	Price       int64  `json:"price"`
}

// Result is the outcome of one submission attempt.
type Result struct {
	Accepted bool
	// RequestID is the X-Request-ID sent with the call.
	RequestID string
	// StatusCode is 0 when no response arrived.
	StatusCode int
	// Reason describes a rejection: the response body or transport error.
	Reason string
}

// Outcome returns "accepted" or "rejected".
func (r Result) Outcome() string {
	if r.Accepted {
		return "accepted"
	}
	return "rejected"
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// HTTPClient overrides the default client; its own Timeout still applies.
	HTTPClient *http.Client
}

// Client posts submissions. It makes exactly one attempt per Submit.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("relay: base url is required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("relay: api key is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		// a plain transport: no retries, one attempt per submission
		hc = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &Client{
		endpoint: base + submitPath,
		apiKey:   opts.APIKey,
		timeout:  timeout,
		http:     hc,
	}, nil
}

// Submit sends req and classifies the response. Only 201 Created counts
// as accepted; everything else, including transport errors, is a rejection.
func (c *Client) Submit(ctx context.Context, req Request) Result {
	res := Result{RequestID: uuid.NewString()}
	start := time.Now()

	res.StatusCode, res.Reason = c.post(ctx, res.RequestID, req)
	res.Accepted = res.StatusCode == http.StatusCreated
	if res.Accepted {
		res.Reason = ""
	}

	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("outcome", res.Outcome()),
		slog.String("request_id", res.RequestID),
		slog.String("url", c.endpoint),
		slog.Int64("user_id", req.UserID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	level := slog.LevelInfo
	if !res.Accepted {
		level = slog.LevelError
		attrs[0] = slog.String("status", "fail")
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(res.Reason, 256)))
	}
	if res.StatusCode != 0 {
		attrs = append(attrs, slog.Int("http_code", res.StatusCode))
	}
	logger.LogEvent(ctx, logger.Relay, level, "relay.submit", attrs...)
	return res
}

func (c *Client) post(ctx context.Context, requestID string, req Request) (int, string) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Sprintf("encode request: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Sprintf("build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Sprintf("%s: %v", netutil.Kind(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, ""
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyInError))
	reason := fmt.Sprintf("status %d", resp.StatusCode)
	if kind := netutil.StatusKind(resp.StatusCode); kind != "" {
		reason = kind + ": " + reason
	}
	if text := truncate(string(snippet)); text != "" {
		reason += ": " + text
	}
	return resp.StatusCode, reason
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	for !utf8.ValidString(s) && len(s) > 0 {
		s = s[:len(s)-1]
	}
	return s
}
