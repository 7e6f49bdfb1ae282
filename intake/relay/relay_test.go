package relay

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = Request{
	UserID:      42,
	UserName:    "Ann Lee",
	PhotoFileID: "AgAD",
	FilePath:    "photos/file_1.jpg",
	Server:      "TestServer",
	Car:         "TestCar",
	Price:       150,
}

func newClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: url + "/", APIKey: "secret", Timeout: timeout})
	require.NoError(t, err)
	return c
}

func TestSubmitAccepted(t *testing.T) {
	var got Request
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/submissions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	res := newClient(t, srv.URL, time.Second).Submit(context.Background(), sample)
	assert.True(t, res.Accepted)
	assert.Equal(t, "accepted", res.Outcome())
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Empty(t, res.Reason)
	assert.Equal(t, sample, got)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSubmitPayloadFields(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	newClient(t, srv.URL, time.Second).Submit(context.Background(), sample)
	assert.Equal(t, map[string]any{
		"user_id":       float64(42),
		"user_name":     "Ann Lee",
		"photo_file_id": "AgAD",
		"file_path":     "photos/file_1.jpg",
		"server":        "TestServer",
		"car":           "TestCar",
		"price":         float64(150),
	}, raw)
}

func TestSubmitRejectedStatuses(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))

		res := newClient(t, srv.URL, time.Second).Submit(context.Background(), sample)
		srv.Close()

		assert.False(t, res.Accepted, code)
		assert.Equal(t, code, res.StatusCode)
		assert.Contains(t, res.Reason, `{"error":"nope"}`)
		assert.EqualValues(t, 1, calls.Load(), "no retry on %d", code)
	}
}

func TestSubmitTruncatesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	res := newClient(t, srv.URL, time.Second).Submit(context.Background(), sample)
	assert.False(t, res.Accepted)
	assert.Less(t, len(res.Reason), 600)
	assert.True(t, strings.HasPrefix(res.Reason, "http_5xx: status 502"))
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	res := newClient(t, srv.URL, 50*time.Millisecond).Submit(context.Background(), sample)
	assert.False(t, res.Accepted)
	assert.Zero(t, res.StatusCode)
	assert.Contains(t, res.Reason, "timeout")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSubmitNetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	res := newClient(t, "http://"+addr, time.Second).Submit(context.Background(), sample)
	assert.False(t, res.Accepted)
	assert.Zero(t, res.StatusCode)
	assert.NotEmpty(t, res.Reason)
	assert.NotEmpty(t, res.RequestID)
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{APIKey: "k"})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "http://x"})
	assert.Error(t, err)

	c, err := New(Options{BaseURL: "http://x/", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "http://x/api/submissions", c.endpoint)
	assert.Equal(t, DefaultTimeout, c.timeout)
}
