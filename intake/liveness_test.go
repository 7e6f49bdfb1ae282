package intake

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/m3rciful/intakebot/core/health"
	"github.com/m3rciful/intakebot/intake/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRelay struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRelay) Submit(context.Context, relay.Request) relay.Result {
	close(b.entered)
	<-b.release
	return relay.Result{Accepted: true, StatusCode: http.StatusCreated}
}

func TestLivenessAnswersDuringSlowRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = health.NewServer(0).Serve(ctx, ln) }()

	rl := &blockingRelay{entered: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, relay.Result{})
	h.engine = NewEngine(Options{Files: fakeFiles{}, Relay: rl})
	msgID := h.fill(ann, "TestServer", "TestCar", "150")

	done := make(chan error, 1)
	go func() { done <- h.engine.Handle(bg, Choice(ann, TokenConfirm, msgID), h.reply) }()
	<-rl.entered

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	close(rl.release)
	require.NoError(t, <-done)
}
