package sender

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the capacity of each worker queue.
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
	done     chan error
}

// Dispatcher executes outbound Telegram calls on a fixed set of workers.
// Jobs for the same chat always land on the same worker, so a chat sees its
// messages in the order they were submitted.
type Dispatcher struct {
	opts   Options
	queues []chan job
	stop   chan struct{}
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	errs   atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{
		opts:   opts,
		queues: make([]chan job, opts.Workers),
		stop:   make(chan struct{}),
	}
	d.wg.Add(opts.Workers)
	for i := range d.queues {
		d.queues[i] = make(chan job, opts.QueueSize)
		go d.worker(d.queues[i])
	}
	return d
}

// Enqueue schedules run on the chat's worker and returns immediately.
// The run closure must be idempotent if retries are desired.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	return d.submit(job{ctx: ctx, action: action, endpoint: endpoint, run: run})
}

// Do schedules run on the chat's worker and waits for its final result.
// Use it when the caller needs the outcome (e.g. a sent message id) while
// keeping ordering with previously enqueued jobs.
func (d *Dispatcher) Do(ctx context.Context, action, endpoint string, run func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan error, 1)
	if err := d.submit(job{ctx: ctx, action: action, endpoint: endpoint, run: run, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) submit(j job) error {
	if j.run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if j.ctx == nil {
		j.ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	q := d.queues[d.shard(logger.ChatIDFrom(j.ctx))]
	select {
	case q <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shard(chatID int64) int {
	if chatID < 0 {
		chatID = -chatID
	}
	return int(chatID % int64(len(d.queues)))
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for workers to drain their queues.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.stop)
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(q <-chan job) {
	defer d.wg.Done()
	for j := range q {
		err := d.handleJob(j)
		if j.done != nil {
			j.done <- err
		}
	}
}

func (d *Dispatcher) handleJob(j job) error {
	ctx := j.ctx
	deadlineCtx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(ctx, "tg.sender", "send.start", sendLogAttrs(ctx, j)...)

	attempts := d.opts.MaxRetries + 1
	var lastErr error
retry:
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = j.run(); lastErr == nil {
			logSendSuccess(ctx, j, attempt, time.Since(start))
			return nil
		}
		if !netutil.ShouldRetry(lastErr) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			lastErr = errors.Join(lastErr, deadlineCtx.Err())
			break retry
		case <-d.stop:
			timer.Stop()
			break retry
		case <-timer.C:
		}
		logger.Debug(ctx, "tg.sender", "send.retry.backoff",
			append(sendLogAttrs(ctx, j),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)...,
		)
	}

	d.errs.Add(1)
	logSendFailure(ctx, j, lastErr, attempts, time.Since(start))
	return lastErr
}

func sendLogAttrs(ctx context.Context, j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", chatID))
	}
	return attrs
}

func logSendSuccess(ctx context.Context, j job, attempt int, elapsed time.Duration) {
	attrs := sendLogAttrs(ctx, j)
	if attempt > 1 {
		attrs = append(attrs, slog.Int("attempt", attempt))
	}
	attrs = append(attrs, slog.Duration("duration", elapsed))
	logger.Debug(ctx, "tg.sender", "send.success", attrs...)
}

func logSendFailure(ctx context.Context, j job, err error, attempts int, elapsed time.Duration) {
	attrs := append(sendLogAttrs(ctx, j),
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_kind", classifyError(err)),
		slog.Int("attempts", attempts),
		slog.Duration("duration", elapsed),
	)
	logger.Error(ctx, "tg.sender", "send.fail", attrs...)
}

// classifyError adds Bot API error codes on top of the network classification.
func classifyError(err error) string {
	if kind := netutil.Kind(err); kind != "unknown" {
		return kind
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		if kind := netutil.StatusKind(apiErr.Code); kind != "" {
			return kind
		}
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return netutil.StatusKind(http.StatusTooManyRequests)
	}
	return "unknown"
}

// sanitizeErrorMessage prevents accidental leakage of Telegram bot tokens in logs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
