package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter fans encoded lines out to its sinks from a single goroutine.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once

	mu    sync.Mutex
	sinks []*bufio.Writer
	err   error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				_ = w.flushAll()
				return
			}
			w.writeAll(line)
		case ack := <-w.flushReq:
			ack <- w.flushAll()
		}
	}
}

// Write enqueues a copy of p. A full queue blocks the caller instead of
// dropping the line.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.lastErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush waits until everything queued so far has reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
		return <-ack
	case <-w.done:
		return w.lastErr()
	}
}

// Close drains the queue and reports the first encountered write error.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.queue) })
	<-w.done
	return w.lastErr()
}

func (w *asyncWriter) writeAll(p []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil && w.err == nil {
			w.err = err
		}
		if err := sink.Flush(); err != nil && w.err == nil {
			w.err = err
		}
	}
}

func (w *asyncWriter) flushAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) lastErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
