package db

import (
	"context"
	"sync"
	"time"
)

// DefaultChannelCapacity is the default buffer size for queued writes.
const DefaultChannelCapacity = 100

// WriteOperation is a queued database write. Extraction-run history
// rows flow through here so the response path never blocks on disk.
type WriteOperation struct {
	// Data holds the write payload
	Data interface{}
	// Timestamp is when the operation was queued
	Timestamp time.Time
}

// WriteHandler processes a queued write. Implementations own their
// error handling; a failed history write is logged and dropped, never
// retried into the caller's path.
type WriteHandler func(op WriteOperation) error

// AsyncWriter provides non-blocking database writes using a buffered
// channel and a background goroutine.
type AsyncWriter struct {
	writeChan chan WriteOperation
	handler   WriteHandler
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	started   bool
	mu        sync.Mutex
}

// NewAsyncWriter creates an AsyncWriter with the given handler and
// buffer capacity (values < 1 use DefaultChannelCapacity).
func NewAsyncWriter(handler WriteHandler, capacity int) *AsyncWriter {
	if capacity < 1 {
		capacity = DefaultChannelCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncWriter{
		writeChan: make(chan WriteOperation, capacity),
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the background processing goroutine. Must be called
// before queued writes are processed. Idempotent.
func (w *AsyncWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.processWrites()
}

func (w *AsyncWriter) processWrites() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case op, ok := <-w.writeChan:
			if !ok {
				return
			}
			_ = w.handler(op)
		}
	}
}

// drain processes operations still buffered at shutdown.
func (w *AsyncWriter) drain() {
	for {
		select {
		case op, ok := <-w.writeChan:
			if !ok {
				return
			}
			_ = w.handler(op)
		default:
			return
		}
	}
}

// Write queues an operation without blocking. Returns false when the
// buffer is full; the caller treats a dropped history row as a
// best-effort loss, not an error.
func (w *AsyncWriter) Write(data interface{}) bool {
	op := WriteOperation{Data: data, Timestamp: time.Now()}
	select {
	case w.writeChan <- op:
		return true
	default:
		return false
	}
}

// Pending returns the number of buffered operations.
func (w *AsyncWriter) Pending() int {
	return len(w.writeChan)
}

// Stop signals the goroutine to stop and waits for buffered operations
// to drain.
func (w *AsyncWriter) Stop() {
	w.cancel()
	w.wg.Wait()
}

// StopWithTimeout stops the writer, waiting at most the given duration.
// Returns false on timeout.
func (w *AsyncWriter) StopWithTimeout(timeout time.Duration) bool {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
