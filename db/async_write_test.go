package db

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncWriterProcessesQueuedWrites(t *testing.T) {
	var processed int64
	var mu sync.Mutex
	var received []interface{}

	handler := func(op WriteOperation) error {
		atomic.AddInt64(&processed, 1)
		mu.Lock()
		received = append(received, op.Data)
		mu.Unlock()
		return nil
	}

	writer := NewAsyncWriter(handler, 16)
	writer.Start()

	for _, data := range []string{"first", "second", "third"} {
		if !writer.Write(data) {
			t.Errorf("Write(%q) returned false, expected true", data)
		}
	}

	writer.Stop()

	if atomic.LoadInt64(&processed) != 3 {
		t.Errorf("processed = %d, want 3", processed)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(received) != 3 {
		t.Errorf("received length = %d, want 3", len(received))
	}
}

func TestAsyncWriterNonBlockingWhenFull(t *testing.T) {
	block := make(chan struct{})
	handler := func(op WriteOperation) error {
		<-block
		return nil
	}

	writer := NewAsyncWriter(handler, 2)
	writer.Start()
	defer func() {
		close(block)
		writer.Stop()
	}()

	// One write is in the handler, two fill the buffer; further writes
	// must return false immediately rather than block.
	deadline := time.Now().Add(time.Second)
	accepted := 0
	for time.Now().Before(deadline) {
		if writer.Write("item") {
			accepted++
			continue
		}
		return // got the expected rejection
	}
	t.Fatalf("Write never rejected after %d accepted writes", accepted)
}

func TestAsyncWriterDrainsOnStop(t *testing.T) {
	var processed int64
	handler := func(op WriteOperation) error {
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&processed, 1)
		return nil
	}

	writer := NewAsyncWriter(handler, 32)
	writer.Start()
	for i := 0; i < 10; i++ {
		writer.Write(i)
	}
	writer.Stop()

	if got := atomic.LoadInt64(&processed); got != 10 {
		t.Errorf("processed = %d, want 10 after drain", got)
	}
}

func TestAsyncWriterStartIdempotent(t *testing.T) {
	var processed int64
	handler := func(op WriteOperation) error {
		atomic.AddInt64(&processed, 1)
		return nil
	}

	writer := NewAsyncWriter(handler, 4)
	writer.Start()
	writer.Start()
	writer.Write("once")
	writer.Stop()

	if got := atomic.LoadInt64(&processed); got != 1 {
		t.Errorf("processed = %d, want 1", got)
	}
}

func TestAsyncWriterStopWithTimeout(t *testing.T) {
	block := make(chan struct{})
	handler := func(op WriteOperation) error {
		<-block
		return nil
	}

	writer := NewAsyncWriter(handler, 4)
	writer.Start()
	writer.Write("stuck")
	time.Sleep(10 * time.Millisecond)

	if writer.StopWithTimeout(20 * time.Millisecond) {
		t.Error("StopWithTimeout() = true, want false while handler is blocked")
	}
	close(block)
}
