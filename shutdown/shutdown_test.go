package shutdown

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrackerStartDone(t *testing.T) {
	tracker := NewOperationTracker()

	if !tracker.Start() {
		t.Fatal("Start() = false on open tracker")
	}
	if tracker.ActiveCount() != 1 {
		t.Errorf("ActiveCount() = %d, want 1", tracker.ActiveCount())
	}
	tracker.Done()
	if tracker.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", tracker.ActiveCount())
	}
}

func TestTrackerRejectsAfterClose(t *testing.T) {
	tracker := NewOperationTracker()
	tracker.Close()

	if tracker.Start() {
		t.Error("Start() = true on closed tracker")
	}
	if !tracker.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
}

func TestTrackerWaitTimeout(t *testing.T) {
	tracker := NewOperationTracker()
	tracker.Start() // never Done

	err := tracker.Wait(20 * time.Millisecond)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("Wait() error = %v, want ErrWaitTimeout", err)
	}
	tracker.Done()
}

func TestTrackerWaitCompletes(t *testing.T) {
	tracker := NewOperationTracker()
	tracker.Start()
	go func() {
		time.Sleep(10 * time.Millisecond)
		tracker.Done()
	}()

	if err := tracker.Wait(time.Second); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestRegistryPriorityOrder(t *testing.T) {
	registry := NewRegistry()

	var mu sync.Mutex
	var order []string
	record := func(name string) Func {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	registry.Register("database", 20, record("database"))
	registry.Register("http", 0, record("http"))
	registry.Register("workers", 10, record("workers"))

	errs := registry.Shutdown(context.Background())
	if len(errs) != 0 {
		t.Fatalf("Shutdown() errors = %v", errs)
	}

	want := []string{"http", "workers", "database"}
	mu.Lock()
	defer mu.Unlock()
	for i, name := range want {
		if order[i] != name {
			t.Errorf("execution order[%d] = %s, want %s", i, order[i], name)
		}
	}
}

func TestRegistryCollectsErrorsAndRunsAll(t *testing.T) {
	registry := NewRegistry()
	var ran int32

	registry.Register("failing", 0, func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return errors.New("boom")
	})
	registry.Register("succeeding", 10, func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	errs := registry.Shutdown(context.Background())
	if len(errs) != 1 {
		t.Errorf("Shutdown() errors = %d, want 1", len(errs))
	}
	if atomic.LoadInt32(&ran) != 2 {
		t.Errorf("handlers ran = %d, want 2 despite failure", ran)
	}
}

func TestRegistryShutdownIdempotent(t *testing.T) {
	registry := NewRegistry()
	var calls int32
	registry.Register("once", 0, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	registry.Shutdown(context.Background())
	registry.Shutdown(context.Background())

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestSignalCounterForceThreshold(t *testing.T) {
	var forced int32
	counter := NewSignalCounter(2, func() { atomic.AddInt32(&forced, 1) })

	if counter.Increment() != 1 {
		t.Error("first Increment() != 1")
	}
	if atomic.LoadInt32(&forced) != 0 {
		t.Error("force callback fired on first signal")
	}
	counter.Increment()
	if atomic.LoadInt32(&forced) != 1 {
		t.Error("force callback did not fire on second signal")
	}
}

func TestManagerShutdownSequence(t *testing.T) {
	manager := NewManager(nil, WithTimeout(time.Second))

	var mu sync.Mutex
	var order []string
	manager.Register("database", 20, func(ctx context.Context) error {
		mu.Lock()
		order = append(order, "database")
		mu.Unlock()
		return nil
	})
	manager.Register("http", 0, func(ctx context.Context) error {
		mu.Lock()
		order = append(order, "http")
		mu.Unlock()
		return nil
	})

	if err := manager.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "http" || order[1] != "database" {
		t.Errorf("cleanup order = %v, want [http database]", order)
	}

	select {
	case <-manager.Context().Done():
	default:
		t.Error("managed context not cancelled after Shutdown")
	}
}

func TestManagerWrapOperationRejectsDuringShutdown(t *testing.T) {
	manager := NewManager(nil, WithTimeout(time.Second))
	manager.Shutdown()

	err := manager.WrapOperation(context.Background(), "late", func(ctx context.Context) error {
		t.Error("operation ran during shutdown")
		return nil
	})
	if !errors.Is(err, ErrTrackerClosed) {
		t.Errorf("WrapOperation() error = %v, want ErrTrackerClosed", err)
	}
}

func TestManagerWrapOperationRuns(t *testing.T) {
	manager := NewManager(nil)
	var ran bool

	err := manager.WrapOperation(context.Background(), "work", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Errorf("WrapOperation() error = %v", err)
	}
	if !ran {
		t.Error("operation did not run")
	}
}

func TestManagerTrigger(t *testing.T) {
	manager := NewManager(nil)
	manager.Trigger()

	select {
	case <-manager.Context().Done():
	case <-time.After(time.Second):
		t.Error("Trigger() did not cancel the managed context")
	}
}
