package scheduler

import (
	"errors"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T) *JobRegistry {
	t.Helper()
	r, err := NewJobRegistry()
	if err != nil {
		t.Fatalf("NewJobRegistry: %v", err)
	}
	t.Cleanup(func() { _ = r.Stop() })
	return r
}

func TestRegistryRegisterAndHas(t *testing.T) {
	r := newTestRegistry(t)
	runAt := time.Now().Add(time.Hour)

	if r.Has("deferred_survey:1:2026-04-02") {
		t.Fatal("empty registry reported a key")
	}
	if err := r.Register("deferred_survey:1:2026-04-02", runAt, func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !r.Has("deferred_survey:1:2026-04-02") {
		t.Fatal("registered key not reported")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryRejectsDuplicateKey(t *testing.T) {
	r := newTestRegistry(t)
	runAt := time.Now().Add(time.Hour)

	if err := r.Register("k", runAt, func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := r.Register("k", runAt.Add(time.Minute), func() {})
	if !errors.Is(err, ErrJobAlreadyRegistered) {
		t.Fatalf("second Register = %v, want ErrJobAlreadyRegistered", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryCancel(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Register("k", time.Now().Add(time.Hour), func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Cancel("k"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if r.Has("k") {
		t.Fatal("cancelled key still reported")
	}
	// Cancelling an unknown key is a no-op.
	if err := r.Cancel("missing"); err != nil {
		t.Fatalf("Cancel(missing): %v", err)
	}
	// The key can be booked again after cancellation.
	if err := r.Register("k", time.Now().Add(time.Hour), func() {}); err != nil {
		t.Fatalf("re-Register after cancel: %v", err)
	}
}

func TestRegistryPruneBefore(t *testing.T) {
	r := newTestRegistry(t)
	now := time.Now()

	if err := r.Register("old", now.Add(30*time.Hour), func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("fresh", now.Add(50*time.Hour), func() {}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	pruned := r.PruneBefore(now.Add(40 * time.Hour))
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}
	if r.Has("old") {
		t.Fatal("pruned key still reported")
	}
	if !r.Has("fresh") {
		t.Fatal("future key was pruned")
	}
}

func TestRegistryExecutesOneShotJob(t *testing.T) {
	r := newTestRegistry(t)
	fired := make(chan struct{})

	err := r.Register("soon", time.Now().Add(50*time.Millisecond), func() {
		close(fired)
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Start()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("one-shot job did not fire")
	}
	// The key keeps suppressing re-registration until pruned.
	if !r.Has("soon") {
		t.Fatal("executed key dropped before prune")
	}
}
