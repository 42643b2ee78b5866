package behavior

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zeusync/parallelbehavior/internal/core/blackboard"
)

func TestInstanceLifecycle(t *testing.T) {
	bb := blackboard.New()
	tree := NewTree("counter", NewActionFunc("inc", func(tc TickContext) (Status, error) {
		cur, _ := tc.BB.GetInt("count")
		tc.BB.Set("count", cur+1)
		return StatusSuccess, nil
	}), &BlackboardSpec{})

	inst := NewInstance("counter", tree, bb, ModeLooped)

	if inst.State() != StateStopped {
		t.Errorf("Expected Stopped, got %v", inst.State())
	}

	// stopped instance ticks are no-ops
	if _, err := inst.Tick(context.Background(), 0); err != nil {
		t.Fatalf("Tick on stopped instance failed: %v", err)
	}
	if n, _ := bb.GetInt("count"); n != 0 {
		t.Errorf("Expected no execution while stopped, got %d", n)
	}

	if err := inst.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := inst.Tick(context.Background(), 16*time.Millisecond); err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
	}
	if n, _ := bb.GetInt("count"); n != 3 {
		t.Errorf("Expected 3 looped executions, got %d", n)
	}
	if inst.Ticks() != 3 {
		t.Errorf("Expected 3 ticks, got %d", inst.Ticks())
	}

	inst.Stop()
	if inst.State() != StateStopped {
		t.Errorf("Expected Stopped, got %v", inst.State())
	}
	inst.Stop() // idempotent

	if err := inst.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if inst.State() != StateRunning {
		t.Errorf("Expected Running after restart, got %v", inst.State())
	}
	if inst.Ticks() != 0 {
		t.Errorf("Expected tick counter reset, got %d", inst.Ticks())
	}
}

func TestInstanceSinglePassStopsItself(t *testing.T) {
	tree := NewTree("oneshot", NewActionFunc("done", func(TickContext) (Status, error) {
		return StatusSuccess, nil
	}), nil)
	inst := NewInstance("oneshot", tree, nil, ModeSinglePass)

	if err := inst.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	st, err := inst.Tick(context.Background(), 0)
	if err != nil || st != StatusSuccess {
		t.Fatalf("Expected Success, got %v (%v)", st, err)
	}
	if inst.State() != StateStopped {
		t.Errorf("Expected single-pass instance to stop, got %v", inst.State())
	}
}

func TestInstanceDestroy(t *testing.T) {
	bb := blackboard.New()
	bb.Set("key", "value")
	tree := NewTree("noop", nil, &BlackboardSpec{})
	inst := NewInstance("noop", tree, bb, ModeLooped)

	inst.Destroy()
	if inst.State() != StateDestroyed {
		t.Errorf("Expected Destroyed, got %v", inst.State())
	}
	if bb.Has("key") {
		t.Error("Expected blackboard cleared on destroy")
	}

	inst.Destroy() // idempotent

	if err := inst.Start(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Expected ErrDestroyed on start, got %v", err)
	}
	if err := inst.Restart(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Expected ErrDestroyed on restart, got %v", err)
	}
}

func TestInstanceNilRoot(t *testing.T) {
	inst := NewInstance("empty", NewTree("empty", nil, nil), nil, ModeLooped)
	if err := inst.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	st, err := inst.Tick(context.Background(), 0)
	if err != nil || st != StatusSuccess {
		t.Errorf("Expected Success for nil root, got %v (%v)", st, err)
	}
}
