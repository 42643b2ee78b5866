package behavior

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zeusync/parallelbehavior/internal/core/blackboard"
)

func testContext(bb blackboard.Blackboard, now time.Time) TickContext {
	return TickContext{
		Ctx:   context.Background(),
		BB:    bb,
		Clock: func() time.Time { return now },
	}
}

func succeed(name string) Node {
	return NewActionFunc(name, func(TickContext) (Status, error) { return StatusSuccess, nil })
}

func fail(name string) Node {
	return NewActionFunc(name, func(TickContext) (Status, error) { return StatusFailure, nil })
}

func running(name string) Node {
	return NewActionFunc(name, func(TickContext) (Status, error) { return StatusRunning, nil })
}

func TestSequence(t *testing.T) {
	tc := testContext(blackboard.New(), time.Now())

	seq := NewSequence("seq", succeed("a"), succeed("b"))
	st, err := seq.Tick(tc)
	if err != nil || st != StatusSuccess {
		t.Errorf("Expected Success, got %v (%v)", st, err)
	}

	seq.SetChildren(succeed("a"), fail("b"), succeed("c"))
	st, _ = seq.Tick(tc)
	if st != StatusFailure {
		t.Errorf("Expected Failure, got %v", st)
	}

	seq.SetChildren(succeed("a"), running("b"))
	st, _ = seq.Tick(tc)
	if st != StatusRunning {
		t.Errorf("Expected Running, got %v", st)
	}
}

func TestSelector(t *testing.T) {
	tc := testContext(blackboard.New(), time.Now())

	sel := NewSelector("sel", fail("a"), succeed("b"))
	st, err := sel.Tick(tc)
	if err != nil || st != StatusSuccess {
		t.Errorf("Expected Success, got %v (%v)", st, err)
	}

	sel.SetChildren(fail("a"), fail("b"))
	st, _ = sel.Tick(tc)
	if st != StatusFailure {
		t.Errorf("Expected Failure, got %v", st)
	}

	sel.SetChildren(fail("a"), running("b"), succeed("c"))
	st, _ = sel.Tick(tc)
	if st != StatusRunning {
		t.Errorf("Expected Running, got %v", st)
	}
}

func TestParallelPolicies(t *testing.T) {
	tc := testContext(blackboard.New(), time.Now())

	all := NewParallel("all", ParallelRequireAllSuccess, succeed("a"), succeed("b"))
	st, _ := all.Tick(tc)
	if st != StatusSuccess {
		t.Errorf("Expected Success, got %v", st)
	}

	all.SetChildren(succeed("a"), fail("b"))
	st, _ = all.Tick(tc)
	if st != StatusFailure {
		t.Errorf("Expected Failure, got %v", st)
	}

	all.SetChildren(succeed("a"), running("b"))
	st, _ = all.Tick(tc)
	if st != StatusRunning {
		t.Errorf("Expected Running, got %v", st)
	}

	one := NewParallel("one", ParallelRequireOneSuccess, fail("a"), succeed("b"))
	st, _ = one.Tick(tc)
	if st != StatusSuccess {
		t.Errorf("Expected Success, got %v", st)
	}

	one.SetChildren(fail("a"), fail("b"))
	st, _ = one.Tick(tc)
	if st != StatusFailure {
		t.Errorf("Expected Failure, got %v", st)
	}

	empty := NewParallel("empty", ParallelRequireAllSuccess)
	st, _ = empty.Tick(tc)
	if st != StatusSuccess {
		t.Errorf("Expected Success for empty parallel, got %v", st)
	}
}

func TestParallelJoinsChildErrors(t *testing.T) {
	tc := testContext(blackboard.New(), time.Now())
	boom := errors.New("boom")
	bad := NewActionFunc("bad", func(TickContext) (Status, error) { return StatusFailure, boom })

	par := NewParallel("par", ParallelRequireAllSuccess, bad, succeed("ok"))
	_, err := par.Tick(tc)
	if !errors.Is(err, boom) {
		t.Errorf("Expected joined child error, got %v", err)
	}
}

func TestInverterAndSucceeder(t *testing.T) {
	tc := testContext(blackboard.New(), time.Now())

	inv := NewInverter("inv")
	inv.SetChild(succeed("a"))
	st, _ := inv.Tick(tc)
	if st != StatusFailure {
		t.Errorf("Expected Failure, got %v", st)
	}
	inv.SetChild(running("a"))
	st, _ = inv.Tick(tc)
	if st != StatusRunning {
		t.Errorf("Expected Running to pass through, got %v", st)
	}

	suc := NewSucceeder("suc")
	suc.SetChild(fail("a"))
	st, _ = suc.Tick(tc)
	if st != StatusSuccess {
		t.Errorf("Expected Success, got %v", st)
	}

	bare := NewInverter("bare")
	if _, err := bare.Tick(tc); err == nil {
		t.Error("Expected error for inverter without child")
	}
}

func TestRepeat(t *testing.T) {
	tc := testContext(blackboard.New(), time.Now())

	count := 0
	counter := NewActionFunc("counter", func(TickContext) (Status, error) {
		count++
		return StatusSuccess, nil
	})

	rep := NewRepeat("rep", 3, false)
	rep.SetChild(counter)
	st, err := rep.Tick(tc)
	if err != nil || st != StatusSuccess {
		t.Errorf("Expected Success, got %v (%v)", st, err)
	}
	if count != 3 {
		t.Errorf("Expected 3 executions, got %d", count)
	}

	fails := 0
	flaky := NewActionFunc("flaky", func(TickContext) (Status, error) {
		fails++
		return StatusFailure, nil
	})
	stopper := NewRepeat("stopper", 5, true)
	stopper.SetChild(flaky)
	st, _ = stopper.Tick(tc)
	if st != StatusFailure {
		t.Errorf("Expected Failure, got %v", st)
	}
	if fails != 1 {
		t.Errorf("Expected stop after first failure, got %d runs", fails)
	}
}

func TestCooldown(t *testing.T) {
	bb := blackboard.New()
	now := time.Now()

	count := 0
	counter := NewActionFunc("counter", func(TickContext) (Status, error) {
		count++
		return StatusSuccess, nil
	})
	cd := NewCooldown("cd", time.Second)
	cd.SetChild(counter)

	st, err := cd.Tick(testContext(bb, now))
	if err != nil || st != StatusSuccess {
		t.Fatalf("Expected Success, got %v (%v)", st, err)
	}

	// inside the cooldown window
	st, _ = cd.Tick(testContext(bb, now.Add(500*time.Millisecond)))
	if st != StatusFailure {
		t.Errorf("Expected Failure inside cooldown, got %v", st)
	}
	if count != 1 {
		t.Errorf("Expected child not to rerun, got %d", count)
	}

	// window elapsed
	st, _ = cd.Tick(testContext(bb, now.Add(1100*time.Millisecond)))
	if st != StatusSuccess {
		t.Errorf("Expected Success after cooldown, got %v", st)
	}
	if count != 2 {
		t.Errorf("Expected second run, got %d", count)
	}

	noBB := testContext(nil, now)
	if _, err = cd.Tick(noBB); err == nil {
		t.Error("Expected error without blackboard")
	}
}
