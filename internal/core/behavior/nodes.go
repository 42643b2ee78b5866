package behavior

import (
	"errors"
	"time"
)

// errNoBlackboard fails the tick of any node that needs working memory
// when its instance runs without a blackboard.
var errNoBlackboard = errors.New("behavior: no blackboard")

// Base node

type baseNode struct{ name string }

func (b baseNode) Name() string { return b.name }

// ActionFunc wraps a function as an Action node.

type ActionFunc struct {
	baseNode
	Fn func(t TickContext) (Status, error)
}

func NewActionFunc(name string, fn func(t TickContext) (Status, error)) ActionFunc {
	return ActionFunc{baseNode: baseNode{name: name}, Fn: fn}
}

func (a ActionFunc) Tick(t TickContext) (Status, error) { return a.Fn(t) }

// ConditionFunc wraps a predicate as a Condition node.

type ConditionFunc struct {
	baseNode
	Fn func(t TickContext) (bool, error)
}

func NewConditionFunc(name string, fn func(t TickContext) (bool, error)) ConditionFunc {
	return ConditionFunc{baseNode: baseNode{name: name}, Fn: fn}
}

func (c ConditionFunc) Tick(t TickContext) (Status, error) {
	ok, err := c.Fn(t)
	if err != nil {
		return StatusFailure, err
	}
	if ok {
		return StatusSuccess, nil
	}
	return StatusFailure, nil
}

// Sequence runs children until one fails; success if all succeed; running if a child is running.

type Sequence struct {
	baseNode
	children []Node
}

func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{baseNode: baseNode{name: name}, children: children}
}

func (s *Sequence) SetChildren(children ...Node) { s.children = children }

func (s *Sequence) Tick(t TickContext) (Status, error) {
	for _, ch := range s.children {
		st, err := ch.Tick(t)
		if err != nil {
			return StatusFailure, err
		}
		switch st {
		case StatusFailure:
			return StatusFailure, nil
		case StatusRunning:
			return StatusRunning, nil
		}
	}
	return StatusSuccess, nil
}

// Selector runs children until one succeeds; failure if all fail; running if a child is running.

type Selector struct {
	baseNode
	children []Node
}

func NewSelector(name string, children ...Node) *Selector {
	return &Selector{baseNode: baseNode{name: name}, children: children}
}

func (s *Selector) SetChildren(children ...Node) { s.children = children }

func (s *Selector) Tick(t TickContext) (Status, error) {
	var lastErr error
	for _, ch := range s.children {
		st, err := ch.Tick(t)
		if err != nil {
			lastErr = err
		}
		switch st {
		case StatusSuccess:
			return StatusSuccess, err
		case StatusRunning:
			return StatusRunning, err
		}
	}
	return StatusFailure, lastErr
}

// Parallel executes all children each tick and resolves based on a policy.

type ParallelPolicy int

const (
	ParallelRequireAllSuccess ParallelPolicy = iota
	ParallelRequireOneSuccess
)

type Parallel struct {
	baseNode
	children []Node
	policy   ParallelPolicy
}

func NewParallel(name string, policy ParallelPolicy, children ...Node) *Parallel {
	return &Parallel{baseNode: baseNode{name: name}, policy: policy, children: children}
}

func (p *Parallel) SetChildren(children ...Node) { p.children = children }

func (p *Parallel) Tick(t TickContext) (Status, error) {
	if len(p.children) == 0 {
		return StatusSuccess, nil
	}
	successes := 0
	var anyRunning bool
	var allErr error
	for _, ch := range p.children {
		st, err := ch.Tick(t)
		if err != nil {
			allErr = errors.Join(allErr, err)
		}
		switch st {
		case StatusSuccess:
			successes++
		case StatusRunning:
			anyRunning = true
		}
	}
	switch p.policy {
	case ParallelRequireAllSuccess:
		if successes == len(p.children) {
			return StatusSuccess, allErr
		}
		if anyRunning {
			return StatusRunning, allErr
		}
		return StatusFailure, allErr
	case ParallelRequireOneSuccess:
		if successes > 0 {
			return StatusSuccess, allErr
		}
		if anyRunning {
			return StatusRunning, allErr
		}
		return StatusFailure, allErr
	default:
		return StatusFailure, errors.New("unknown parallel policy")
	}
}

// Inverter decorator swaps success and failure; running passes through.

type Inverter struct {
	baseNode
	child Node
}

func NewInverter(name string) *Inverter {
	return &Inverter{baseNode: baseNode{name: name}}
}

func (i *Inverter) SetChild(child Node) { i.child = child }

func (i *Inverter) Tick(t TickContext) (Status, error) {
	if i.child == nil {
		return StatusFailure, errors.New("inverter: child is nil")
	}
	st, err := i.child.Tick(t)
	switch st {
	case StatusSuccess:
		return StatusFailure, err
	case StatusFailure:
		return StatusSuccess, err
	default:
		return st, err
	}
}

// Succeeder decorator always reports success unless the child is running.

type Succeeder struct {
	baseNode
	child Node
}

func NewSucceeder(name string) *Succeeder {
	return &Succeeder{baseNode: baseNode{name: name}}
}

func (s *Succeeder) SetChild(child Node) { s.child = child }

func (s *Succeeder) Tick(t TickContext) (Status, error) {
	if s.child == nil {
		return StatusFailure, errors.New("succeeder: child is nil")
	}
	st, err := s.child.Tick(t)
	if st == StatusRunning {
		return StatusRunning, err
	}
	return StatusSuccess, err
}

// Repeat decorator repeats its child a fixed number of times or until failure.

type Repeat struct {
	baseNode
	child Node
	Times int
	// StopOnFailure stops repeating on failure when true.
	StopOnFailure bool
}

func NewRepeat(name string, times int, stopOnFailure bool) *Repeat {
	return &Repeat{baseNode: baseNode{name: name}, Times: times, StopOnFailure: stopOnFailure}
}

func (r *Repeat) SetChild(child Node) { r.child = child }

func (r *Repeat) Tick(t TickContext) (Status, error) {
	if r.child == nil {
		return StatusFailure, errors.New("repeat: child is nil")
	}
	for i := 0; i < r.Times; i++ {
		st, err := r.child.Tick(t)
		if err != nil {
			return StatusFailure, err
		}
		if st == StatusRunning {
			return StatusRunning, nil
		}
		if st == StatusFailure && r.StopOnFailure {
			return StatusFailure, nil
		}
	}
	return StatusSuccess, nil
}

// Cooldown decorator gates its child behind a minimum interval between
// executions. The last-fired time lives in the blackboard under the key
// name+".fired" so the node itself stays stateless.

type Cooldown struct {
	baseNode
	child Node
	Every time.Duration
}

func NewCooldown(name string, every time.Duration) *Cooldown {
	return &Cooldown{baseNode: baseNode{name: name}, Every: every}
}

func (c *Cooldown) SetChild(child Node) { c.child = child }

func (c *Cooldown) Tick(t TickContext) (Status, error) {
	if c.child == nil {
		return StatusFailure, errors.New("cooldown: child is nil")
	}
	if t.BB == nil {
		return StatusFailure, errNoBlackboard
	}
	key := c.name + ".fired"
	now := t.Clock()
	if v, ok := t.BB.Get(key); ok {
		if last, is := v.(time.Time); is && now.Sub(last) < c.Every {
			return StatusFailure, nil
		}
	}
	st, err := c.child.Tick(t)
	if st != StatusRunning {
		t.BB.Set(key, now)
	}
	return st, err
}
