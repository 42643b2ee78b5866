package behavior

import (
	"context"
	"time"

	"github.com/zeusync/parallelbehavior/internal/core/blackboard"
)

// Status represents the execution result of a behavior node tick.
// It allows the tree to control flow and asynchronous-like waiting.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// TickContext is passed into nodes during Tick. It carries the standard
// context plus shortcuts to the instance blackboard and time.
type TickContext struct {
	Ctx       context.Context
	BB        blackboard.Blackboard
	DeltaTime time.Duration
	Clock     func() time.Time
}

// Node is the fundamental interface for behavior tree nodes.
// Implementations must be stateless across instances; per-instance state
// belongs in the blackboard.
type Node interface {
	// Tick executes one step of the node and returns a Status.
	Tick(t TickContext) (Status, error)
	// Name returns a human-readable name for debugging.
	Name() string
}

// Action performs side effects and returns status based on blackboard state.
type Action interface {
	Node
}

// Condition evaluates to success/failure based on blackboard state.
type Condition interface {
	Node
}

// Decorator wraps a single child node and changes its behavior.
type Decorator interface {
	Node
	SetChild(child Node)
}

// Composite manages multiple children (sequence, selector, parallel).
type Composite interface {
	Node
	SetChildren(children ...Node)
}
