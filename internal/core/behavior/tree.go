package behavior

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zeusync/parallelbehavior/internal/core/blackboard"
)

// BlackboardSpec declares the working memory a tree expects: the keys it
// starts with. A tree without a spec runs without a blackboard.
type BlackboardSpec struct {
	Defaults map[string]any
}

// Tree is an immutable behavior tree asset: a named root node plus an
// optional blackboard declaration. Running state lives in Instance.
type Tree struct {
	name string
	root Node
	bb   *BlackboardSpec
}

func NewTree(name string, root Node, bb *BlackboardSpec) *Tree {
	return &Tree{name: name, root: root, bb: bb}
}

func (t *Tree) Name() string                    { return t.name }
func (t *Tree) Root() Node                      { return t.root }
func (t *Tree) BlackboardSpec() *BlackboardSpec { return t.bb }

// ExecutionMode controls what happens when the root resolves.
type ExecutionMode int

const (
	// ModeLooped re-enters the root on the next tick after it resolves.
	ModeLooped ExecutionMode = iota
	// ModeSinglePass stops the instance once the root resolves.
	ModeSinglePass
)

// State is the lifecycle state of an Instance.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Invalid"
	}
}

var ErrDestroyed = errors.New("behavior: instance destroyed")

// Instance is a running execution of a Tree bound to its own blackboard.
// It is the opaque handle the parallel manager forwards lifecycle calls
// to: Start, Stop, Restart, Destroy, plus per-frame Tick.
type Instance struct {
	name string
	tree *Tree
	bb   blackboard.Blackboard
	mode ExecutionMode

	mu         sync.Mutex
	state      State
	lastStatus Status
	ticks      int64
	clock      func() time.Time
}

// NewInstance binds a tree asset to a blackboard. The blackboard may be
// nil; nodes that need one will fail their ticks.
func NewInstance(name string, tree *Tree, bb blackboard.Blackboard, mode ExecutionMode) *Instance {
	return &Instance{
		name:  name,
		tree:  tree,
		bb:    bb,
		mode:  mode,
		state: StateStopped,
		clock: time.Now,
	}
}

func (i *Instance) Name() string { return i.name }
func (i *Instance) Tree() *Tree  { return i.tree }

func (i *Instance) Blackboard() blackboard.Blackboard { return i.bb }

func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Instance) LastStatus() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastStatus
}

func (i *Instance) Ticks() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ticks
}

// Start begins execution. Starting a running instance is a no-op.
func (i *Instance) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateDestroyed {
		return ErrDestroyed
	}
	i.state = StateRunning
	return nil
}

// Stop halts execution without releasing the blackboard. Idempotent.
func (i *Instance) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateRunning {
		i.state = StateStopped
	}
}

// Restart stops and starts execution from the root. Idempotent on a
// destroyed instance (returns ErrDestroyed).
func (i *Instance) Restart() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateDestroyed {
		return ErrDestroyed
	}
	i.lastStatus = StatusRunning
	i.ticks = 0
	i.state = StateRunning
	return nil
}

// Destroy halts execution and clears the blackboard. Idempotent; the
// instance cannot be started again.
func (i *Instance) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateDestroyed {
		return
	}
	i.state = StateDestroyed
	if i.bb != nil {
		i.bb.Clear()
	}
}

// Tick runs one evaluation of the tree. A non-running instance is a
// no-op that reports its last status. In single-pass mode the instance
// stops itself once the root resolves.
func (i *Instance) Tick(ctx context.Context, deltaTime time.Duration) (Status, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != StateRunning {
		return i.lastStatus, nil
	}
	if i.tree == nil || i.tree.root == nil {
		return StatusSuccess, nil
	}
	tc := TickContext{Ctx: ctx, BB: i.bb, DeltaTime: deltaTime, Clock: i.clock}
	st, err := i.tree.root.Tick(tc)
	i.lastStatus = st
	i.ticks++
	if i.mode == ModeSinglePass && st != StatusRunning {
		i.state = StateStopped
	}
	return st, err
}
