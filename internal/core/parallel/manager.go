package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/parallelbehavior/internal/core/actor"
	"github.com/zeusync/parallelbehavior/internal/core/behavior"
	"github.com/zeusync/parallelbehavior/internal/core/blackboard"
	"github.com/zeusync/parallelbehavior/internal/core/events/bus"
	"github.com/zeusync/parallelbehavior/internal/core/observability/log"
	"github.com/zeusync/parallelbehavior/pkg/concurrent"
)

// Lifecycle event types published on the bus.
const (
	EventTreeAdded     = "parallel.tree_added"
	EventTreeStopped   = "parallel.tree_stopped"
	EventTreeRestarted = "parallel.tree_restarted"
	EventTreeRemoved   = "parallel.tree_removed"
)

var (
	ErrNilSetup    = errors.New("parallel: setup is nil")
	ErrNoAuthority = errors.New("parallel: owner has no authority")
	ErrDuplicateID = errors.New("parallel: behavior id already running")
	ErrUnknownTree = errors.New("parallel: unknown tree asset")
)

const defaultUpdateInterval = 50 * time.Millisecond // 20 FPS

// Manager lets a single controlled actor run several independent
// behavior trees concurrently, each bound to its own isolated
// blackboard, multiplexed by a string id. Layered AI (combat +
// locomotion + emotion) runs as separate trees without key conflicts.
type Manager struct {
	mu       sync.RWMutex
	owner    *actor.Controller
	library  *behavior.Library
	defaults []Setup
	running  []*Runtime

	logger log.Log
	events *bus.Bus

	// Update control
	updateInterval time.Duration
	isRunning      bool
	stopChan       chan struct{}
}

// NewManager creates a manager attached to an owning controller. A nil
// owner means standalone (non-replicated) use and always has authority.
func NewManager(owner *actor.Controller, library *behavior.Library, cfg *Config, logger log.Log) *Manager {
	if library == nil {
		library = behavior.NewLibrary()
	}
	if logger == nil {
		logger = log.Nop()
	}
	m := &Manager{
		owner:          owner,
		library:        library,
		logger:         logger.With(log.String("component", "parallel_manager")),
		events:         bus.New(),
		updateInterval: defaultUpdateInterval,
		stopChan:       make(chan struct{}),
	}
	if cfg != nil {
		m.defaults = cfg.Behaviors
		if cfg.UpdateInterval > 0 {
			m.updateInterval = time.Duration(cfg.UpdateInterval)
		}
	}
	return m
}

// Events returns the lifecycle event bus.
func (m *Manager) Events() *bus.Bus { return m.events }

// Owner returns the owning controller (nil in standalone use).
func (m *Manager) Owner() *actor.Controller { return m.owner }

func (m *Manager) hasAuthority() bool {
	return m.owner == nil || m.owner.HasAuthority()
}

// pawn returns the controlled actor bound to new blackboards under the
// self key.
func (m *Manager) pawn() actor.Actor {
	if m.owner == nil {
		return nil
	}
	return m.owner.Pawn()
}

// Start runs the component lifecycle entry: default behaviors begin only
// when the owner has authority.
func (m *Manager) Start(_ context.Context) error {
	if !m.hasAuthority() {
		m.logger.Debug("Start: no authority, skipping default behaviors")
		return nil
	}
	return m.RunDefaults()
}

// Close tears down every running behavior. Always safe to call.
func (m *Manager) Close() error {
	m.StopAutoUpdate()
	m.RemoveAll()
	return nil
}

// RunDefaults starts every configured default behavior. Individual
// failures are logged and collected; the rest still start.
func (m *Manager) RunDefaults() error {
	var errs error
	for i := range m.defaults {
		if err := m.Add(&m.defaults[i]); err != nil {
			errs = errors.Join(errs, fmt.Errorf("default %s: %w", m.defaults[i].ID, err))
		}
	}
	return errs
}

// Add starts a new parallel behavior at runtime. Authority-gated. The
// instance gets its own blackboard when the tree declares one; a tree
// without a blackboard declaration still runs, without working memory.
func (m *Manager) Add(setup *Setup) error {
	if setup == nil {
		m.logger.Warn("Add: unable to run nil behavior setup")
		return ErrNilSetup
	}
	if !m.hasAuthority() {
		m.logger.Warn("Add: rejected, owner has no authority", log.String("id", setup.ID))
		return ErrNoAuthority
	}

	tree, ok := m.library.Get(setup.Tree)
	if !ok {
		m.logger.Warn("Add: unable to run unknown behavior tree",
			log.String("id", setup.ID), log.String("tree", setup.Tree))
		return fmt.Errorf("%w: %s", ErrUnknownTree, setup.Tree)
	}

	m.mu.Lock()
	if m.findLocked(setup.ID) != nil {
		m.mu.Unlock()
		m.logger.Warn("Add: behavior id already running", log.String("id", setup.ID))
		return fmt.Errorf("%w: %s", ErrDuplicateID, setup.ID)
	}

	var bb blackboard.Blackboard
	if spec := tree.BlackboardSpec(); spec == nil {
		m.logger.Warn("Add: tree declares no blackboard, running without one",
			log.String("id", setup.ID), log.String("tree", tree.Name()))
	} else {
		store := blackboard.New()
		for k, v := range spec.Defaults {
			store.Set(k, v)
		}
		for k, v := range setup.Data {
			store.Set(k, v)
		}
		if pawn := m.pawn(); pawn != nil {
			store.Set(blackboard.KeySelf, pawn)
		}
		bb = store
	}

	inst := behavior.NewInstance(setup.ID, tree, bb, behavior.ModeLooped)
	if err := inst.Start(); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("start instance %s: %w", setup.ID, err)
	}

	m.running = append(m.running, &Runtime{
		ID:         setup.ID,
		Instance:   inst,
		Blackboard: bb,
		StartedAt:  time.Now(),
	})
	m.mu.Unlock()

	m.logger.Info("Add: started behavior",
		log.String("id", setup.ID),
		log.String("tree", tree.Name()),
		log.Bool("blackboard", bb != nil))
	m.events.Publish(bus.NewEvent(EventTreeAdded, setup.ID, map[string]any{"tree": tree.Name()}))
	return nil
}

// Tree returns the running instance handle for an id, or nil when absent
// or when the owner has no authority.
func (m *Manager) Tree(id string) *behavior.Instance {
	if !m.hasAuthority() {
		m.logger.Warn("Tree: rejected, owner has no authority", log.String("id", id))
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rt := m.findLocked(id)
	if rt == nil {
		m.logger.Warn("Tree: no running behavior with id", log.String("id", id))
		return nil
	}
	return rt.Instance
}

// Stop halts a running behavior without removing it. Authority-gated;
// idempotent no-op when the id is not running.
func (m *Manager) Stop(id string) error {
	if !m.hasAuthority() {
		m.logger.Warn("Stop: rejected, owner has no authority", log.String("id", id))
		return ErrNoAuthority
	}
	m.mu.RLock()
	rt := m.findLocked(id)
	m.mu.RUnlock()
	if rt == nil {
		m.logger.Warn("Stop: no running behavior with id", log.String("id", id))
		return nil
	}
	rt.Instance.Stop()
	m.events.Publish(bus.NewEvent(EventTreeStopped, id, nil))
	return nil
}

// Restart re-enters a behavior from its root. Authority-gated;
// idempotent no-op when the id is not running.
func (m *Manager) Restart(id string) error {
	if !m.hasAuthority() {
		m.logger.Warn("Restart: rejected, owner has no authority", log.String("id", id))
		return ErrNoAuthority
	}
	m.mu.RLock()
	rt := m.findLocked(id)
	m.mu.RUnlock()
	if rt == nil {
		m.logger.Warn("Restart: no running behavior with id", log.String("id", id))
		return nil
	}
	if err := rt.Instance.Restart(); err != nil {
		return fmt.Errorf("restart %s: %w", id, err)
	}
	m.events.Publish(bus.NewEvent(EventTreeRestarted, id, nil))
	return nil
}

// Remove stops a behavior, destroys its tree and blackboard handles and
// drops the record. Reports whether anything was removed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	found := -1
	for i := len(m.running) - 1; i >= 0; i-- {
		if m.running[i].ID == id {
			m.running[i].destroy()
			found = i
			break
		}
	}
	if found >= 0 {
		m.running = append(m.running[:found], m.running[found+1:]...)
	}
	m.mu.Unlock()

	if found < 0 {
		return false
	}
	m.logger.Info("Remove: removed behavior", log.String("id", id))
	m.events.Publish(bus.NewEvent(EventTreeRemoved, id, nil))
	return true
}

// RemoveAll tears down every running behavior in reverse insertion
// order.
func (m *Manager) RemoveAll() {
	m.mu.Lock()
	removed := make([]string, 0, len(m.running))
	for i := len(m.running) - 1; i >= 0; i-- {
		m.running[i].destroy()
		removed = append(removed, m.running[i].ID)
	}
	m.running = nil
	m.mu.Unlock()

	for _, id := range removed {
		m.events.Publish(bus.NewEvent(EventTreeRemoved, id, nil))
	}
}

// Len returns the number of running behaviors.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.running)
}

// Runtimes returns a snapshot of all running behaviors for inspection.
func (m *Manager) Runtimes() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.running))
	for _, rt := range m.running {
		infos = append(infos, rt.info())
	}
	return infos
}

// Update ticks every running behavior once. Independent trees tick
// concurrently; each has its own blackboard so they do not interfere.
func (m *Manager) Update(ctx context.Context, deltaTime time.Duration) error {
	m.mu.RLock()
	runtimes := make([]*Runtime, len(m.running))
	copy(runtimes, m.running)
	m.mu.RUnlock()

	return concurrent.ForEach(runtimes, func(rt *Runtime) error {
		if _, err := rt.Instance.Tick(ctx, deltaTime); err != nil {
			return fmt.Errorf("behavior %s: %w", rt.ID, err)
		}
		return nil
	})
}

// StartAutoUpdate runs the built-in fixed-interval update loop for hosts
// without their own frame loop.
func (m *Manager) StartAutoUpdate(ctx context.Context) {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	stop := m.stopChan
	m.mu.Unlock()

	go m.updateLoop(ctx, stop)
}

// StopAutoUpdate stops the built-in update loop.
func (m *Manager) StopAutoUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isRunning {
		m.isRunning = false
		close(m.stopChan)
		m.stopChan = make(chan struct{})
	}
}

func (m *Manager) updateLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(m.updateInterval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case now := <-ticker.C:
			deltaTime := now.Sub(lastTime)
			lastTime = now

			if err := m.Update(ctx, deltaTime); err != nil {
				m.logger.Error("Update loop error", log.Error(err))
			}
		}
	}
}

// findLocked scans the flat running list; callers hold m.mu.
func (m *Manager) findLocked(id string) *Runtime {
	for _, rt := range m.running {
		if rt.ID == id {
			return rt
		}
	}
	return nil
}
