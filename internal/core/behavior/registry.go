package behavior

import (
	"fmt"
	"sync"
)

// Registry allows plug-and-play node implementations to be registered by
// name. It decouples tree definitions from concrete implementations.
type Registry interface {
	RegisterAction(name string, factory func(params map[string]any) (Action, error))
	RegisterCondition(name string, factory func(params map[string]any) (Condition, error))
	RegisterDecorator(name string, factory func(params map[string]any) (Decorator, error))

	NewAction(name string, params map[string]any) (Action, error)
	NewCondition(name string, params map[string]any) (Condition, error)
	NewDecorator(name string, params map[string]any) (Decorator, error)
}

// reg is an in-memory Registry implementation.
type reg struct {
	mu    sync.RWMutex
	acts  map[string]func(map[string]any) (Action, error)
	conds map[string]func(map[string]any) (Condition, error)
	decos map[string]func(map[string]any) (Decorator, error)
}

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return &reg{
		acts:  make(map[string]func(map[string]any) (Action, error)),
		conds: make(map[string]func(map[string]any) (Condition, error)),
		decos: make(map[string]func(map[string]any) (Decorator, error)),
	}
}

func (r *reg) RegisterAction(name string, factory func(map[string]any) (Action, error)) {
	r.mu.Lock()
	r.acts[name] = factory
	r.mu.Unlock()
}

func (r *reg) RegisterCondition(name string, factory func(map[string]any) (Condition, error)) {
	r.mu.Lock()
	r.conds[name] = factory
	r.mu.Unlock()
}

func (r *reg) RegisterDecorator(name string, factory func(map[string]any) (Decorator, error)) {
	r.mu.Lock()
	r.decos[name] = factory
	r.mu.Unlock()
}

func (r *reg) NewAction(name string, params map[string]any) (Action, error) {
	r.mu.RLock()
	f := r.acts[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown action: %s", name)
	}
	return f(params)
}

func (r *reg) NewCondition(name string, params map[string]any) (Condition, error) {
	r.mu.RLock()
	f := r.conds[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown condition: %s", name)
	}
	return f(params)
}

func (r *reg) NewDecorator(name string, params map[string]any) (Decorator, error) {
	r.mu.RLock()
	f := r.decos[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown decorator: %s", name)
	}
	return f(params)
}
