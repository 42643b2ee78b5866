package behavior

import (
	"fmt"
	"reflect"
	"time"
)

// NewDefaultRegistry returns a registry pre-populated with the builtin
// actions, conditions and decorators used by tree definitions.
func NewDefaultRegistry() Registry {
	r := NewRegistry()

	r.RegisterAction("set-key", newSetKeyAction)
	r.RegisterAction("delete-key", newDeleteKeyAction)
	r.RegisterAction("increment", newIncrementAction)
	r.RegisterAction("wait", newWaitAction)

	r.RegisterCondition("has-key", newHasKeyCondition)
	r.RegisterCondition("key-equals", newKeyEqualsCondition)
	r.RegisterCondition("key-above", newKeyAboveCondition)

	r.RegisterDecorator("inverter", func(params map[string]any) (Decorator, error) {
		return NewInverter(stringParam(params, "name", "inverter")), nil
	})
	r.RegisterDecorator("succeeder", func(params map[string]any) (Decorator, error) {
		return NewSucceeder(stringParam(params, "name", "succeeder")), nil
	})
	r.RegisterDecorator("repeat", func(params map[string]any) (Decorator, error) {
		times := intParam(params, "times", 1)
		if times <= 0 {
			return nil, fmt.Errorf("repeat: times must be positive, got %d", times)
		}
		return NewRepeat(stringParam(params, "name", "repeat"), times, boolParam(params, "stop_on_failure", false)), nil
	})
	r.RegisterDecorator("cooldown", func(params map[string]any) (Decorator, error) {
		every, err := durationParam(params, "every")
		if err != nil {
			return nil, fmt.Errorf("cooldown: %w", err)
		}
		return NewCooldown(stringParam(params, "name", "cooldown"), every), nil
	})

	return r
}

func newSetKeyAction(params map[string]any) (Action, error) {
	key := stringParam(params, "key", "")
	if key == "" {
		return nil, fmt.Errorf("set-key: missing key")
	}
	value := params["value"]
	return NewActionFunc("set-key:"+key, func(t TickContext) (Status, error) {
		if t.BB == nil {
			return StatusFailure, errNoBlackboard
		}
		t.BB.Set(key, value)
		return StatusSuccess, nil
	}), nil
}

func newDeleteKeyAction(params map[string]any) (Action, error) {
	key := stringParam(params, "key", "")
	if key == "" {
		return nil, fmt.Errorf("delete-key: missing key")
	}
	return NewActionFunc("delete-key:"+key, func(t TickContext) (Status, error) {
		if t.BB == nil {
			return StatusFailure, errNoBlackboard
		}
		t.BB.Delete(key)
		return StatusSuccess, nil
	}), nil
}

func newIncrementAction(params map[string]any) (Action, error) {
	key := stringParam(params, "key", "")
	if key == "" {
		return nil, fmt.Errorf("increment: missing key")
	}
	step := floatParam(params, "step", 1)
	return NewActionFunc("increment:"+key, func(t TickContext) (Status, error) {
		if t.BB == nil {
			return StatusFailure, errNoBlackboard
		}
		cur, _ := t.BB.GetFloat(key)
		t.BB.Set(key, cur+step)
		return StatusSuccess, nil
	}), nil
}

// newWaitAction returns Running until the configured duration has elapsed
// since the first tick, then Success. The start time is kept in the
// blackboard under a scratch key so the node stays stateless; the key
// defaults to the node name so several wait nodes in one tree do not
// share timers.
func newWaitAction(params map[string]any) (Action, error) {
	d, err := durationParam(params, "duration")
	if err != nil {
		return nil, fmt.Errorf("wait: %w", err)
	}
	key := stringParam(params, "key", stringParam(params, "name", "wait")+".start")
	return NewActionFunc("wait:"+key, func(t TickContext) (Status, error) {
		if t.BB == nil {
			return StatusFailure, errNoBlackboard
		}
		now := t.Clock()
		v, ok := t.BB.Get(key)
		if !ok {
			t.BB.Set(key, now)
			return StatusRunning, nil
		}
		start, _ := v.(time.Time)
		if now.Sub(start) < d {
			return StatusRunning, nil
		}
		t.BB.Delete(key)
		return StatusSuccess, nil
	}), nil
}

func newHasKeyCondition(params map[string]any) (Condition, error) {
	key := stringParam(params, "key", "")
	if key == "" {
		return nil, fmt.Errorf("has-key: missing key")
	}
	return NewConditionFunc("has-key:"+key, func(t TickContext) (bool, error) {
		if t.BB == nil {
			return false, errNoBlackboard
		}
		return t.BB.Has(key), nil
	}), nil
}

func newKeyEqualsCondition(params map[string]any) (Condition, error) {
	key := stringParam(params, "key", "")
	if key == "" {
		return nil, fmt.Errorf("key-equals: missing key")
	}
	want := params["value"]
	return NewConditionFunc("key-equals:"+key, func(t TickContext) (bool, error) {
		if t.BB == nil {
			return false, errNoBlackboard
		}
		got, ok := t.BB.Get(key)
		// DeepEqual: decoded params can hold slices and maps, which
		// panic under ==
		return ok && reflect.DeepEqual(got, want), nil
	}), nil
}

func newKeyAboveCondition(params map[string]any) (Condition, error) {
	key := stringParam(params, "key", "")
	if key == "" {
		return nil, fmt.Errorf("key-above: missing key")
	}
	threshold := floatParam(params, "threshold", 0)
	return NewConditionFunc("key-above:"+key, func(t TickContext) (bool, error) {
		if t.BB == nil {
			return false, errNoBlackboard
		}
		v, ok := t.BB.GetFloat(key)
		return ok && v > threshold, nil
	}), nil
}

// Parameter extraction helpers.

func stringParam(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, is := v.(string); is {
			return s
		}
	}
	return def
}

func intParam(params map[string]any, key string, def int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

func floatParam(params map[string]any, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

func boolParam(params map[string]any, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, is := v.(bool); is {
			return b
		}
	}
	return def
}

func durationParam(params map[string]any, key string) (time.Duration, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return parsed, nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	case float64:
		return time.Duration(d) * time.Millisecond, nil
	default:
		return 0, fmt.Errorf("invalid %s type %T", key, v)
	}
}
