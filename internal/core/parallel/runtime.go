package parallel

import (
	"time"

	"github.com/zeusync/parallelbehavior/internal/core/behavior"
	"github.com/zeusync/parallelbehavior/internal/core/blackboard"
)

// Runtime is the record for one running parallel behavior: the id it was
// registered under and the handles it owns.
type Runtime struct {
	ID         string
	Instance   *behavior.Instance
	Blackboard blackboard.Blackboard
	StartedAt  time.Time
}

// destroy releases both handles. Nil-tolerant and idempotent so teardown
// can run against partially constructed records.
func (r *Runtime) destroy() {
	if r.Instance != nil {
		r.Instance.Stop()
		r.Instance.Destroy()
	}
	if r.Blackboard != nil {
		r.Blackboard.Clear()
	}
}

// Info is a point-in-time snapshot of a Runtime for inspection tooling.
type Info struct {
	ID         string         `json:"id"`
	Tree       string         `json:"tree"`
	State      string         `json:"state"`
	LastStatus string         `json:"last_status"`
	Ticks      int64          `json:"ticks"`
	StartedAt  time.Time      `json:"started_at"`
	Blackboard map[string]any `json:"blackboard,omitempty"`
}

func (r *Runtime) info() Info {
	info := Info{
		ID:        r.ID,
		StartedAt: r.StartedAt,
	}
	if r.Instance != nil {
		info.Tree = r.Instance.Tree().Name()
		info.State = r.Instance.State().String()
		info.LastStatus = r.Instance.LastStatus().String()
		info.Ticks = r.Instance.Ticks()
	}
	if r.Blackboard != nil {
		info.Blackboard = r.Blackboard.Snapshot()
	}
	return info
}
