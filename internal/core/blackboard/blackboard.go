package blackboard

import (
	"encoding/json"
	"fmt"
	"time"
)

// KeySelf is the reserved key holding a reference to the actor the
// owning behavior instance is controlling.
const KeySelf = "self"

// Blackboard is an isolated, thread-safe working-memory store bound to a
// single behavior tree instance. Keys are untyped on write and narrowed
// through the typed getters on read.
type Blackboard interface {
	// Get retrieves a value by key. Returns (nil, false) if absent.
	Get(key string) (any, bool)
	// Set assigns a value by key.
	Set(key string, value any)
	// Delete removes a value by key.
	Delete(key string)
	// Has reports whether a key exists.
	Has(key string) bool
	// Keys returns a sorted snapshot of existing keys.
	Keys() []string
	// Clear removes all data.
	Clear()

	GetString(key string) (string, bool)
	GetInt(key string) (int, bool)
	GetFloat(key string) (float64, bool)
	GetBool(key string) (bool, bool)

	// Version returns a counter incremented on every mutation.
	Version() int64
	// LastUpdated returns the last mutation time for a key.
	LastUpdated(key string) (time.Time, bool)

	// Snapshot returns a copy of the current contents.
	Snapshot() map[string]any
}

// Export is the JSON shape produced by ToJSON.
type Export struct {
	Data    map[string]any `json:"data"`
	Version int64          `json:"version"`
}

// ToJSON serializes a blackboard snapshot for inspection tooling.
func ToJSON(bb Blackboard) ([]byte, error) {
	if bb == nil {
		return nil, fmt.Errorf("blackboard is nil")
	}
	return json.Marshal(Export{Data: bb.Snapshot(), Version: bb.Version()})
}
