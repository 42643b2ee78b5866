package blackboard

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestShardedBasicOperations(t *testing.T) {
	bb := New()

	bb.Set("test_key", "test_value")

	value, exists := bb.Get("test_key")
	if !exists {
		t.Error("Expected key to exist")
	}
	if value != "test_value" {
		t.Errorf("Expected 'test_value', got %v", value)
	}

	if !bb.Has("test_key") {
		t.Error("Expected Has to report the key")
	}

	bb.Delete("test_key")
	if bb.Has("test_key") {
		t.Error("Expected key to be deleted")
	}
}

func TestShardedTypedGetters(t *testing.T) {
	bb := New()

	bb.Set("int_key", 42)
	intVal, ok := bb.GetInt("int_key")
	if !ok || intVal != 42 {
		t.Errorf("Expected 42, got %d", intVal)
	}

	// YAML decodes numbers as int or float64; both must narrow.
	bb.Set("float_key", 1.5)
	floatVal, ok := bb.GetFloat("float_key")
	if !ok || floatVal != 1.5 {
		t.Errorf("Expected 1.5, got %f", floatVal)
	}
	intFromFloat, ok := bb.GetInt("float_key")
	if !ok || intFromFloat != 1 {
		t.Errorf("Expected 1, got %d", intFromFloat)
	}

	bb.Set("bool_key", true)
	boolVal, ok := bb.GetBool("bool_key")
	if !ok || !boolVal {
		t.Errorf("Expected true, got %v", boolVal)
	}

	bb.Set("str_key", "hello")
	strVal, ok := bb.GetString("str_key")
	if !ok || strVal != "hello" {
		t.Errorf("Expected 'hello', got %s", strVal)
	}

	if _, ok = bb.GetInt("str_key"); ok {
		t.Error("Expected type mismatch to fail")
	}
	if _, ok = bb.GetString("missing"); ok {
		t.Error("Expected missing key to fail")
	}
}

func TestShardedVersionAndUpdated(t *testing.T) {
	bb := New()

	if bb.Version() != 0 {
		t.Errorf("Expected version 0, got %d", bb.Version())
	}

	bb.Set("a", 1)
	bb.Set("b", 2)
	if bb.Version() != 2 {
		t.Errorf("Expected version 2, got %d", bb.Version())
	}

	if _, ok := bb.LastUpdated("a"); !ok {
		t.Error("Expected last-updated for key a")
	}
	if _, ok := bb.LastUpdated("missing"); ok {
		t.Error("Expected no last-updated for missing key")
	}

	// deleting a missing key is not a mutation
	v := bb.Version()
	bb.Delete("missing")
	if bb.Version() != v {
		t.Errorf("Expected version unchanged, got %d", bb.Version())
	}
}

func TestShardedKeysClearSnapshot(t *testing.T) {
	bb := NewWithShards(4)

	bb.Set("b", 2)
	bb.Set("a", 1)
	bb.Set("c", 3)

	keys := bb.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("Expected sorted keys [a b c], got %v", keys)
	}

	snap := bb.Snapshot()
	if len(snap) != 3 || snap["b"] != 2 {
		t.Errorf("Unexpected snapshot: %v", snap)
	}
	// snapshot is a copy
	snap["b"] = 99
	if v, _ := bb.Get("b"); v != 2 {
		t.Error("Snapshot mutation leaked into the store")
	}

	bb.Clear()
	if len(bb.Keys()) != 0 {
		t.Error("Expected empty store after Clear")
	}
}

func TestShardedConcurrentAccess(t *testing.T) {
	bb := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			keys := []string{"alpha", "bravo", "charlie", "delta"}
			for j := 0; j < 1000; j++ {
				k := keys[(n+j)%len(keys)]
				bb.Set(k, j)
				bb.Get(k)
				bb.Keys()
			}
		}(i)
	}
	wg.Wait()

	if len(bb.Keys()) != 4 {
		t.Errorf("Expected 4 keys, got %d", len(bb.Keys()))
	}
}

func TestToJSON(t *testing.T) {
	bb := New()
	bb.Set("test_key", "test_value")

	data, err := ToJSON(bb)
	if err != nil {
		t.Fatalf("Failed to export to JSON: %v", err)
	}

	var export Export
	if err = json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}
	if export.Data["test_key"] != "test_value" {
		t.Error("JSON export missing data")
	}
	if export.Version != 1 {
		t.Errorf("Expected version 1, got %d", export.Version)
	}

	if _, err = ToJSON(nil); err == nil {
		t.Error("Expected error for nil blackboard")
	}
}
