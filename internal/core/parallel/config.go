package parallel

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Setup configures a single parallel behavior: which tree asset to run
// under which id, plus initial blackboard overrides.
type Setup struct {
	// ID is the unique identifier of the instance (used for lookup and
	// removal).
	ID string `json:"id" yaml:"id"`
	// Tree names a tree asset in the library.
	Tree string `json:"tree" yaml:"tree"`
	// Data seeds the instance blackboard on top of the tree defaults.
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Duration is a time.Duration that decodes from "250ms"-style YAML/JSON
// strings or from plain millisecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func parseDuration(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case string:
		return time.ParseDuration(v)
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v) * time.Millisecond, nil
	default:
		return 0, fmt.Errorf("invalid duration type %T", raw)
	}
}

// Config is the manager configuration: the behaviors started on Start
// and the interval of the built-in auto update loop.
type Config struct {
	Behaviors      []Setup  `json:"behaviors" yaml:"behaviors"`
	UpdateInterval Duration `json:"update_interval,omitempty" yaml:"update_interval,omitempty"`
}

// LoadConfigYAML reads a manager configuration in YAML.
func LoadConfigYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode manager config: %w", err)
	}
	return validateConfig(&c)
}

// LoadConfigJSON reads a manager configuration in JSON.
func LoadConfigJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode manager config: %w", err)
	}
	return validateConfig(&c)
}

func validateConfig(c *Config) (*Config, error) {
	seen := make(map[string]bool, len(c.Behaviors))
	for _, s := range c.Behaviors {
		if s.ID == "" {
			return nil, fmt.Errorf("behavior with empty id")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate behavior id: %s", s.ID)
		}
		seen[s.ID] = true
	}
	return c, nil
}
