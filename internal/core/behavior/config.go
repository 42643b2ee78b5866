package behavior

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Definition describes a single tree in JSON or YAML: a flat node graph
// referenced by name from the root. It is instantiated through a
// Registry into a Tree asset.
type Definition struct {
	Root       string             `json:"root" yaml:"root"`
	Blackboard *BlackboardDef     `json:"blackboard,omitempty" yaml:"blackboard,omitempty"`
	Nodes      map[string]NodeDef `json:"nodes" yaml:"nodes"`
}

// BlackboardDef declares the initial working memory of a tree. A tree
// whose definition has no blackboard section runs without one.
type BlackboardDef struct {
	Defaults map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

type NodeDef struct {
	Type      string         `json:"type" yaml:"type"`
	Children  []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Child     string         `json:"child,omitempty" yaml:"child,omitempty"`
	Action    string         `json:"action,omitempty" yaml:"action,omitempty"`
	Condition string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Decorator string         `json:"decorator,omitempty" yaml:"decorator,omitempty"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// LibraryFile is the on-disk shape of a tree library.
type LibraryFile struct {
	Trees map[string]Definition `json:"trees" yaml:"trees"`
}

// Build constructs the tree asset from the definition using a registry.
func (d *Definition) Build(name string, reg Registry) (*Tree, error) {
	if d.Root == "" {
		return NewTree(name, nil, blackboardSpec(d.Blackboard)), nil
	}
	// create node instances on demand with memoization
	created := make(map[string]Node)
	building := make(map[string]bool)
	var buildNode func(nodeName string) (Node, error)
	buildNode = func(nodeName string) (Node, error) {
		if n, ok := created[nodeName]; ok {
			return n, nil
		}
		if building[nodeName] {
			return nil, fmt.Errorf("node cycle at: %s", nodeName)
		}
		nd, ok := d.Nodes[nodeName]
		if !ok {
			return nil, fmt.Errorf("unknown node in definition: %s", nodeName)
		}
		building[nodeName] = true
		defer delete(building, nodeName)
		switch nd.Type {
		case "Sequence", "sequence":
			seq := NewSequence(nodeName)
			children, err := buildChildren(nd.Children, buildNode)
			if err != nil {
				return nil, err
			}
			seq.SetChildren(children...)
			created[nodeName] = seq
			return seq, nil
		case "Selector", "selector":
			sel := NewSelector(nodeName)
			children, err := buildChildren(nd.Children, buildNode)
			if err != nil {
				return nil, err
			}
			sel.SetChildren(children...)
			created[nodeName] = sel
			return sel, nil
		case "Parallel", "parallel":
			policy := ParallelRequireAllSuccess
			if s, is := nd.Params["policy"].(string); is && (s == "one" || s == "any") {
				policy = ParallelRequireOneSuccess
			}
			par := NewParallel(nodeName, policy)
			children, err := buildChildren(nd.Children, buildNode)
			if err != nil {
				return nil, err
			}
			par.SetChildren(children...)
			created[nodeName] = par
			return par, nil
		case "Decorator", "decorator":
			if nd.Decorator == "" {
				return nil, fmt.Errorf("decorator node %s missing decorator name", nodeName)
			}
			dec, err := reg.NewDecorator(nd.Decorator, withName(nd.Params, nodeName))
			if err != nil {
				return nil, err
			}
			if nd.Child == "" {
				return nil, fmt.Errorf("decorator %s requires child", nodeName)
			}
			ch, err := buildNode(nd.Child)
			if err != nil {
				return nil, err
			}
			dec.SetChild(ch)
			created[nodeName] = dec
			return dec, nil
		case "Action", "action":
			a, err := reg.NewAction(nd.Action, withName(nd.Params, nodeName))
			if err != nil {
				return nil, err
			}
			created[nodeName] = a
			return a, nil
		case "Condition", "condition":
			cnd, err := reg.NewCondition(nd.Condition, withName(nd.Params, nodeName))
			if err != nil {
				return nil, err
			}
			created[nodeName] = cnd
			return cnd, nil
		default:
			return nil, fmt.Errorf("unsupported node type: %s", nd.Type)
		}
	}
	root, err := buildNode(d.Root)
	if err != nil {
		return nil, err
	}
	return NewTree(name, root, blackboardSpec(d.Blackboard)), nil
}

func buildChildren(names []string, buildNode func(string) (Node, error)) ([]Node, error) {
	children := make([]Node, 0, len(names))
	for _, chname := range names {
		ch, err := buildNode(chname)
		if err != nil {
			return nil, err
		}
		children = append(children, ch)
	}
	return children, nil
}

func withName(params map[string]any, name string) map[string]any {
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["name"] = name
	return out
}

func blackboardSpec(def *BlackboardDef) *BlackboardSpec {
	if def == nil {
		return nil
	}
	return &BlackboardSpec{Defaults: def.Defaults}
}

// Library holds named tree assets the manager resolves setups against.
type Library struct {
	mu    sync.RWMutex
	trees map[string]*Tree
}

func NewLibrary() *Library {
	return &Library{trees: make(map[string]*Tree)}
}

// Add registers a tree asset, replacing any previous one with that name.
func (l *Library) Add(tree *Tree) {
	l.mu.Lock()
	l.trees[tree.Name()] = tree
	l.mu.Unlock()
}

// Get retrieves a tree asset by name.
func (l *Library) Get(name string) (*Tree, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.trees[name]
	return t, ok
}

// Names returns the sorted names of all registered assets.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.trees))
	for name := range l.trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadLibraryYAML reads a tree library file in YAML and builds every
// definition through the registry.
func LoadLibraryYAML(r io.Reader, reg Registry) (*Library, error) {
	var file LibraryFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode tree library: %w", err)
	}
	return buildLibrary(&file, reg)
}

// LoadLibraryJSON reads a tree library file in JSON.
func LoadLibraryJSON(r io.Reader, reg Registry) (*Library, error) {
	var file LibraryFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode tree library: %w", err)
	}
	return buildLibrary(&file, reg)
}

func buildLibrary(file *LibraryFile, reg Registry) (*Library, error) {
	lib := NewLibrary()
	for name, def := range file.Trees {
		tree, err := def.Build(name, reg)
		if err != nil {
			return nil, fmt.Errorf("tree %s: %w", name, err)
		}
		lib.Add(tree)
	}
	return lib, nil
}
