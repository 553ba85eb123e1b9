package tree

import "sync"

// Node is the capability set shared by configs and fields.
type Node interface {
	Name() string
	Description() string
	Values() []Value
	// Append is the only mutation a feeder performs on a node.
	Append(feeder, raw string)
	AddFeederMatches(feeder string, matches *FeederMatches) error
	FeederMatches(feeder string) (*FeederMatches, bool)
	AllFeederMatches() []*FeederMatches
}

// Element is either a *Config or a *Field.
type Element interface {
	Node
	element()
}

var (
	_ Element = (*Config)(nil)
	_ Element = (*Field)(nil)
)

type NodeOption func(*node)

func WithDescription(description string) NodeOption {
	return func(n *node) {
		n.description = description
	}
}

type node struct {
	mu          sync.RWMutex
	name        string
	description string
	values      []Value
	bindings    []*FeederMatches
	index       map[string]int
	attached    bool
}

func (n *node) init(name string, opts ...NodeOption) {
	n.name = name
	n.index = map[string]int{}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
}

// attach marks the node as owned by a config. It fails if it already is.
func (n *node) attach() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.attached {
		return false
	}
	n.attached = true
	return true
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Description() string {
	return n.description
}

func (n *node) Values() []Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]Value(nil), n.values...)
}

func (n *node) Append(feeder, raw string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.values = append(n.values, NewValue(feeder, raw))
}

func (n *node) AddFeederMatches(feeder string, matches *FeederMatches) error {
	if matches == nil {
		matches = &FeederMatches{feeder: feeder}
	}
	if matches.feeder != "" && matches.feeder != feeder {
		return newSetupError(ErrMixedFeederMatches, "MIXED_FEEDER_MATCHES",
			"matches were minted by another feeder",
			map[string]any{"node": n.name, "feeder": feeder, "minted_by": matches.feeder})
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.index[feeder]; ok {
		return newSetupError(ErrDuplicateFeederBinding, "DUPLICATE_FEEDER_BINDING",
			"node already has matches for feeder",
			map[string]any{"node": n.name, "feeder": feeder})
	}
	if matches.feeder == "" {
		matches.feeder = feeder
	}
	n.index[feeder] = len(n.bindings)
	n.bindings = append(n.bindings, matches)
	return nil
}

func (n *node) FeederMatches(feeder string) (*FeederMatches, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	i, ok := n.index[feeder]
	if !ok {
		return nil, false
	}
	return n.bindings[i], true
}

// AllFeederMatches returns bindings in the order they were added.
func (n *node) AllFeederMatches() []*FeederMatches {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*FeederMatches(nil), n.bindings...)
}

// Field is a leaf of the tree.
type Field struct {
	node
}

func NewField(name string, opts ...NodeOption) *Field {
	f := &Field{}
	f.init(name, opts...)
	return f
}

func (*Field) element() {}
