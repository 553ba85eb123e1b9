package tree

import "sync"

// Group collects elements that live elsewhere in the tree so they can be
// presented together. It never owns its members.
type Group struct {
	mu          sync.RWMutex
	name        string
	description string
	members     []Element
}

func NewGroup(name string, opts ...NodeOption) *Group {
	var n node
	for _, opt := range opts {
		if opt != nil {
			opt(&n)
		}
	}
	return &Group{name: name, description: n.description}
}

func (g *Group) Name() string {
	return g.name
}

func (g *Group) Description() string {
	return g.description
}

// Add references members. Nil members are ignored.
func (g *Group) Add(members ...Element) *Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range members {
		if m != nil {
			g.members = append(g.members, m)
		}
	}
	return g
}

func (g *Group) Members() []Element {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Element(nil), g.members...)
}
