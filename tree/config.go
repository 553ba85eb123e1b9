package tree

import (
	stderrors "errors"
)

// Config is an inner node. It owns its elements and lists the groups used to
// present them.
type Config struct {
	node
	elements []Element
	groups   []*Group
	errs     []error
	frozen   bool
}

func NewConfig(name string, opts ...NodeOption) *Config {
	c := &Config{}
	c.init(name, opts...)
	return c
}

func (*Config) element() {}

// AddConfig embeds child. Composition mistakes are kept on c and reported by
// Builder.Build.
func (c *Config) AddConfig(child *Config) *Config {
	if child == nil {
		c.fail("NIL_CONFIG", "cannot add a nil config", nil)
		return c
	}
	if child == c || child.contains(c) {
		c.fail("CYCLIC_CONFIG", "config cannot embed itself",
			map[string]any{"config": child.name})
		return c
	}
	c.add(child, &child.node)
	return c
}

func (c *Config) AddField(field *Field) *Config {
	if field == nil {
		c.fail("NIL_FIELD", "cannot add a nil field", nil)
		return c
	}
	c.add(field, &field.node)
	return c
}

// AddGroup registers a presentation group. Its members must be elements of
// the same tree.
func (c *Config) AddGroup(group *Group) *Config {
	if group == nil {
		c.fail("NIL_GROUP", "cannot add a nil group", nil)
		return c
	}
	if c.isFrozen() {
		c.fail("FROZEN_TREE", "cannot add a group after the tree was built",
			map[string]any{"group": group.Name()})
		return c
	}
	c.mu.Lock()
	c.groups = append(c.groups, group)
	c.mu.Unlock()
	return c
}

func (c *Config) add(el Element, n *node) {
	if c.isFrozen() {
		c.fail("FROZEN_TREE", "cannot add an element after the tree was built",
			map[string]any{"element": el.Name()})
		return
	}
	if _, exists := c.Element(el.Name()); exists {
		c.fail("DUPLICATE_ELEMENT", "config already has an element with this name",
			map[string]any{"element": el.Name()})
		return
	}
	if !n.attach() {
		c.fail("ELEMENT_HAS_PARENT", "element already belongs to another config",
			map[string]any{"element": el.Name()})
		return
	}
	c.mu.Lock()
	c.elements = append(c.elements, el)
	c.mu.Unlock()
}

func (c *Config) fail(code, msg string, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["config"] = c.name
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, newSetupError(ErrInvalidTree, code, msg, meta))
}

// Err returns the composition errors recorded on c, not on its children.
func (c *Config) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return stderrors.Join(c.errs...)
}

// Elements returns the children in declaration order.
func (c *Config) Elements() []Element {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Element(nil), c.elements...)
}

func (c *Config) Groups() []*Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Group(nil), c.groups...)
}

// Element returns the direct child called name.
func (c *Config) Element(name string) (Element, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, el := range c.elements {
		if el.Name() == name {
			return el, true
		}
	}
	return nil, false
}

// Config returns the direct child config called name.
func (c *Config) Config(name string) (*Config, bool) {
	el, ok := c.Element(name)
	if !ok {
		return nil, false
	}
	child, ok := el.(*Config)
	return child, ok
}

// Field returns the direct child field called name.
func (c *Config) Field(name string) (*Field, bool) {
	el, ok := c.Element(name)
	if !ok {
		return nil, false
	}
	f, ok := el.(*Field)
	return f, ok
}

func (c *Config) contains(target *Config) bool {
	for _, el := range c.Elements() {
		child, ok := el.(*Config)
		if !ok {
			continue
		}
		if child == target || child.contains(target) {
			return true
		}
	}
	return false
}

func (c *Config) isFrozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

func (c *Config) freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
	for _, el := range c.Elements() {
		if child, ok := el.(*Config); ok {
			child.freeze()
		}
	}
}
