package tree

import (
	stderrors "errors"

	"github.com/goliatone/go-cfgtree/logger"
)

type BuilderOption func(*Builder)

func WithLogger(l logger.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder collects feeders and a root config and runs population once.
type Builder struct {
	feeders []Feeder
	root    *Config
	logger  logger.Logger
	err     error
	built   bool
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		logger: logger.NewDefaultLogger("cfgtree"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// AddFeeder registers f. Feeders resolve in registration order.
func (b *Builder) AddFeeder(f Feeder) error {
	if f == nil {
		return newSetupError(ErrInvalidTree, "NIL_FEEDER", "feeder cannot be nil", nil)
	}
	for _, existing := range b.feeders {
		if existing.Name() == f.Name() {
			return newSetupError(ErrDuplicateFeederName, "DUPLICATE_FEEDER_NAME",
				"feeder already exists", map[string]any{"feeder": f.Name()})
		}
	}
	b.feeders = append(b.feeders, f)
	return nil
}

// WithFeeder is the chainable form of AddFeeder. The first error is
// returned by Build.
func (b *Builder) WithFeeder(feeders ...Feeder) *Builder {
	for _, f := range feeders {
		if err := b.AddFeeder(f); err != nil && b.err == nil {
			b.err = err
		}
	}
	return b
}

func (b *Builder) SetRoot(root *Config) *Builder {
	b.root = root
	return b
}

// Feeders returns the registered feeders in resolution order.
func (b *Builder) Feeders() []Feeder {
	return append([]Feeder(nil), b.feeders...)
}

// Build validates the tree, freezes it and populates it with every feeder in
// turn. Each feeder walks the whole tree before the next one starts.
func (b *Builder) Build() (*Configuration, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, newSetupError(ErrAlreadyBuilt, "ALREADY_BUILT", "builder was already built", nil)
	}
	if b.root == nil {
		return nil, newSetupError(ErrNoRoot, "NO_ROOT", "no configuration root set", nil)
	}
	if b.root.isFrozen() {
		return nil, newSetupError(ErrFrozen, "FROZEN_TREE", "root was already populated",
			map[string]any{"root": b.root.Name()})
	}
	if err := validate(b.root); err != nil {
		return nil, err
	}

	b.built = true
	b.root.freeze()

	for i, f := range b.feeders {
		b.logger.Debug("populating", "feeder", f.Name(), "index", i)
		if err := Populate(f, b.root); err != nil {
			b.logger.Error("population failed", "feeder", f.Name(), "error", err)
			return nil, err
		}
	}

	return &Configuration{root: b.root}, nil
}

// validate reports composition errors and group members that are not part of
// the tree.
func validate(root *Config) error {
	reachable := map[Element]bool{root: true}
	var errs []error
	var configs []*Config

	var collect func(c *Config)
	collect = func(c *Config) {
		configs = append(configs, c)
		if err := c.Err(); err != nil {
			errs = append(errs, err)
		}
		for _, el := range c.Elements() {
			reachable[el] = true
			if child, ok := el.(*Config); ok {
				collect(child)
			}
		}
	}
	collect(root)

	for _, c := range configs {
		for _, g := range c.Groups() {
			for _, m := range g.Members() {
				if reachable[m] {
					continue
				}
				errs = append(errs, newSetupError(ErrOrphanGroupMember, "ORPHAN_GROUP_MEMBER",
					"group member is not part of the tree",
					map[string]any{"config": c.Name(), "group": g.Name(), "member": m.Name()}))
			}
		}
	}

	return stderrors.Join(errs...)
}

// Configuration is the populated, read-only tree.
type Configuration struct {
	root *Config
}

func (c *Configuration) Root() *Config {
	return c.root
}

// Lookup follows names below the root. An empty path returns the root.
func (c *Configuration) Lookup(path ...string) (Element, bool) {
	var current Element = c.root
	for _, name := range path {
		cfg, ok := current.(*Config)
		if !ok {
			return nil, false
		}
		current, ok = cfg.Element(name)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Values returns the values of the element at path, or nil.
func (c *Configuration) Values(path ...string) []Value {
	el, ok := c.Lookup(path...)
	if !ok {
		return nil
	}
	return el.Values()
}

// WalkFunc receives the names from the root down to el, el included.
type WalkFunc func(path []string, el Element) error

// Walk visits every element pre-order, in declaration order. Returning an
// error stops the walk.
func (c *Configuration) Walk(fn WalkFunc) error {
	return walk(c.root, nil, fn)
}

func walk(el Element, parent []string, fn WalkFunc) error {
	path := append(parent[:len(parent):len(parent)], el.Name())
	if err := fn(path, el); err != nil {
		return err
	}
	cfg, ok := el.(*Config)
	if !ok {
		return nil
	}
	for _, child := range cfg.Elements() {
		if err := walk(child, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Configuration) Help() string {
	return Help(c.root)
}
