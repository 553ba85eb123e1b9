package tree

// Populate walks the tree under root depth-first, pre-order, and calls
// f.Resolve once for every config and field. Groups are not visited.
// The first failure stops the walk and is returned as a *RunError carrying
// the path from root to the failing node.
func Populate(f Feeder, root *Config) error {
	if root == nil {
		return newSetupError(ErrNoRoot, "NO_ROOT", "no root config set", nil)
	}
	return visitConfig(f, root, nil)
}

func visitConfig(f Feeder, c *Config, ancestors []*Config) error {
	if err := resolve(f, c, ancestors); err != nil {
		return err
	}

	// full slice expression so siblings never share a backing array
	path := append(ancestors[:len(ancestors):len(ancestors)], c)
	for _, el := range c.Elements() {
		switch child := el.(type) {
		case *Config:
			if err := visitConfig(f, child, path); err != nil {
				return err
			}
		case *Field:
			if err := resolve(f, child, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolve(f Feeder, el Element, ancestors []*Config) error {
	if err := f.Resolve(el); err != nil {
		return wrapRunError(err, f.Name(), el, ancestors)
	}
	return nil
}
