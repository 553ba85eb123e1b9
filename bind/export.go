package bind

import (
	"github.com/goliatone/go-cfgtree/tree"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Strategy picks which values of a node end up in an export.
type Strategy int

const (
	// Last keeps the value from the last feeder that contributed.
	Last Strategy = iota
	First
	// All keeps every value, as a []string.
	All
)

func (s Strategy) String() string {
	switch s {
	case Last:
		return "last"
	case First:
		return "first"
	case All:
		return "all"
	default:
		return "unknown"
	}
}

func (s Strategy) pick(values []tree.Value) any {
	switch s {
	case First:
		return values[0].Raw()
	case All:
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = v.Raw()
		}
		return out
	default:
		return values[len(values)-1].Raw()
	}
}

// Map exports the populated tree below its root as nested maps keyed by
// element name. Nodes without values are left out, and so are the values of
// a Config that has elements of its own.
func Map(cfg *tree.Configuration, s Strategy) map[string]any {
	out := map[string]any{}
	if cfg == nil || cfg.Root() == nil {
		return out
	}
	exportConfig(cfg.Root(), s, out)
	return out
}

func exportConfig(c *tree.Config, s Strategy, out map[string]any) {
	for _, el := range c.Elements() {
		switch e := el.(type) {
		case *tree.Field:
			if values := e.Values(); len(values) > 0 {
				out[e.Name()] = s.pick(values)
			}
		case *tree.Config:
			if len(e.Elements()) == 0 {
				if values := e.Values(); len(values) > 0 {
					out[e.Name()] = s.pick(values)
				}
				continue
			}
			child := map[string]any{}
			exportConfig(e, s, child)
			if len(child) > 0 {
				out[e.Name()] = child
			}
		}
	}
}

// Koanf loads Map(cfg, s) into a new koanf instance using "." as the key
// path delimiter.
func Koanf(cfg *tree.Configuration, s Strategy) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Map(cfg, s), ""), nil); err != nil {
		return nil, err
	}
	return k, nil
}
