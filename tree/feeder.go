package tree

import "fmt"

// Feeder is a named source of values. Resolve is called once per node during
// population and must be a no-op for nodes holding no matches for the feeder.
type Feeder interface {
	Name() string
	Resolve(node Node) error
}

// MissPolicy decides what happens when a match has no backing entry.
type MissPolicy int

const (
	// MissSkip ignores the match.
	MissSkip MissPolicy = iota
	// MissFail aborts population with ErrMissingMatch.
	MissFail
)

func (p MissPolicy) String() string {
	switch p {
	case MissSkip:
		return "skip"
	case MissFail:
		return "fail"
	default:
		return fmt.Sprintf("MissPolicy(%d)", int(p))
	}
}

// AppendPolicy decides whether a feeder contributes to a node at all. It is
// evaluated once per node, before the feeder appends anything.
type AppendPolicy int

const (
	// AppendAlways appends every hit.
	AppendAlways AppendPolicy = iota
	// AppendIfEmpty appends only when the node holds no value yet.
	AppendIfEmpty
	// AppendIfNoneFromFeeder appends only when the feeder has not contributed yet.
	AppendIfNoneFromFeeder
)

func (p AppendPolicy) String() string {
	switch p {
	case AppendAlways:
		return "always"
	case AppendIfEmpty:
		return "if-empty"
	case AppendIfNoneFromFeeder:
		return "if-none-from-feeder"
	default:
		return fmt.Sprintf("AppendPolicy(%d)", int(p))
	}
}

type ResolveOptions struct {
	Miss   MissPolicy
	Append AppendPolicy
}

func (o ResolveOptions) allows(node Node, feeder string) bool {
	switch o.Append {
	case AppendIfEmpty:
		return len(node.Values()) == 0
	case AppendIfNoneFromFeeder:
		for _, v := range node.Values() {
			if v.Feeder() == feeder {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// LookupFunc returns the raw values stored behind m inside a feeder.
// ok is false when the feeder has no entry for it.
type LookupFunc func(m Match) (values []string, ok bool)

// Resolve implements the common part of Feeder.Resolve: it walks the matches
// node holds for feeder in registration order and appends whatever lookup
// returns.
func Resolve(node Node, feeder string, lookup LookupFunc, opts ResolveOptions) error {
	fm, ok := node.FeederMatches(feeder)
	if !ok || fm.Len() == 0 {
		return nil
	}
	if !opts.allows(node, feeder) {
		return nil
	}
	for _, m := range fm.Matches() {
		values, ok := lookup(m)
		if !ok {
			if opts.Miss == MissFail {
				return &RunError{
					Feeder: feeder,
					Err:    fmt.Errorf("%w %q", ErrMissingMatch, m.Label()),
				}
			}
			continue
		}
		for _, v := range values {
			node.Append(feeder, v)
		}
	}
	return nil
}

type feederFunc struct {
	name string
	fn   func(Node) error
}

// FeederFunc adapts fn into a Feeder called name.
func FeederFunc(name string, fn func(Node) error) Feeder {
	return &feederFunc{name: name, fn: fn}
}

func (f *feederFunc) Name() string {
	return f.name
}

func (f *feederFunc) Resolve(node Node) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(node)
}
