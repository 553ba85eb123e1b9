// Package kv implements a feeder backed by a koanf snapshot. Match labels are
// key paths in that snapshot. The env, file, flag and static feeders are all
// built on it.
package kv

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-cfgtree/logger"
	"github.com/goliatone/go-cfgtree/solvers"
	"github.com/goliatone/go-cfgtree/tree"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/v2"
)

type Option func(*Feeder)

func WithMissPolicy(p tree.MissPolicy) Option {
	return func(f *Feeder) {
		f.opts.Miss = p
	}
}

func WithAppendPolicy(p tree.AppendPolicy) Option {
	return func(f *Feeder) {
		f.opts.Append = p
	}
}

// WithSolvers rewrites the snapshot once, right after it was loaded.
func WithSolvers(s ...solvers.Solver) Option {
	return func(f *Feeder) {
		f.solvers = append(f.solvers, s...)
	}
}

// WithSolverPasses sets how many times solvers may run (minimum 1).
func WithSolverPasses(passes int) Option {
	return func(f *Feeder) {
		if passes < 1 {
			passes = 1
		}
		f.passes = passes
	}
}

func WithLogger(l logger.Logger) Option {
	return func(f *Feeder) {
		if l != nil {
			f.logger = l
		}
	}
}

// Feeder resolves matches against a koanf instance loaded once.
type Feeder struct {
	*tree.Registry
	k       *koanf.Koanf
	opts    tree.ResolveOptions
	solvers []solvers.Solver
	passes  int
	logger  logger.Logger
}

// Loader fills k. It runs once, when the feeder is created.
type Loader func(k *koanf.Koanf) error

// New creates a feeder called name whose snapshot uses delim to split key
// paths and is filled by load.
func New(name, delim string, load Loader, opts ...Option) (*Feeder, error) {
	f := &Feeder{
		Registry: tree.NewRegistry(name),
		k:        koanf.New(delim),
		passes:   1,
		logger:   logger.NewDefaultLogger("feeder:" + name),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	if load != nil {
		if err := load(f.k); err != nil {
			return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load feeder snapshot").
				WithTextCode("FEEDER_LOAD_FAILED").
				WithMetadata(map[string]any{"feeder": name})
		}
	}

	if err := solvers.Run(f.k, f.passes, f.solvers...); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to solve feeder snapshot").
			WithTextCode("FEEDER_SOLVE_FAILED").
			WithMetadata(map[string]any{"feeder": name})
	}

	f.logger.Debug("snapshot loaded", "keys", len(f.k.Keys()))
	return f, nil
}

// Koanf exposes the snapshot. It must be treated as read-only.
func (f *Feeder) Koanf() *koanf.Koanf {
	return f.k
}

func (f *Feeder) Resolve(node tree.Node) error {
	return tree.Resolve(node, f.Name(), f.Lookup, f.opts)
}

// Lookup returns the values stored under the label of m. Lists yield one
// value per element; null values count as missing.
func (f *Feeder) Lookup(m tree.Match) ([]string, bool) {
	label, ok := f.Label(m.ID())
	if !ok || !f.k.Exists(label) {
		return nil, false
	}
	return Stringify(f.k.Get(label))
}

// Stringify turns a koanf value into raw strings.
func Stringify(v any) ([]string, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case []string:
		return append([]string(nil), val...), true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := scalar(item)
			if !ok {
				continue
			}
			out = append(out, s)
		}
		return out, true
	default:
		s, ok := scalar(val)
		if !ok {
			return nil, false
		}
		return []string{s}, true
	}
}

func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	case map[string]any:
		b, err := json.Parser().Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}
