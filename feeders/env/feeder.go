// Package env provides a feeder reading process environment variables.
// The environment is captured once, when the feeder is created.
package env

import (
	"os"

	"github.com/goliatone/go-cfgtree/feeders/kv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultName = "env"
	// flatDelim cannot occur in a variable name, so flat keys are never split.
	flatDelim = "\x00"
)

var DefaultNestingDelimiter = "__"

type Option func(*provider, *[]kv.Option)

// WithPrefix keeps only variables starting with prefix.
func WithPrefix(prefix string) Option {
	return func(p *provider, _ *[]kv.Option) {
		p.prefix = prefix
	}
}

// WithNesting switches to nested keys: the prefix is stripped, names are
// lowercased and split on delim. Matches then use dotted paths such as
// "database.dsn".
func WithNesting(delim string) Option {
	return func(p *provider, _ *[]kv.Option) {
		p.nested = true
		p.delim = delim
	}
}

// WithEnviron replaces os.Environ as the source of KEY=value pairs.
func WithEnviron(environ func() []string) Option {
	return func(p *provider, _ *[]kv.Option) {
		if environ != nil {
			p.environ = environ
		}
	}
}

// WithFeederOptions forwards options to the underlying kv feeder.
func WithFeederOptions(opts ...kv.Option) Option {
	return func(_ *provider, kvOpts *[]kv.Option) {
		*kvOpts = append(*kvOpts, opts...)
	}
}

type Feeder struct {
	*kv.Feeder
}

// New snapshots the environment into a feeder called name.
func New(name string, opts ...Option) (*Feeder, error) {
	p := &provider{environ: os.Environ}
	var kvOpts []kv.Option
	for _, opt := range opts {
		if opt != nil {
			opt(p, &kvOpts)
		}
	}

	delim := flatDelim
	if p.nested {
		delim = "."
	}

	f, err := kv.New(name, delim, func(k *koanf.Koanf) error {
		return k.Load(p, json.Parser())
	}, kvOpts...)
	if err != nil {
		return nil, err
	}
	return &Feeder{Feeder: f}, nil
}

// Default is New(DefaultName).
func Default(opts ...Option) (*Feeder, error) {
	return New(DefaultName, opts...)
}
