// Package flag provides a feeder reading POSIX command-line flags parsed by
// spf13/pflag. Match labels are flag names.
package flag

import (
	"github.com/goliatone/go-cfgtree/feeders/kv"
	"github.com/goliatone/go-cfgtree/tree"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const DefaultName = "flag"

// flatDelim keeps dotted flag names such as "database.dsn" as single keys.
const flatDelim = "\x00"

type options struct {
	defaults bool
	kv       []kv.Option
}

type Option func(*options)

// WithDefaults also feeds flags the user did not set, using their defaults.
func WithDefaults() Option {
	return func(o *options) {
		o.defaults = true
	}
}

func WithFeederOptions(opts ...kv.Option) Option {
	return func(o *options) {
		o.kv = append(o.kv, opts...)
	}
}

type Feeder struct {
	*kv.Feeder
	flags *pflag.FlagSet
}

// New snapshots flags, which must already be parsed, into a feeder called name.
// Slice flags contribute one value per element.
func New(name string, flags *pflag.FlagSet, opts ...Option) (*Feeder, error) {
	if flags == nil {
		return nil, errors.New("flagset cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_FLAGSET")
	}
	if !flags.Parsed() {
		return nil, errors.New("flagset must be parsed before creating the feeder", errors.CategoryBadInput).
			WithTextCode("UNPARSED_FLAGSET").
			WithMetadata(map[string]any{"feeder": name})
	}

	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	f, err := kv.New(name, flatDelim, func(k *koanf.Koanf) error {
		provider := posflag.ProviderWithFlag(flags, flatDelim, k, func(fl *pflag.Flag) (string, any) {
			if !fl.Changed && !o.defaults {
				return "", nil
			}
			return fl.Name, flagValue(fl)
		})
		return k.Load(provider, nil)
	}, o.kv...)
	if err != nil {
		return nil, err
	}
	return &Feeder{Feeder: f, flags: flags}, nil
}

// Parse parses args into flags and creates the feeder.
func Parse(name string, flags *pflag.FlagSet, args []string, opts ...Option) (*Feeder, error) {
	if flags == nil {
		return New(name, flags, opts...)
	}
	if err := flags.Parse(args); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse command-line flags").
			WithTextCode("FLAGS_PARSE_FAILED").
			WithMetadata(map[string]any{"feeder": name})
	}
	return New(name, flags, opts...)
}

func (f *Feeder) FlagSet() *pflag.FlagSet {
	return f.flags
}

// BindFlags is Bind restricted to flags defined in the set.
func (f *Feeder) BindFlags(node tree.Node, names ...string) error {
	for _, name := range names {
		if f.flags.Lookup(name) == nil {
			return errors.New("flag is not defined", errors.CategoryBadInput).
				WithTextCode("UNKNOWN_FLAG").
				WithMetadata(map[string]any{"feeder": f.Name(), "flag": name})
		}
	}
	return f.Bind(node, names...)
}

func flagValue(fl *pflag.Flag) any {
	if sv, ok := fl.Value.(pflag.SliceValue); ok {
		return sv.GetSlice()
	}
	return fl.Value.String()
}
