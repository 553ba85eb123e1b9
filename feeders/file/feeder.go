// Package file provides a feeder reading a JSON, YAML or TOML file. Match
// labels are dotted key paths into the document.
package file

import (
	goerrors "errors"
	"io/fs"
	"os"
	"syscall"

	"github.com/goliatone/go-cfgtree/feeders/kv"
	"github.com/goliatone/go-errors"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const DefaultDelimiter = "."

type options struct {
	format   Format
	optional bool
	delim    string
	kv       []kv.Option
}

type Option func(*options)

// WithFormat overrides the format inferred from the file extension.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithOptional makes a missing file yield an empty feeder instead of an error.
func WithOptional() Option {
	return func(o *options) {
		o.optional = true
	}
}

// WithDelimiter sets the key path separator used by match labels.
func WithDelimiter(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

func WithFeederOptions(opts ...kv.Option) Option {
	return func(o *options) {
		o.kv = append(o.kv, opts...)
	}
}

type Feeder struct {
	*kv.Feeder
	path   string
	format Format
}

// New reads path into a feeder called name.
func New(name, path string, opts ...Option) (*Feeder, error) {
	o := &options{format: FormatFromPath(path), delim: DefaultDelimiter}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.format.Valid(); err != nil {
		return nil, err
	}

	parser := o.format.Parser()
	provider := kfile.Provider(path)

	f, err := kv.New(name, o.delim, func(k *koanf.Koanf) error {
		err := k.Load(provider, parser)
		if err == nil || (o.optional && isNotExist(err)) {
			return nil
		}
		return errors.Wrap(err, errors.CategoryOperation, "failed to load configuration file").
			WithTextCode("FILE_LOAD_FAILED").
			WithMetadata(map[string]any{
				"filepath": path,
				"format":   string(o.format),
			})
	}, o.kv...)
	if err != nil {
		return nil, err
	}
	return &Feeder{Feeder: f, path: path, format: o.format}, nil
}

func (f *Feeder) Path() string {
	return f.path
}

func (f *Feeder) Format() Format {
	return f.format
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || goerrors.Is(err, fs.ErrNotExist) || goerrors.Is(err, syscall.ENOENT)
}
