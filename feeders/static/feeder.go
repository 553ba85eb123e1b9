// Package static provides feeders over in-memory data, typically the
// defaults of an application. Match labels are dotted key paths.
package static

import (
	"github.com/goliatone/go-cfgtree/feeders/file"
	"github.com/goliatone/go-cfgtree/feeders/kv"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultName      = "defaults"
	DefaultDelimiter = "."
	DefaultTag       = "koanf"
)

type Feeder struct {
	*kv.Feeder
}

// FromMap feeds values. Flat keys such as "database.dsn" and nested maps
// are both accepted.
func FromMap(name string, values map[string]any, opts ...kv.Option) (*Feeder, error) {
	f, err := kv.New(name, DefaultDelimiter, func(k *koanf.Koanf) error {
		return k.Load(confmap.Provider(values, DefaultDelimiter), nil)
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Feeder{Feeder: f}, nil
}

// FromStruct feeds the fields of v, keyed by their "koanf" tags. Nested
// structs become dotted paths.
func FromStruct(name string, v any, opts ...kv.Option) (*Feeder, error) {
	if v == nil {
		return nil, errors.New("struct source cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_STRUCT_SOURCE").
			WithMetadata(map[string]any{"feeder": name})
	}
	f, err := kv.New(name, DefaultDelimiter, func(k *koanf.Koanf) error {
		return k.Load(structs.Provider(v, DefaultTag), nil)
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Feeder{Feeder: f}, nil
}

// FromBytes feeds a JSON, YAML or TOML document held in memory, such as an
// embedded default config file.
func FromBytes(name string, data []byte, format file.Format, opts ...kv.Option) (*Feeder, error) {
	if err := format.Valid(); err != nil {
		return nil, err
	}
	f, err := kv.New(name, DefaultDelimiter, func(k *koanf.Koanf) error {
		return k.Load(rawbytes.Provider(data), format.Parser())
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Feeder{Feeder: f}, nil
}
