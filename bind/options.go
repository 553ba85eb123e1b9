package bind

import (
	"github.com/go-viper/mapstructure/v2"
)

// Option tweaks Decode.
type Option[T any] func(*decoder[T])

// Validator runs after decoding succeeded.
type Validator[T any] func(*T) error

// WithSelect sets how a scalar field picks one of several values.
func WithSelect[T any](s Strategy) Option[T] {
	return func(d *decoder[T]) {
		d.strategy = s
	}
}

// WithDefaults seeds the result with a clone of value before decoding.
func WithDefaults[T any](value T) Option[T] {
	return func(d *decoder[T]) {
		d.defaults = func() (T, error) {
			return value, nil
		}
	}
}

func WithDefaultFunc[T any](fn func() (T, error)) Option[T] {
	return func(d *decoder[T]) {
		d.defaults = fn
	}
}

// WithTagName overrides the "koanf" struct tag.
func WithTagName[T any](tag string) Option[T] {
	return func(d *decoder[T]) {
		if tag == "" {
			return
		}
		d.decoderConfig.TagName = tag
	}
}

// WithStrictKeys fails the decode when the tree has values no field takes.
func WithStrictKeys[T any]() Option[T] {
	return func(d *decoder[T]) {
		d.decoderConfig.ErrorUnused = true
	}
}

func WithDecodeHooks[T any](hooks ...mapstructure.DecodeHookFunc) Option[T] {
	return func(d *decoder[T]) {
		for _, hook := range hooks {
			if hook != nil {
				d.decodeHooks = append(d.decodeHooks, hook)
			}
		}
	}
}

// WithValidator registers the validator. Only one is allowed.
func WithValidator[T any](validator Validator[T]) Option[T] {
	return func(d *decoder[T]) {
		if validator == nil {
			return
		}
		if d.validator != nil {
			d.setOptionError("validator already registered")
			return
		}
		d.validator = validator
	}
}
