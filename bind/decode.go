package bind

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-cfgtree/tree"
	"github.com/mitchellh/copystructure"
)

const (
	stageSnapshot = "snapshot"
	stageDefaults = "defaults"
	stageDecode   = "decode"
	stageValidate = "validate"
)

var (
	// ErrSnapshot wraps failures exporting the tree before decoding.
	ErrSnapshot = errors.New("bind: snapshot stage failed")
	ErrDefaults = errors.New("bind: defaults stage failed")
	ErrDecode   = errors.New("bind: decode stage failed")
	ErrValidate = errors.New("bind: validate stage failed")
	// ErrOption reports a misconfigured option, such as a second validator.
	ErrOption = errors.New("bind: option configuration failed")
)

// StageError describes a failure in one stage of Decode.
type StageError struct {
	Stage string
	Base  error
	Err   error
	Meta  map[string]any
}

// Error reports the stage followed by the underlying cause.
func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the stage sentinel as well as the wrapped error.
func (e *StageError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if errors.Is(e.Base, target) {
		return true
	}
	return errors.Is(e.Err, target)
}

func stageError(stage string, base, err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Base: base, Err: err, Meta: meta}
}

type decoder[T any] struct {
	strategy      Strategy
	defaults      func() (T, error)
	decodeHooks   []mapstructure.DecodeHookFunc
	decoderConfig mapstructure.DecoderConfig
	validator     Validator[T]
	optionErr     error
}

func newDecoder[T any]() *decoder[T] {
	return &decoder[T]{
		strategy: Last,
		decoderConfig: mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}
}

// Decode fills a T from the values of cfg. Fields decoding into slices get
// every value of their node; any other field gets the one value chosen by the
// selection strategy (Last unless WithSelect says otherwise).
func Decode[T any](cfg *tree.Configuration, opts ...Option[T]) (T, error) {
	d := newDecoder[T]()
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if d.optionErr != nil {
		var zero T
		return zero, d.optionErr
	}
	return d.run(cfg)
}

func (d *decoder[T]) setOptionError(format string, args ...any) {
	if d.optionErr != nil {
		return
	}
	d.optionErr = fmt.Errorf("%w: %w", ErrOption, fmt.Errorf(format, args...))
}

func (d *decoder[T]) run(cfg *tree.Configuration) (T, error) {
	var zero T

	input, err := snapshot(cfg)
	if err != nil {
		return zero, err
	}

	result, err := d.applyDefaults()
	if err != nil {
		return zero, err
	}

	if err := d.decode(input, &result); err != nil {
		return zero, err
	}

	if d.validator != nil {
		if err := d.validator(&result); err != nil {
			return zero, stageError(stageValidate, ErrValidate, err, nil)
		}
	}
	return result, nil
}

func snapshot(cfg *tree.Configuration) (map[string]any, error) {
	if cfg == nil || cfg.Root() == nil {
		return nil, stageError(stageSnapshot, ErrSnapshot, tree.ErrNoRoot, nil)
	}
	k, err := Koanf(cfg, All)
	if err != nil {
		return nil, stageError(stageSnapshot, ErrSnapshot, err, map[string]any{
			"root": cfg.Root().Name(),
		})
	}
	return k.Raw(), nil
}

func (d *decoder[T]) applyDefaults() (T, error) {
	var zero T
	if d.defaults == nil {
		return zero, nil
	}
	val, err := d.defaults()
	if err != nil {
		return zero, stageError(stageDefaults, ErrDefaults, err, nil)
	}
	cloned, err := cloneValue(val)
	if err != nil {
		return zero, stageError(stageDefaults, ErrDefaults, err, map[string]any{
			"reason": "clone",
		})
	}
	return cloned, nil
}

func (d *decoder[T]) decode(input map[string]any, result *T) error {
	config := d.decoderConfig
	config.Result = prepareDecodeTarget(result)
	config.DecodeHook = d.composeDecodeHooks()
	dec, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return stageError(stageDecode, ErrDecode, err, map[string]any{"reason": "decoder_config"})
	}
	if err := dec.Decode(input); err != nil {
		return stageError(stageDecode, ErrDecode, err, nil)
	}
	return nil
}

func (d *decoder[T]) composeDecodeHooks() mapstructure.DecodeHookFunc {
	hooks := []mapstructure.DecodeHookFunc{
		selectHook(d.strategy),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		tree.StringToScalarHookFunc(),
	}
	hooks = append(hooks, d.decodeHooks...)
	return mapstructure.ComposeDecodeHookFunc(hooks...)
}

// selectHook narrows the []string exported for each node. Scalar targets get
// the value chosen by s; slice targets fed a single value get it unwrapped so
// comma separated lists still split.
func selectHook(s Strategy) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		values, ok := data.([]string)
		if !ok || len(values) == 0 {
			return data, nil
		}
		switch to.Kind() {
		case reflect.Slice, reflect.Array:
			if len(values) == 1 && to.Elem().Kind() != reflect.Slice {
				return values[0], nil
			}
			return data, nil
		case reflect.Interface:
			if s == All {
				return data, nil
			}
		}
		if s == First {
			return values[0], nil
		}
		return values[len(values)-1], nil
	}
}

func prepareDecodeTarget[T any](result *T) any {
	val := reflect.ValueOf(result).Elem()
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			val.Set(reflect.New(val.Type().Elem()))
		}
		return val.Interface()
	}
	return val.Addr().Interface()
}

func cloneValue[T any](value T) (T, error) {
	var zero T
	cloned, err := copystructure.Copy(value)
	if err != nil {
		return zero, err
	}
	casted, ok := cloned.(T)
	if !ok {
		return zero, fmt.Errorf("bind: failed to cast cloned value %T to target type", cloned)
	}
	return casted, nil
}
