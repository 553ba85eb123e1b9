package tree

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-errors"
)

// Value is a raw string contributed to a node by a feeder.
type Value struct {
	feeder string
	raw    string
}

func NewValue(feeder, raw string) Value {
	return Value{feeder: feeder, raw: raw}
}

// Feeder returns the name of the feeder that produced the value.
func (v Value) Feeder() string {
	return v.feeder
}

func (v Value) Raw() string {
	return v.raw
}

func (v Value) String() string {
	return v.feeder + "=" + v.raw
}

// Parse converts the raw value into T. Numbers, booleans, durations, comma
// separated slices and encoding.TextUnmarshaler targets are supported.
// Numbers are always read in base 10 and empty input is rejected for
// numeric and boolean targets.
func Parse[T any](v Value) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			StringToScalarHookFunc(),
		),
	})
	if err == nil {
		err = decoder.Decode(v.raw)
	}
	if err != nil {
		var zero T
		return zero, &ParseError{
			Raw:    v.raw,
			Target: reflect.TypeOf(&out).Elem().String(),
			Err: errors.Wrap(err, errors.CategoryValidation, "invalid value").
				WithTextCode("VALUE_PARSE_FAILED").
				WithMetadata(map[string]any{"feeder": v.feeder}),
		}
	}
	return out, nil
}

// MustParse is like Parse but panics on failure.
func MustParse[T any](v Value) T {
	out, err := Parse[T](v)
	if err != nil {
		panic(err)
	}
	return out
}

// StringToScalarHookFunc converts strings into numeric and boolean kinds with
// strconv, ahead of mapstructure's weak conversions. Integers are base 10
// only and empty strings fail.
func StringToScalarHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		raw, ok := data.(string)
		if !ok || from.Kind() != reflect.String {
			return data, nil
		}
		var parsed any
		var err error
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			parsed, err = strconv.ParseInt(raw, 10, to.Bits())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			parsed, err = strconv.ParseUint(raw, 10, to.Bits())
		case reflect.Float32, reflect.Float64:
			parsed, err = strconv.ParseFloat(raw, to.Bits())
		case reflect.Bool:
			parsed, err = strconv.ParseBool(raw)
		default:
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as %s: %w", raw, to, err)
		}
		return reflect.ValueOf(parsed).Convert(to).Interface(), nil
	}
}
