// Package bridge converts option values to and from dynamically typed host
// values such as JSON payloads or scripting-language variables.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-confval"
)

// ErrUnsupportedValue indicates a host value that cannot be coerced into the
// option variant of its key.
var ErrUnsupportedValue = errors.New("bridge: unsupported value")

// Get returns the host representation of key. See Value.
func Get(c confval.Config, key string) (any, error) {
	opt, err := c.Option(key, false)
	if err != nil {
		return nil, &confval.OptionError{Op: "get", Key: key, Err: err}
	}
	return Value(opt), nil
}

// Value converts opt into a plain Go value. Scalars map to float64, int, bool
// and string; vectors to slices; points to []float64{x, y}. FloatOrPercent and
// enum options are returned in their serialized form.
func Value(opt confval.Option) any {
	switch o := opt.(type) {
	case *confval.Float:
		return o.Value
	case *confval.Int:
		return o.Value
	case *confval.Bool:
		return o.Value
	case *confval.String:
		return o.Value
	case *confval.Floats:
		return slices.Clone(o.Values)
	case *confval.Ints:
		return slices.Clone(o.Values)
	case *confval.Bools:
		return slices.Clone(o.Values)
	case *confval.Point:
		return []float64{o.Value.X, o.Value.Y}
	case *confval.Points:
		out := make([][]float64, len(o.Values))
		for i, p := range o.Values {
			out[i] = []float64{p.X, p.Y}
		}
		return out
	case nil:
		return nil
	default:
		return opt.Serialize()
	}
}

// Set stores value under key, creating the option when the config supports it.
// Strings are always accepted and parsed with the option's text rules, except
// for String options which take the string verbatim.
func Set(c confval.Config, key string, value any) error {
	opt, err := c.Option(key, true)
	if err != nil {
		return &confval.OptionError{Op: "set", Key: key, Err: err}
	}
	if def, ok := c.Registry().Lookup(key); ok && def.Type != opt.Type() {
		return &confval.OptionError{
			Op:  "set",
			Key: key,
			Err: fmt.Errorf("%w: want %s, got %s", confval.ErrTypeConflict, def.Type, opt.Type()),
		}
	}
	if err := assign(opt, value); err != nil {
		return &confval.OptionError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Snapshot returns the host values of every key held by c.
func Snapshot(c confval.Config) (map[string]any, error) {
	keys := c.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		value, err := Get(c, key)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// Restore writes values into c in key order. Keys c cannot hold fail with
// confval.ErrUndefinedKey unless ignoreNonexistent is set.
func Restore(c confval.Config, values map[string]any, ignoreNonexistent bool) error {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		err := Set(c, key, values[key])
		if err != nil && ignoreNonexistent && errors.Is(err, confval.ErrUndefinedKey) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func assign(opt confval.Option, value any) error {
	if s, ok := value.(string); ok {
		if o, isString := opt.(*confval.String); isString {
			o.Value = s
			return nil
		}
		return opt.Deserialize(s)
	}

	switch o := opt.(type) {
	case *confval.Float:
		f, ok := toFloat(value)
		if !ok {
			return unsupported(opt, value)
		}
		o.Value = f
	case *confval.Int:
		i, ok := toInt(value)
		if !ok {
			return unsupported(opt, value)
		}
		o.Value = i
	case *confval.Bool:
		b, ok := toBool(value)
		if !ok {
			return unsupported(opt, value)
		}
		o.Value = b
	case *confval.String:
		if value == nil {
			return unsupported(opt, value)
		}
		o.Value = fmt.Sprint(value)
	case *confval.FloatOrPercent:
		f, ok := toFloat(value)
		if !ok {
			return unsupported(opt, value)
		}
		o.Value, o.Percent = f, false
	case *confval.Floats:
		values, ok := toList(value, toFloat)
		if !ok {
			return unsupported(opt, value)
		}
		o.Values = values
	case *confval.Ints:
		values, ok := toList(value, toInt)
		if !ok {
			return unsupported(opt, value)
		}
		o.Values = values
	case *confval.Bools:
		values, ok := toList(value, toBool)
		if !ok {
			return unsupported(opt, value)
		}
		o.Values = values
	case *confval.Point:
		p, ok := toPoint(value)
		if !ok {
			return unsupported(opt, value)
		}
		o.Value = p
	case *confval.Points:
		if points, ok := value.([]confval.Pointf); ok {
			o.Values = slices.Clone(points)
			return nil
		}
		values, ok := toList(value, toPoint)
		if !ok {
			return unsupported(opt, value)
		}
		o.Values = values
	default:
		return assignEnum(opt, value)
	}
	return nil
}

type symbolSource interface {
	Symbols() confval.SymbolTable
}

// assignEnum accepts the integer value of a symbol.
func assignEnum(opt confval.Option, value any) error {
	if opt.Type() != confval.TypeEnum {
		return unsupported(opt, value)
	}
	var table confval.SymbolTable
	switch o := opt.(type) {
	case *confval.EnumGeneric:
		table = o.Symbols
	case symbolSource:
		table = o.Symbols()
	}
	v, ok := toInt(value)
	if !ok {
		return unsupported(opt, value)
	}
	symbol, ok := table.Symbol(v)
	if !ok {
		return fmt.Errorf("%w: %d", confval.ErrUnknownEnumSymbol, v)
	}
	return opt.Deserialize(symbol)
}

func unsupported(opt confval.Option, value any) error {
	return fmt.Errorf("%w: %T for %s option", ErrUnsupportedValue, value, opt.Type())
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		opt := &confval.Float{}
		_ = opt.Deserialize(v)
		return opt.Value, true
	}
	return 0, false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		f, err := v.Float64()
		return int(f), err == nil
	case string:
		opt := &confval.Int{}
		_ = opt.Deserialize(v)
		return opt.Value, true
	}
	return 0, false
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		return v == "1", true
	}
	if f, ok := toFloat(value); ok {
		return f != 0, true
	}
	return false, false
}

func toPoint(value any) (confval.Pointf, bool) {
	switch v := value.(type) {
	case confval.Pointf:
		return v, true
	case string:
		opt := &confval.Point{}
		_ = opt.Deserialize(v)
		return opt.Value, true
	case []float64:
		if len(v) != 2 {
			return confval.Pointf{}, false
		}
		return confval.Pointf{X: v[0], Y: v[1]}, true
	case []any:
		if len(v) != 2 {
			return confval.Pointf{}, false
		}
		x, okX := toFloat(v[0])
		y, okY := toFloat(v[1])
		return confval.Pointf{X: x, Y: y}, okX && okY
	case map[string]any:
		x, okX := toFloat(v["x"])
		y, okY := toFloat(v["y"])
		return confval.Pointf{X: x, Y: y}, okX && okY
	}
	return confval.Pointf{}, false
}

func toList[T any](value any, convert func(any) (T, bool)) ([]T, bool) {
	switch v := value.(type) {
	case nil:
		return []T{}, true
	case []T:
		return slices.Clone(v), true
	case []any:
		out := make([]T, len(v))
		for i, item := range v {
			converted, ok := convert(item)
			if !ok {
				return nil, false
			}
			out[i] = converted
		}
		return out, true
	case [][]float64:
		out := make([]T, len(v))
		for i, item := range v {
			converted, ok := convert(item)
			if !ok {
				return nil, false
			}
			out[i] = converted
		}
		return out, true
	case []float64:
		return convertEach(v, convert)
	case []int:
		return convertEach(v, convert)
	case []bool:
		return convertEach(v, convert)
	}
	return nil, false
}

func convertEach[S any, T any](values []S, convert func(any) (T, bool)) ([]T, bool) {
	out := make([]T, len(values))
	for i, item := range values {
		converted, ok := convert(item)
		if !ok {
			return nil, false
		}
		out[i] = converted
	}
	return out, true
}
