package confval

import (
	"errors"
	"fmt"
)

// Config is the storage contract shared by DynamicConfig and StaticConfig. The
// package-level algorithms only rely on these three methods.
type Config interface {
	// Option returns the option stored under key. With create set, a store
	// that can hold the key but does not yet do so instantiates it from its
	// definition. Stores report ErrOptionNotSet for an absent key and
	// ErrUndefinedKey when the key cannot be held at all.
	Option(key string, create bool) (Option, error)
	// Keys returns the populated keys in a stable order.
	Keys() []string
	// Registry returns the definitions the store was built against.
	Registry() *Registry
}

// Serialize returns the text form of key's option.
func Serialize(c Config, key string) (string, error) {
	opt, err := c.Option(key, false)
	if err != nil {
		return "", wrapOptionError("serialize", key, err)
	}
	return opt.Serialize(), nil
}

// SetDeserialize parses text into key's option, creating the option when the
// store supports it.
func SetDeserialize(c Config, key, text string) error {
	opt, err := c.Option(key, true)
	if err != nil {
		return wrapOptionError("set", key, err)
	}
	return wrapOptionError("set", key, deserializeInto(c.Registry(), key, opt, text))
}

func deserializeInto(reg *Registry, key string, opt Option, text string) error {
	if def, ok := reg.Lookup(key); ok && def.Type != opt.Type() {
		return typeConflict(def.Type, opt.Type())
	}
	return opt.Deserialize(text)
}

// Apply copies every option of src into dst by serializing it and
// deserializing the text into dst, in src.Keys() order. Keys dst cannot hold
// fail with ErrUndefinedKey unless ignoreNonexistent is set, in which case they
// are skipped.
func Apply(dst, src Config, ignoreNonexistent bool) error {
	return apply(dst, src, ignoreNonexistent, noopLogger{})
}

func apply(dst, src Config, ignoreNonexistent bool, logger Logger) error {
	for _, key := range src.Keys() {
		err := applyKey(dst, src, key)
		if err != nil && ignoreNonexistent && errors.Is(err, ErrUndefinedKey) {
			logger.LogOperation(OperationLogEvent{Op: OpApply, Key: key, Skipped: true, Err: err})
			continue
		}
		if err != nil {
			err = wrapOptionError("apply", key, err)
			logger.LogOperation(OperationLogEvent{Op: OpApply, Key: key, Err: err})
			return err
		}
		logger.LogOperation(OperationLogEvent{Op: OpApply, Key: key})
	}
	return nil
}

func applyKey(dst, src Config, key string) error {
	source, err := src.Option(key, false)
	if err != nil {
		return err
	}
	if def, ok := dst.Registry().Lookup(key); ok && def.Type != source.Type() {
		return typeConflict(def.Type, source.Type())
	}
	target, err := dst.Option(key, true)
	if err != nil {
		return err
	}
	if target == source {
		return nil
	}
	if target.Type() != source.Type() {
		return typeConflict(target.Type(), source.Type())
	}
	return deserializeInto(dst.Registry(), key, target, source.Serialize())
}

// GetAbsValue resolves key to an absolute number. Float and Int options return
// their value. A FloatOrPercent returns its raw value unless it is a
// percentage, in which case it is scaled by the absolute value of the option
// named by its definition's RatioOver, resolved recursively.
func GetAbsValue(c Config, key string) (float64, error) {
	return absValue(c, key, make(map[string]struct{}))
}

func absValue(c Config, key string, visiting map[string]struct{}) (float64, error) {
	if _, seen := visiting[key]; seen {
		return 0, &OptionError{Op: "abs", Key: key, Err: ErrRatioCycle}
	}
	visiting[key] = struct{}{}

	opt, err := c.Option(key, false)
	if err != nil {
		return 0, wrapOptionError("abs", key, err)
	}

	switch o := opt.(type) {
	case *Float:
		return o.Value, nil
	case *Int:
		return float64(o.Value), nil
	case *FloatOrPercent:
		if !o.Percent {
			return o.Value, nil
		}
		def, ok := c.Registry().Lookup(key)
		if !ok || def.RatioOver == "" {
			return 0, &OptionError{Op: "abs", Key: key, Err: ErrMissingRatioTarget}
		}
		base, err := absValue(c, def.RatioOver, visiting)
		if err != nil {
			if errors.Is(err, ErrOptionNotSet) || errors.Is(err, ErrUndefinedKey) {
				return 0, &OptionError{
					Op:  "abs",
					Key: key,
					Err: fmt.Errorf("%w: %s: %w", ErrMissingRatioTarget, def.RatioOver, err),
				}
			}
			return 0, err
		}
		return o.AbsValue(base), nil
	default:
		return 0, &OptionError{Op: "abs", Key: key, Err: fmt.Errorf("%w: %s", ErrNotNumeric, opt.Type())}
	}
}
