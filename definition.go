package confval

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// OptionDef declares the static metadata of one option key.
type OptionDef struct {
	Key     string
	Type    OptionType
	Label   string
	Tooltip string
	// RatioOver names the option whose absolute value is the base of a
	// percentage. Only meaningful for TypeFloatOrPercent.
	RatioOver string
	// EnumValues is required for TypeEnum.
	EnumValues SymbolTable
	// Default is serialized text applied when an option is created for the key.
	Default  string
	Category string
}

// Registry is the immutable key -> OptionDef table shared by configs. It is
// fully populated by NewRegistry and never mutated afterwards, so it is safe for
// concurrent readers.
type Registry struct {
	defs map[string]*OptionDef
	keys []string
}

// NewRegistry validates defs and builds a Registry. Enum symbol tables are
// copied so the registry owns every table its options borrow.
func NewRegistry(defs ...OptionDef) (*Registry, error) {
	r := &Registry{
		defs: make(map[string]*OptionDef, len(defs)),
		keys: make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if def.Key == "" {
			return nil, fmt.Errorf("%w: key must not be empty", ErrInvalidDefinition)
		}
		if strings.TrimSpace(def.Key) != def.Key {
			return nil, fmt.Errorf("%w: key %q has surrounding whitespace", ErrInvalidDefinition, def.Key)
		}
		if _, exists := r.defs[def.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, def.Key)
		}
		if !def.Type.Valid() {
			return nil, fmt.Errorf("%w: %s has unknown type %d", ErrInvalidDefinition, def.Key, int(def.Type))
		}
		if def.Type == TypeEnum && len(def.EnumValues) == 0 {
			return nil, fmt.Errorf("%w: enum %s has no symbols", ErrInvalidDefinition, def.Key)
		}
		def.EnumValues = def.EnumValues.Clone()
		stored := def
		if _, err := NewOption(&stored); err != nil {
			return nil, fmt.Errorf("%w: %s default: %w", ErrInvalidDefinition, def.Key, err)
		}
		r.defs[def.Key] = &stored
		r.keys = append(r.keys, def.Key)
	}
	slices.Sort(r.keys)
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error. Useful for
// package-level registries built at init time.
func MustNewRegistry(defs ...OptionDef) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition for key. The returned definition is shared and
// must not be modified.
func (r *Registry) Lookup(key string) (*OptionDef, bool) {
	if r == nil {
		return nil, false
	}
	def, ok := r.defs[key]
	return def, ok
}

// Has reports whether key is defined.
func (r *Registry) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Keys returns every defined key in sorted order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.keys)
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Definitions returns copies of every definition sorted by key.
func (r *Registry) Definitions() []OptionDef {
	if r == nil {
		return nil
	}
	out := make([]OptionDef, 0, len(r.keys))
	for _, key := range r.keys {
		def := *r.defs[key]
		def.EnumValues = def.EnumValues.Clone()
		out = append(out, def)
	}
	return out
}

// CheckRatios reports every RatioOver reference that points at an undefined key
// or takes part in a cycle. GetAbsValue detects the same problems lazily; this
// lets callers fail at startup instead.
func (r *Registry) CheckRatios() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, key := range r.keys {
		def := r.defs[key]
		if def.RatioOver == "" {
			continue
		}
		if !r.Has(def.RatioOver) {
			errs = append(errs, &OptionError{
				Op:  "check",
				Key: key,
				Err: fmt.Errorf("%w: %s", ErrMissingRatioTarget, def.RatioOver),
			})
			continue
		}
		if r.ratioLoops(key) {
			errs = append(errs, &OptionError{Op: "check", Key: key, Err: ErrRatioCycle})
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) ratioLoops(start string) bool {
	seen := map[string]struct{}{start: {}}
	key := start
	for {
		def, ok := r.defs[key]
		if !ok || def.RatioOver == "" {
			return false
		}
		key = def.RatioOver
		if key == start {
			return true
		}
		if _, visited := seen[key]; visited {
			// A loop further down the chain is reported for its own members.
			return false
		}
		seen[key] = struct{}{}
	}
}

// NewOption instantiates the variant declared by def and applies its Default.
// Enum definitions produce an EnumGeneric borrowing def.EnumValues.
func NewOption(def *OptionDef) (Option, error) {
	if def == nil {
		return nil, ErrUndefinedKey
	}
	var opt Option
	switch def.Type {
	case TypeFloat:
		opt = &Float{}
	case TypeFloats:
		opt = &Floats{}
	case TypeInt:
		opt = &Int{}
	case TypeInts:
		opt = &Ints{}
	case TypeString:
		opt = &String{}
	case TypeFloatOrPercent:
		opt = &FloatOrPercent{}
	case TypePoint:
		opt = &Point{}
	case TypePoints:
		opt = &Points{}
	case TypeBool:
		opt = &Bool{}
	case TypeBools:
		opt = &Bools{}
	case TypeEnum:
		enum := &EnumGeneric{Symbols: def.EnumValues}
		// start at the first symbol so an undefaulted enum still serializes
		if symbols := def.EnumValues.Symbols(); len(symbols) > 0 {
			enum.Value = def.EnumValues[symbols[0]]
		}
		opt = enum
	default:
		return nil, fmt.Errorf("%w: %s has unknown type %d", ErrInvalidDefinition, def.Key, int(def.Type))
	}
	if err := applyDefault(def, opt); err != nil {
		return nil, err
	}
	return opt, nil
}

func applyDefault(def *OptionDef, opt Option) error {
	if def.Default == "" {
		return nil
	}
	return opt.Deserialize(def.Default)
}
