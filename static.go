package confval

import (
	"fmt"
	"maps"
	"slices"
)

// StaticConfig backs a config whose options are fixed struct fields. Embed it in
// an application type, call Init, then Bind each field to its key:
//
//	type PrintConfig struct {
//	    confval.StaticConfig
//	    LayerHeight confval.Float
//	    Perimeters  confval.Int
//	}
//
//	func NewPrintConfig(reg *confval.Registry) (*PrintConfig, error) {
//	    c := &PrintConfig{}
//	    c.Init(reg)
//	    if err := c.Bind("layer_height", &c.LayerHeight); err != nil {
//	        return nil, err
//	    }
//	    ...
//	}
//
// Every bound slot always exists, so Option ignores create and Keys lists every
// bound key.
type StaticConfig struct {
	registry *Registry
	slots    map[string]Option
	cfg      configOptions
}

// Init attaches the registry and options. It must be called before Bind.
func (s *StaticConfig) Init(reg *Registry, opts ...ConfigOption) {
	s.registry = reg
	s.slots = make(map[string]Option)
	s.cfg = applyConfigOptions(opts)
}

// Bind registers opt as the slot for key. The key must be defined with the
// same type as opt; the definition's default is applied to the slot.
func (s *StaticConfig) Bind(key string, opt Option) error {
	if opt == nil {
		return &OptionError{Op: "bind", Key: key, Err: fmt.Errorf("%w: nil option", ErrInvalidDefinition)}
	}
	def, ok := s.registry.Lookup(key)
	if !ok {
		return &OptionError{Op: "bind", Key: key, Err: ErrUndefinedKey}
	}
	if def.Type != opt.Type() {
		return &OptionError{Op: "bind", Key: key, Err: typeConflict(def.Type, opt.Type())}
	}
	if _, exists := s.slots[key]; exists {
		return &OptionError{Op: "bind", Key: key, Err: ErrDuplicateKey}
	}
	if err := applyDefault(def, opt); err != nil {
		return &OptionError{Op: "bind", Key: key, Err: err}
	}
	if s.slots == nil {
		s.slots = make(map[string]Option)
	}
	s.slots[key] = opt
	return nil
}

// MustBind is like Bind but panics on error.
func (s *StaticConfig) MustBind(key string, opt Option) {
	if err := s.Bind(key, opt); err != nil {
		panic(err)
	}
}

// Option returns the field bound to key, or ErrUndefinedKey if there is none.
func (s *StaticConfig) Option(key string, _ bool) (Option, error) {
	opt, ok := s.slots[key]
	if !ok {
		return nil, ErrUndefinedKey
	}
	return opt, nil
}

// Keys returns every bound key in sorted order.
func (s *StaticConfig) Keys() []string {
	return slices.Sorted(maps.Keys(s.slots))
}

func (s *StaticConfig) Registry() *Registry {
	return s.registry
}

// Apply merges src into the bound fields. See Apply.
func (s *StaticConfig) Apply(src Config, ignoreNonexistent bool) error {
	return apply(s, src, ignoreNonexistent, s.cfg.loggerOrNoop())
}

func (s *StaticConfig) Serialize(key string) (string, error) {
	return Serialize(s, key)
}

func (s *StaticConfig) SetDeserialize(key, text string) error {
	err := SetDeserialize(s, key, text)
	s.cfg.loggerOrNoop().LogOperation(OperationLogEvent{Op: OpSet, Key: key, Value: text, Err: err})
	return err
}

func (s *StaticConfig) GetAbsValue(key string) (float64, error) {
	return GetAbsValue(s, key)
}
