package confval

import (
	"maps"
	"slices"
)

// DynamicConfig is an open config that only holds the keys that were set. It
// owns every option it stores; options are created lazily from the registry.
type DynamicConfig struct {
	registry *Registry
	options  map[string]Option
	cfg      configOptions
}

// NewDynamicConfig returns an empty config backed by reg.
func NewDynamicConfig(reg *Registry, opts ...ConfigOption) *DynamicConfig {
	return &DynamicConfig{
		registry: reg,
		options:  make(map[string]Option),
		cfg:      applyConfigOptions(opts),
	}
}

// NewDynamicFrom copies every option of src into a new DynamicConfig sharing
// src's registry.
func NewDynamicFrom(src Config, opts ...ConfigOption) (*DynamicConfig, error) {
	c := NewDynamicConfig(src.Registry(), opts...)
	if err := c.Apply(src, false); err != nil {
		return nil, err
	}
	return c, nil
}

// Option returns the option stored under key. If it is absent and create is
// set, the option is instantiated from its definition (ErrUndefinedKey when
// there is none); otherwise ErrOptionNotSet is returned.
func (c *DynamicConfig) Option(key string, create bool) (Option, error) {
	if opt, ok := c.options[key]; ok {
		return opt, nil
	}
	if !create {
		return nil, ErrOptionNotSet
	}
	def, ok := c.registry.Lookup(key)
	if !ok {
		return nil, ErrUndefinedKey
	}
	opt, err := NewOption(def)
	if err != nil {
		return nil, err
	}
	if c.options == nil {
		c.options = make(map[string]Option)
	}
	c.options[key] = opt
	return opt, nil
}

// Keys returns the populated keys in sorted order. Keys that are defined but
// were never created are not listed.
func (c *DynamicConfig) Keys() []string {
	return slices.Sorted(maps.Keys(c.options))
}

// Has reports whether key is populated.
func (c *DynamicConfig) Has(key string) bool {
	_, ok := c.options[key]
	return ok
}

// Len returns the number of populated keys.
func (c *DynamicConfig) Len() int {
	return len(c.options)
}

func (c *DynamicConfig) Registry() *Registry {
	return c.registry
}

// Erase drops key from the config. It reports whether the key was present.
func (c *DynamicConfig) Erase(key string) bool {
	if _, ok := c.options[key]; !ok {
		return false
	}
	delete(c.options, key)
	c.cfg.loggerOrNoop().LogOperation(OperationLogEvent{Op: OpErase, Key: key})
	return true
}

// Clone returns a deep copy sharing the registry and configuration.
func (c *DynamicConfig) Clone() *DynamicConfig {
	clone := &DynamicConfig{
		registry: c.registry,
		options:  make(map[string]Option, len(c.options)),
		cfg:      c.cfg,
	}
	for key, opt := range c.options {
		clone.options[key] = opt.Clone()
	}
	return clone
}

// Diff returns, in sorted order, the keys whose serialized value differs
// between c and other, including keys present in only one of them.
func (c *DynamicConfig) Diff(other Config) []string {
	seen := make(map[string]struct{})
	var changed []string
	for _, key := range other.Keys() {
		seen[key] = struct{}{}
		theirs, err := Serialize(other, key)
		if err != nil {
			changed = append(changed, key)
			continue
		}
		ours, ok := c.options[key]
		if !ok || ours.Serialize() != theirs {
			changed = append(changed, key)
		}
	}
	for key := range c.options {
		if _, ok := seen[key]; !ok {
			changed = append(changed, key)
		}
	}
	slices.Sort(changed)
	return changed
}

// Apply merges src into c. See Apply.
func (c *DynamicConfig) Apply(src Config, ignoreNonexistent bool) error {
	return apply(c, src, ignoreNonexistent, c.cfg.loggerOrNoop())
}

// Serialize returns the text form of key. See Serialize.
func (c *DynamicConfig) Serialize(key string) (string, error) {
	return Serialize(c, key)
}

// SetDeserialize parses text into key, creating the option if needed.
func (c *DynamicConfig) SetDeserialize(key, text string) error {
	err := SetDeserialize(c, key, text)
	c.cfg.loggerOrNoop().LogOperation(OperationLogEvent{Op: OpSet, Key: key, Value: text, Err: err})
	return err
}

// GetAbsValue resolves key to an absolute number. See GetAbsValue.
func (c *DynamicConfig) GetAbsValue(key string) (float64, error) {
	return GetAbsValue(c, key)
}
