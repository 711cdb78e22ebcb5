package confval

import (
	"errors"
	"fmt"
	"sort"
)

// Scope models a named precedence bucket (defaults, printer, object, etc.).
// Higher priority values represent stronger layers.
type Scope struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches arbitrary metadata to the scope. The map is copied
// so the resulting Scope remains immutable even if the caller mutates their
// reference.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: copyMetadata(cfg.metadata),
	}
}

func (s Scope) clone() Scope {
	return Scope{
		Name:     s.Name,
		Label:    s.Label,
		Priority: s.Priority,
		Metadata: copyMetadata(s.Metadata),
	}
}

// Layer pairs a scope with the config captured for it.
type Layer struct {
	Scope      Scope
	Config     *DynamicConfig
	SnapshotID string
}

// LayerOption configures optional layer metadata.
type LayerOption func(*Layer)

// WithSnapshotID sets the snapshot identifier used for auditing.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer captures a copy of cfg for scope, so later writes to cfg do not leak
// into the layer.
func NewLayer(scope Scope, cfg *DynamicConfig, opts ...LayerOption) Layer {
	layer := Layer{Scope: scope.clone()}
	if cfg != nil {
		layer.Config = cfg.Clone()
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&layer)
	}
	return layer
}

func cloneLayer(layer Layer) Layer {
	out := Layer{
		Scope:      layer.Scope.clone(),
		SnapshotID: layer.SnapshotID,
	}
	if layer.Config != nil {
		out.Config = layer.Config.Clone()
	}
	return out
}

var (
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("scope: name must be provided")
	// ErrDuplicateScopeName indicates multiple layers with the same scope name.
	ErrDuplicateScopeName = errors.New("scope: names must be unique")
	// ErrPriorityOrder indicates duplicate priorities.
	ErrPriorityOrder = errors.New("scope: priorities must be strictly ordered")
	// ErrEmptyStack indicates a merge of a stack without layers.
	ErrEmptyStack = errors.New("scope: stack must include at least one layer")
)

// Stack is an immutable set of layers ordered from strongest to weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates the layers and sorts them so that the strongest scope
// (highest priority) comes first.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seenNames := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		layer := cloneLayer(layer)
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seenNames[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seenNames[layer.Scope.Name] = struct{}{}
		copied[i] = layer
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})

	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns a copy of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge applies the layers from weakest to strongest into a new config backed
// by reg, so the strongest layer wins for every key. Keys reg does not define
// are skipped.
func (s *Stack) Merge(reg *Registry, opts ...ConfigOption) (*DynamicConfig, error) {
	if s == nil || len(s.layers) == 0 {
		return nil, ErrEmptyStack
	}
	merged := NewDynamicConfig(reg, opts...)
	logger := merged.cfg.loggerOrNoop()
	for i := len(s.layers) - 1; i >= 0; i-- {
		layer := s.layers[i]
		if layer.Config == nil {
			continue
		}
		if err := merged.Apply(layer.Config, true); err != nil {
			err = fmt.Errorf("scope %s: %w", layer.Scope.Name, err)
			logger.LogOperation(OperationLogEvent{Op: OpMerge, Key: layer.Scope.Name, Err: err})
			return nil, err
		}
		logger.LogOperation(OperationLogEvent{Op: OpMerge, Key: layer.Scope.Name})
	}
	return merged, nil
}

// Trace reports how each layer contributes to key, strongest first.
func (s *Stack) Trace(key string) Trace {
	trace := Trace{Key: key}
	if s == nil {
		return trace
	}
	for _, layer := range s.layers {
		entry := Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Key:        key,
		}
		if layer.Config != nil && layer.Config.Has(key) {
			if value, err := layer.Config.Serialize(key); err == nil {
				entry.Value = value
				entry.Found = true
			}
		}
		trace.Layers = append(trace.Layers, entry)
	}
	return trace
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
