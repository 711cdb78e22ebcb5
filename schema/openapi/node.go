package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/bridge"
)

// percentPattern matches the percentage form accepted by FloatOrPercent.
const percentPattern = `^\s*[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?%$`

type schemaNode struct {
	Type        string
	Format      string
	Title       string
	Description string
	Properties  map[string]*schemaNode
	Items       *schemaNode
	OneOf       []*schemaNode
	AllOf       []*schemaNode
	Enum        []any
	Default     any
	MinItems    *int
	MaxItems    *int
	Pattern     string
	// component names the node when it is shared through components.
	component  string
	extensions map[string]any
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func (n *schemaNode) baseMap() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Format != "" {
		result["format"] = n.Format
	}
	if n.Title != "" {
		result["title"] = n.Title
	}
	if n.Description != "" {
		result["description"] = n.Description
	}
	if n.Default != nil {
		result["default"] = n.Default
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.MinItems != nil {
		result["minItems"] = *n.MinItems
	}
	if n.MaxItems != nil {
		result["maxItems"] = *n.MaxItems
	}
	if n.Pattern != "" {
		result["pattern"] = n.Pattern
	}
	for key, value := range n.extensions {
		result[key] = value
	}
	return result
}

// inlineOpenAPI renders n and its children without component references.
func (n *schemaNode) inlineOpenAPI() map[string]any {
	result := n.baseMap()
	if len(n.Properties) > 0 || n.Type == "object" {
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = child.inlineOpenAPI()
		}
		result["properties"] = props
	}
	if n.Items != nil {
		result["items"] = n.Items.inlineOpenAPI()
	}
	if len(n.OneOf) > 0 {
		variants := make([]any, len(n.OneOf))
		for i, variant := range n.OneOf {
			variants[i] = variant.inlineOpenAPI()
		}
		result["oneOf"] = variants
	}
	if len(n.AllOf) > 0 {
		parts := make([]any, len(n.AllOf))
		for i, part := range n.AllOf {
			parts[i] = part.inlineOpenAPI()
		}
		result["allOf"] = parts
	}
	return result
}

func (n *schemaNode) Digest() string {
	data, err := json.Marshal(n.inlineOpenAPI())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (n *schemaNode) extension(key string, value any) {
	if n.extensions == nil {
		n.extensions = map[string]any{}
	}
	n.extensions[key] = value
}

func intPtr(v int) *int { return &v }

func pointNode() *schemaNode {
	return &schemaNode{
		Type:      "array",
		Items:     &schemaNode{Type: "number"},
		MinItems:  intPtr(2),
		MaxItems:  intPtr(2),
		component: "Point",
	}
}

func percentNode() *schemaNode {
	return &schemaNode{
		OneOf: []*schemaNode{
			{Type: "number"},
			{Type: "string", Pattern: percentPattern},
		},
		component: "FloatOrPercent",
	}
}

// valueNode returns the schema of the host value an option of type t takes,
// matching what bridge.Value produces.
func valueNode(def confval.OptionDef) (*schemaNode, error) {
	switch def.Type {
	case confval.TypeFloat:
		return &schemaNode{Type: "number"}, nil
	case confval.TypeInt:
		return &schemaNode{Type: "integer"}, nil
	case confval.TypeBool:
		return &schemaNode{Type: "boolean"}, nil
	case confval.TypeString:
		return &schemaNode{Type: "string"}, nil
	case confval.TypeFloats:
		return &schemaNode{Type: "array", Items: &schemaNode{Type: "number"}}, nil
	case confval.TypeInts:
		return &schemaNode{Type: "array", Items: &schemaNode{Type: "integer"}}, nil
	case confval.TypeBools:
		return &schemaNode{Type: "array", Items: &schemaNode{Type: "boolean"}}, nil
	case confval.TypePoint:
		return pointNode(), nil
	case confval.TypePoints:
		return &schemaNode{Type: "array", Items: pointNode()}, nil
	case confval.TypeFloatOrPercent:
		return percentNode(), nil
	case confval.TypeEnum:
		symbols := def.EnumValues.Symbols()
		enum := make([]any, len(symbols))
		for i, symbol := range symbols {
			enum[i] = symbol
		}
		return &schemaNode{Type: "string", Enum: enum}, nil
	}
	return nil, fmt.Errorf("openapi: option %q has unsupported type %s", def.Key, def.Type)
}

// propertyNode decorates the value schema of def with its metadata. Shared
// value shapes are nested one level down so the decorated property itself is
// never deduplicated.
func propertyNode(def confval.OptionDef) (*schemaNode, error) {
	value, err := valueNode(def)
	if err != nil {
		return nil, err
	}
	node := value
	if value.component != "" {
		node = &schemaNode{AllOf: []*schemaNode{value}}
	}
	node.Title = def.Label
	node.Description = def.Tooltip
	if def.Default != "" {
		opt, err := confval.NewOption(&def)
		if err != nil {
			return nil, fmt.Errorf("openapi: default for %q: %w", def.Key, err)
		}
		node.Default = bridge.Value(opt)
	}
	node.extension("x-confval-type", def.Type.String())
	if def.Category != "" {
		node.extension("x-category", def.Category)
	}
	if def.RatioOver != "" {
		node.extension("x-ratio-over", def.RatioOver)
	}
	return node, nil
}

// buildRegistryGraph returns an object schema with one property per key.
func buildRegistryGraph(reg *confval.Registry) (*schemaNode, error) {
	root := newObjectNode()
	for _, def := range reg.Definitions() {
		node, err := propertyNode(def)
		if err != nil {
			return nil, err
		}
		root.Properties[def.Key] = node
	}
	return root, nil
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
