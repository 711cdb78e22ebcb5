package confval

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flattened field descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI represents OpenAPI-compatible JSON Schema documents.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument encapsulates a generated schema alongside its format
// identifier. Document must be JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator describes the keys of a registry. Implementations must be
// safe for concurrent use and return an empty document for a nil registry.
type SchemaGenerator interface {
	Generate(reg *Registry) (SchemaDocument, error)
}

// FieldDescriptor describes one option key.
type FieldDescriptor struct {
	Key       string   `json:"key"`
	Type      string   `json:"type"`
	Label     string   `json:"label,omitempty"`
	Tooltip   string   `json:"tooltip,omitempty"`
	Default   string   `json:"default,omitempty"`
	RatioOver string   `json:"ratio_over,omitempty"`
	Symbols   []string `json:"symbols,omitempty"`
	Category  string   `json:"category,omitempty"`
}

// DefaultSchemaGenerator returns the built-in descriptor-based generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(reg *Registry) (SchemaDocument, error) {
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: Describe(reg),
	}, nil
}

// Describe returns one descriptor per key of reg, sorted by key.
func Describe(reg *Registry) []FieldDescriptor {
	defs := reg.Definitions()
	out := make([]FieldDescriptor, 0, len(defs))
	for _, def := range defs {
		out = append(out, FieldDescriptor{
			Key:       def.Key,
			Type:      def.Type.String(),
			Label:     def.Label,
			Tooltip:   def.Tooltip,
			Default:   def.Default,
			RatioOver: def.RatioOver,
			Symbols:   def.EnumValues.Symbols(),
			Category:  def.Category,
		})
	}
	return out
}
