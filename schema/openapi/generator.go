// Package openapi renders an option registry as an OpenAPI 3 document whose
// request body accepts the JSON form of a config.
package openapi

import (
	"encoding/json"

	"github.com/goliatone/go-confval"
)

// Generator implements confval.SchemaGenerator.
type Generator struct {
	config generatorConfig
}

var _ confval.SchemaGenerator = Generator{}

// NewGenerator constructs an OpenAPI generator.
func NewGenerator(opts ...GeneratorOption) Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Generator{config: cfg}
}

// Generate describes every key of reg. Property schemas follow the host
// values of package bridge; option metadata is carried in title,
// description, default and x- extensions.
func (g Generator) Generate(reg *confval.Registry) (confval.SchemaDocument, error) {
	root, err := buildRegistryGraph(reg)
	if err != nil {
		return confval.SchemaDocument{}, err
	}
	document, err := newOpenAPIDocumentBuilder(g.config, newComponentRegistry(), root).build()
	if err != nil {
		return confval.SchemaDocument{}, err
	}
	return confval.SchemaDocument{
		Format:   confval.SchemaFormatOpenAPI,
		Document: document,
	}, nil
}

// GenerateJSON returns the indented JSON encoding of Generate.
func (g Generator) GenerateJSON(reg *confval.Registry) ([]byte, error) {
	doc, err := g.Generate(reg)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc.Document, "", "  ")
}
