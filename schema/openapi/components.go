package openapi

import (
	"fmt"
	"regexp"
)

// componentRegistry publishes value shapes used by more than one property
// under components/schemas. Nodes are observed in a first pass and referenced
// in a second, so every occurrence of a shared shape renders as the same $ref.
type componentRegistry struct {
	entries   map[string]*componentEntry
	usedNames map[string]struct{}
	forced    map[string]map[string]any
}

type componentEntry struct {
	name   string
	schema map[string]any
	count  int
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		entries:   map[string]*componentEntry{},
		usedNames: map[string]struct{}{},
		forced:    map[string]map[string]any{},
	}
}

// observe counts every named node reachable from node.
func (r *componentRegistry) observe(node *schemaNode) {
	if node == nil {
		return
	}
	if node.component != "" {
		digest := node.Digest()
		if entry, ok := r.entries[digest]; ok {
			entry.count++
		} else if digest != "" {
			r.entries[digest] = &componentEntry{
				name:   r.uniqueName(node.component),
				schema: node.inlineOpenAPI(),
				count:  1,
			}
		}
	}
	for _, key := range sortedKeys(node.Properties) {
		r.observe(node.Properties[key])
	}
	r.observe(node.Items)
	for _, variant := range node.OneOf {
		r.observe(variant)
	}
	for _, part := range node.AllOf {
		r.observe(part)
	}
}

// reference returns the $ref of node when it is shared, or "".
func (r *componentRegistry) reference(node *schemaNode) string {
	if node == nil || node.component == "" {
		return ""
	}
	entry, ok := r.entries[node.Digest()]
	if !ok || entry.count < 2 {
		return ""
	}
	return componentRef(entry.name)
}

// force publishes schema under name regardless of use count.
func (r *componentRegistry) force(name string, schema map[string]any) string {
	name = r.uniqueName(name)
	r.forced[name] = schema
	return componentRef(name)
}

func (r *componentRegistry) uniqueName(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Schema"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

func (r *componentRegistry) componentsMap() map[string]any {
	out := make(map[string]any, len(r.entries)+len(r.forced))
	for _, entry := range r.entries {
		if entry.count >= 2 {
			out[entry.name] = entry.schema
		}
	}
	for name, schema := range r.forced {
		out[name] = schema
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func componentRef(name string) string {
	return "#/components/schemas/" + name
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = componentNameRegexp.ReplaceAllString(name, "_")
	name = trimUnderscores(name)
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func trimUnderscores(input string) string {
	start := 0
	for start < len(input) && input[start] == '_' {
		start++
	}
	end := len(input)
	for end > start && input[end-1] == '_' {
		end--
	}
	return input[start:end]
}
