package specdoc

import "strings"

// ProjectionNode is a node of a projection tree: a tagged variant. A leaf node describes a
// scalar storage-facing field; an inner node describes a nested object
// with its own sub-tree. Every leaf's Target is guaranteed non-empty by
// construction.
type ProjectionNode struct {
	IsLeaf bool

	// Target is the storage-facing dotted path, as an ordered segment
	// list, for both leaf and inner nodes.
	Target []string

	// Leaf-only fields.
	Required bool
	Type     string
	Format   string

	// Inner-only field.
	Properties ProjectionTree
}

// ProjectionTree maps an external field name to its projection node.
type ProjectionTree map[string]ProjectionNode

// BuildProjection walks a schema's properties to produce a normalized
// projection tree, resolving nested $ref and inline array/object
// wrappers into inner nodes.
func (d *Document) BuildProjection(schema Node) ProjectionTree {
	tree := make(ProjectionTree)
	if schema == nil {
		return tree
	}

	properties, _ := schema["properties"].(map[string]interface{})
	requiredList := stringList(schema["required"])
	required := make(map[string]bool, len(requiredList))
	for _, r := range requiredList {
		required[r] = true
	}

	for name, rawProp := range properties {
		prop, ok := toNode(rawProp)
		if !ok {
			continue
		}
		tree[name] = d.buildPropertyNode(name, prop, required[name])
	}

	return tree
}

func (d *Document) buildPropertyNode(name string, prop Node, isRequired bool) ProjectionNode {
	target := targetSegments(name, prop)

	// $ref to a structured object.
	if refVal, ok := prop["$ref"].(string); ok {
		if resolved, ok := d.Resolve(refVal); ok {
			if _, hasProps := resolved["properties"]; hasProps {
				return ProjectionNode{
					IsLeaf:     false,
					Target:     target,
					Properties: d.BuildProjection(resolved),
				}
			}
		}
	}

	// Inline array/object with a nested $ref (e.g. items: {$ref: ...}).
	if typ, _ := prop["type"].(string); typ == "array" || typ == "object" {
		if items, ok := prop["items"].(map[string]interface{}); ok {
			if refVal, ok := items["$ref"].(string); ok {
				if resolved, ok := d.Resolve(refVal); ok {
					return ProjectionNode{
						IsLeaf:     false,
						Target:     target,
						Properties: d.BuildProjection(resolved),
					}
				}
			}
		}
		if _, hasProps := prop["properties"]; hasProps {
			return ProjectionNode{
				IsLeaf:     false,
				Target:     target,
				Properties: d.BuildProjection(prop),
			}
		}
	}

	leafType, _ := prop["type"].(string)
	format, _ := prop["format"].(string)
	return ProjectionNode{
		IsLeaf:   true,
		Target:   target,
		Required: isRequired,
		Type:     leafType,
		Format:   format,
	}
}

func targetSegments(name string, prop Node) []string {
	if tf, ok := prop["x-target-field"].(string); ok && tf != "" {
		return strings.Split(tf, ".")
	}
	return []string{name}
}

func stringList(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// DiscoverTableID finds the primary-key field name: the field whose
// schema (or whose nested child schema) carries x-db-table-id.
func (d *Document) DiscoverTableID(schema Node) (string, bool) {
	if schema == nil {
		return "", false
	}
	if id, ok := schema["x-db-table-id"].(string); ok && id != "" {
		return id, true
	}

	properties, _ := schema["properties"].(map[string]interface{})
	for _, rawProp := range properties {
		prop, ok := toNode(rawProp)
		if !ok {
			continue
		}
		if refVal, ok := prop["$ref"].(string); ok {
			if resolved, ok := d.Resolve(refVal); ok {
				prop = resolved
			}
		}
		if _, hasProps := prop["properties"]; hasProps {
			if id, ok := d.DiscoverTableID(prop); ok {
				return id, true
			}
		}
	}
	return "", false
}
