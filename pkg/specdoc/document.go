// Package specdoc loads the OpenAPI document that drives route
// resolution and schema projection, and caches the structures derived
// from it for one hour at a time.
package specdoc

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bitechdev/specgateway/pkg/logger"
)

// Node is a generic parsed YAML/JSON map, used for raw schema and
// operation fragments (including vendor x- extensions).
type Node map[string]interface{}

// PathObject is one entry in the specification's path mapping.
type PathObject struct {
	TableName  string
	Operations map[string]*Operation // keyed by uppercase HTTP method
}

// Operation is one (path, method) entry.
type Operation struct {
	Parameters  []Parameter
	RequestBody Node // schema node, already $ref-resolved where possible
	// Responses maps status code string -> content-type -> schema node.
	Responses map[string]map[string]Node
}

// Parameter is a path or query parameter declaration.
type Parameter struct {
	Name string
	In   string // "path" or "query"
	Node Node   // full parameter object, including schema/x- fields
}

// Document is the process-wide immutable parsed specification.
type Document struct {
	raw   Node
	Paths map[string]*PathObject
}

// Load reads and parses the OpenAPI YAML document at path once. The
// caller is expected to hold onto the returned Document for the life of
// the process; Load performs no caching itself.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("specdoc: read %s: %w", path, err)
	}

	var raw Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("specdoc: parse %s: %w", path, err)
	}

	doc := &Document{raw: raw, Paths: make(map[string]*PathObject)}
	if err := doc.buildPaths(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) buildPaths() error {
	pathsNode, _ := d.raw["paths"].(map[string]interface{})
	for template, rawPath := range pathsNode {
		pathMap, ok := toNode(rawPath)
		if !ok {
			continue
		}

		po := &PathObject{Operations: make(map[string]*Operation)}
		if tn, ok := pathMap["x-db-table-name"].(string); ok {
			po.TableName = tn
		}

		for key, rawOp := range pathMap {
			method := strings.ToUpper(key)
			if !isHTTPMethod(method) {
				continue
			}
			opMap, ok := toNode(rawOp)
			if !ok {
				continue
			}
			op := &Operation{Responses: make(map[string]map[string]Node)}

			if paramsRaw, ok := opMap["parameters"].([]interface{}); ok {
				for _, p := range paramsRaw {
					pm, ok := toNode(p)
					if !ok {
						continue
					}
					if refVal, ok := pm["$ref"].(string); ok {
						if resolved, ok := d.Resolve(refVal); ok {
							pm = resolved
						}
					}
					name, _ := pm["name"].(string)
					in, _ := pm["in"].(string)
					op.Parameters = append(op.Parameters, Parameter{Name: name, In: in, Node: pm})
				}
			}

			if rbRaw, ok := opMap["requestBody"].(map[string]interface{}); ok {
				op.RequestBody = d.resolveBodySchema(rbRaw)
			}

			if respRaw, ok := opMap["responses"].(map[string]interface{}); ok {
				for status, rawContent := range respRaw {
					contentMap, ok := toNode(rawContent)
					if !ok {
						continue
					}
					byContentType := make(map[string]Node)
					if content, ok := contentMap["content"].(map[string]interface{}); ok {
						for ct, rawSchema := range content {
							schemaWrap, ok := toNode(rawSchema)
							if !ok {
								continue
							}
							if schemaRaw, ok := schemaWrap["schema"].(map[string]interface{}); ok {
								byContentType[ct] = d.resolveSchema(schemaRaw)
							}
						}
					}
					op.Responses[status] = byContentType
				}
			}

			po.Operations[method] = op
		}

		normalized := NormalizeURLTemplate(template)
		d.Paths[normalized] = po
	}
	return nil
}

// resolveBodySchema extracts the schema node from a requestBody object's
// content map, preferring application/json.
func (d *Document) resolveBodySchema(rb Node) Node {
	content, ok := rb["content"].(map[string]interface{})
	if !ok {
		return nil
	}
	preferred := []string{"application/json"}
	for ct := range content {
		preferred = append(preferred, ct)
	}
	for _, ct := range preferred {
		raw, ok := content[ct]
		if !ok {
			continue
		}
		wrap, ok := toNode(raw)
		if !ok {
			continue
		}
		if schemaRaw, ok := wrap["schema"].(map[string]interface{}); ok {
			return d.resolveSchema(schemaRaw)
		}
	}
	return nil
}

// resolveSchema resolves a top-level $ref on a schema node, one level
// deep (nested refs are resolved lazily by the projector).
func (d *Document) resolveSchema(schema Node) Node {
	if refVal, ok := schema["$ref"].(string); ok {
		if resolved, ok := d.Resolve(refVal); ok {
			return resolved
		}
		logger.Warn("specdoc: unresolved $ref %s", refVal)
		return nil
	}
	return schema
}

// Resolve walks a "#/a/b/c" reference against the raw document tree.
func (d *Document) Resolve(ref string) (Node, bool) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, false
	}
	segments := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	var cur interface{} = map[string]interface{}(d.raw)
	for _, seg := range segments {
		m, ok := toNode(cur)
		if !ok {
			return nil, false
		}
		next, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	result, ok := toNode(cur)
	return result, ok
}

func toNode(v interface{}) (Node, bool) {
	switch m := v.(type) {
	case Node:
		return m, true
	case map[string]interface{}:
		return Node(m), true
	default:
		return nil, false
	}
}

func isHTTPMethod(s string) bool {
	switch s {
	case "GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD":
		return true
	default:
		return false
	}
}

// NormalizeURLTemplate strips Flask-style type modifiers (e.g.
// "<int:id>") and converts angle-bracket placeholders to the "{name}"
// form used for lookup.
func NormalizeURLTemplate(template string) string {
	var b strings.Builder
	i := 0
	for i < len(template) {
		c := template[i]
		if c == '<' {
			end := strings.IndexByte(template[i:], '>')
			if end < 0 {
				b.WriteByte(c)
				i++
				continue
			}
			inner := template[i+1 : i+end]
			if idx := strings.LastIndex(inner, ":"); idx >= 0 {
				inner = inner[idx+1:]
			}
			b.WriteByte('{')
			b.WriteString(inner)
			b.WriteByte('}')
			i += end + 1
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}
