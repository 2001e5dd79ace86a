package specdoc

import (
	"context"
	"fmt"
	"time"

	"github.com/bitechdev/specgateway/pkg/cache"
	"github.com/bitechdev/specgateway/pkg/common"
	"github.com/bitechdev/specgateway/pkg/logger"
)

// Comparison is one of the six query-filter relational operators.
type Comparison string

const (
	CompEq  Comparison = "=="
	CompNe  Comparison = "!="
	CompLt  Comparison = "<"
	CompLe  Comparison = "<="
	CompGt  Comparison = ">"
	CompGe  Comparison = ">="
)

func isValidComparison(c string) bool {
	switch Comparison(c) {
	case CompEq, CompNe, CompLt, CompLe, CompGt, CompGe:
		return true
	default:
		return false
	}
}

// QueryFilter is a client-settable, row-independent filter derived from
// an OpenAPI query parameter carrying x-query-filter-field/-comparison.
type QueryFilter struct {
	Name       string
	Field      string
	Comparison Comparison
	Schema     Node
	Required   bool
}

// ForcedFilter is a server-imposed row-level predicate. Value may be a
// literal or one of the reserved directives _UPN, _IP, _NOT_EXISTING.
type ForcedFilter struct {
	Field      string
	Comparison Comparison
	Value      string
}

const (
	DirectiveUPN        = "_UPN"
	DirectiveIP         = "_IP"
	DirectiveNotExisting = "_NOT_EXISTING"
)

// Reserved pagination query parameter names, never treated as filters.
const (
	ParamPageCursor = "page_cursor"
	ParamPageSize   = "page_size"
	ParamPageAction = "page_action"
)

func isReservedParam(name string) bool {
	switch name {
	case ParamPageCursor, ParamPageSize, ParamPageAction:
		return true
	default:
		return false
	}
}

// RequestContext is the normalized per-request value produced by the
// resolver: everything the generic handler needs to dispatch against the
// active storage adapter.
type RequestContext struct {
	TableName     string
	TableID       string
	RequestID     string // path-param name carrying the primary key
	DBKeys        ProjectionTree
	ResponseKeys  ProjectionTree
	QueryFilters  []QueryFilter
	ForcedFilters []ForcedFilter
	ContentType   string
}

// Complete reports whether the context carries the minimum information
// the handler needs to proceed; an incomplete context is a 500.
func (rc *RequestContext) Complete() bool {
	return rc != nil && rc.TableName != ""
}

// Resolver produces RequestContexts from a loaded Document, caching each
// derived RequestContext in the default cache for one hour.
type Resolver struct {
	doc *Document
}

// NewResolver wraps a loaded Document.
func NewResolver(doc *Document) *Resolver {
	return &Resolver{doc: doc}
}

var statusPreference = []string{"200", "201", "202", "203", "204"}

// Resolve builds a RequestContext for a (method, url-template) pair. A
// template the document has no PathObject for yields an incomplete
// (TableName == "") context rather than an error, per the propagation
// policy: the handler raises the 500, not the resolver.
func (r *Resolver) Resolve(method, urlTemplate string, pathParams map[string]string, contentType string) (*RequestContext, error) {
	cacheKey := fmt.Sprintf("specdoc:route:%s:%s:%s", method, urlTemplate, contentType)
	rc := new(RequestContext)
	if err := cache.GetDefaultCache().Get(context.Background(), cacheKey, rc); err == nil {
		return rc, nil
	}

	normalized := NormalizeURLTemplate(urlTemplate)
	po, ok := r.doc.Paths[normalized]
	if !ok {
		return &RequestContext{}, nil
	}

	op, ok := po.Operations[method]
	if !ok {
		return &RequestContext{}, nil
	}

	built := &RequestContext{TableName: po.TableName}

	for _, p := range op.Parameters {
		if p.In == "path" && !isReservedParam(p.Name) {
			if built.RequestID == "" {
				built.RequestID = p.Name
			}
		}
	}

	filters, forced, err := r.buildFilters(op.Parameters)
	if err != nil {
		return nil, err
	}
	built.QueryFilters = filters
	built.ForcedFilters = forced

	if contentType == "" {
		contentType = "application/json"
	}
	built.ContentType = contentType

	switch method {
	case "PUT", "POST", "PATCH":
		built.DBKeys = r.doc.BuildProjection(op.RequestBody)
		if id, ok := r.doc.DiscoverTableID(op.RequestBody); ok {
			built.TableID = id
		}
	case "GET":
		schema, err := selectResponseSchema(op, contentType)
		if err != nil {
			return nil, err
		}
		built.ResponseKeys = r.doc.BuildProjection(schema)
		if id, ok := r.doc.DiscoverTableID(schema); ok {
			built.TableID = id
		}
	default:
		// DELETE and others: project whatever response schema exists, if any.
		if schema, err := selectResponseSchema(op, contentType); err == nil {
			built.ResponseKeys = r.doc.BuildProjection(schema)
		}
	}

	if err := cache.GetDefaultCache().Set(context.Background(), cacheKey, built, time.Hour); err != nil {
		logger.Warn("specdoc: failed to cache resolved route %s: %v", cacheKey, err)
	}

	return built, nil
}

// selectResponseSchema picks a response schema by status-code preference
// and negotiated content-type.
func selectResponseSchema(op *Operation, contentType string) (Node, error) {
	for _, status := range statusPreference {
		byContentType, ok := op.Responses[status]
		if !ok {
			continue
		}
		if schema, ok := byContentType[contentType]; ok {
			return schema, nil
		}
		if len(byContentType) > 0 {
			// A response exists for this status but not this content-type.
			return nil, common.ErrContentTypeNegotiationFailed(
				"content-type '%s' is not found within the specification", contentType)
		}
	}
	return nil, nil
}

// buildFilters parses query-filter parameters per the parsing rules in
// the schema projector: reserved pagination names are skipped; a
// parameter requires schema + x-query-filter-comparison +
// x-query-filter-field to become a QueryFilter; _FORCED_FILTER always
// becomes a ForcedFilter.
func (r *Resolver) buildFilters(params []Parameter) ([]QueryFilter, []ForcedFilter, error) {
	var filters []QueryFilter
	var forced []ForcedFilter

	for _, p := range params {
		if p.In != "query" {
			continue
		}
		if isReservedParam(p.Name) {
			continue
		}

		if p.Name == "_FORCED_FILTER" {
			field, _ := p.Node["x-query-filter-field"].(string)
			comparison, _ := p.Node["x-query-filter-comparison"].(string)
			value, _ := p.Node["default"].(string)
			forced = append(forced, ForcedFilter{Field: field, Comparison: Comparison(comparison), Value: value})
			continue
		}

		schema, hasSchema := p.Node["schema"].(map[string]interface{})
		comparison, hasComparison := p.Node["x-query-filter-comparison"].(string)
		field, hasField := p.Node["x-query-filter-field"].(string)
		if !hasSchema || !hasComparison || !hasField {
			logger.Debug("specdoc: skipping query parameter %q missing filter metadata", p.Name)
			continue
		}
		if !isValidComparison(comparison) {
			logger.Warn("specdoc: skipping query parameter %q with invalid comparison %q", p.Name, comparison)
			continue
		}
		schemaType, _ := schema["type"].(string)
		switch schemaType {
		case "string", "number", "integer", "boolean":
		default:
			logger.Warn("specdoc: skipping query parameter %q with unsupported schema type %q", p.Name, schemaType)
			continue
		}

		required, _ := p.Node["required"].(bool)
		filters = append(filters, QueryFilter{
			Name:       p.Name,
			Field:      field,
			Comparison: Comparison(comparison),
			Schema:     Node(schema),
			Required:   required,
		})
	}

	return filters, forced, nil
}
