// Package storage defines the uniform adapter contract the generic
// handler dispatches against, independent of the concrete backend
// (key/kind store or document store) in use.
package storage

import (
	"context"

	"github.com/bitechdev/specgateway/pkg/authz"
	"github.com/bitechdev/specgateway/pkg/entity"
	"github.com/bitechdev/specgateway/pkg/specdoc"
)

// PageAction selects the pagination direction for get_multiple_page.
type PageAction string

const (
	PageNext PageAction = "next"
	PagePrev PageAction = "prev"
)

// DefaultPageSize is used when a page request does not specify a size.
const DefaultPageSize = 50

// Page is the response shape of get_multiple_page. Results are already
// projected through the response projection tree.
type Page struct {
	Results  []map[string]interface{}
	Status   string
	PageSize int
	// NextPage is the opaque continuation cursor for the *next* fetch, or
	// empty when there are no more rows. On a "prev" request the keystore
	// adapter returns the request's own cursor here instead.
	NextPage string
}

// Query carries a single resolved filter predicate ready for the
// backend to apply. Value has already been coerced against the
// declared parameter schema.
type Query struct {
	Field      string
	Comparison specdoc.Comparison
	Value      interface{}
}

// PageRequest bundles a get_multiple_page call's inputs.
type PageRequest struct {
	Table    string
	Keys     specdoc.ProjectionTree // db_keys; not read by the keystore or docstore adapters
	ResKeys  specdoc.ProjectionTree // response keys; must contain "results"
	Filters  []Query
	Cursor   string
	Size     int
	Action   PageAction
}

// Adapter is the uniform contract every storage backend satisfies. Each
// method projects its result through the relevant projection tree
// before returning, via pkg/entity.
type Adapter interface {
	GetSingle(ctx context.Context, table string, id entity.Key, dbKeys, resKeys specdoc.ProjectionTree, tableID string, forced []specdoc.ForcedFilter, principal authz.Principal) (map[string]interface{}, error)
	PutSingle(ctx context.Context, table string, id entity.Key, body []byte, dbKeys, resKeys specdoc.ProjectionTree, tableID string, forced []specdoc.ForcedFilter, principal authz.Principal) (map[string]interface{}, error)
	PostSingle(ctx context.Context, table string, body []byte, dbKeys, resKeys specdoc.ProjectionTree, tableID string) (map[string]interface{}, error)
	GetMultiple(ctx context.Context, table string, dbKeys, resKeys specdoc.ProjectionTree, filters []Query) (map[string]interface{}, error)
	GetMultiplePage(ctx context.Context, req PageRequest) (*Page, error)
	ProcessAuditLogging(ctx context.Context, old, new map[string]interface{}, id entity.Key)
}
