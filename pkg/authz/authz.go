// Package authz evaluates row-level forced-filter authorization
// predicates against a stored entity.
package authz

import (
	"fmt"

	"github.com/bitechdev/specgateway/pkg/common"
	"github.com/bitechdev/specgateway/pkg/entity"
	"github.com/bitechdev/specgateway/pkg/specdoc"
)

// Principal carries the identity context a forced filter may reference.
type Principal struct {
	UPN string
	IP  string
}

// Validate evaluates every forced filter against ent. An empty filter
// list always succeeds. A nil entity fails with a 400 (there is nothing
// to authorize against); any filter mismatch fails with a 401.
func Validate(filters []specdoc.ForcedFilter, ent *entity.Entity, principal Principal) error {
	if len(filters) == 0 {
		return nil
	}
	if ent == nil {
		return common.ErrValidationFailed("requested entity has no value")
	}

	for _, f := range filters {
		switch f.Value {
		case specdoc.DirectiveUPN:
			if fmt.Sprint(ent.Attributes[f.Field]) != principal.UPN {
				return common.ErrUnauthorized("Unauthorized request")
			}
		case specdoc.DirectiveIP:
			if fmt.Sprint(ent.Attributes[f.Field]) != principal.IP {
				return common.ErrUnauthorized("Unauthorized request")
			}
		case specdoc.DirectiveNotExisting:
			if _, exists := ent.Attributes[f.Field]; exists {
				return common.ErrUnauthorized("Unauthorized request")
			}
		default:
			if fmt.Sprint(ent.Attributes[f.Field]) != f.Value {
				return common.ErrUnauthorized("Unauthorized request")
			}
		}
	}

	return nil
}

// ResolveValue substitutes _UPN/_IP directives with their concrete
// values, for use when a forced filter must be applied at query
// construction time (list endpoints) rather than post-fetch.
func ResolveValue(f specdoc.ForcedFilter, principal Principal) string {
	switch f.Value {
	case specdoc.DirectiveUPN:
		return principal.UPN
	case specdoc.DirectiveIP:
		return principal.IP
	default:
		return f.Value
	}
}
